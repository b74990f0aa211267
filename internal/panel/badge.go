package panel

import "github.com/centralelevate/elevate/internal/product"

// Badge is the deployment status indicator of a product card.
type Badge int

const (
	// BadgeNoIntegration means no deployment project is linked; nothing is shown.
	BadgeNoIntegration Badge = iota
	// BadgeUnknown means a project is linked but no status has been reported yet.
	BadgeUnknown
	BadgeReady
	BadgeError
	BadgeBuilding
	BadgeQueued
	BadgeCanceled
)

// BadgeFor selects the badge for p.
func BadgeFor(p product.Product) Badge {
	if !p.HasDeploymentIntegration() {
		return BadgeNoIntegration
	}

	switch p.VercelDeploymentStatus {
	case product.StatusReady:
		return BadgeReady
	case product.StatusError:
		return BadgeError
	case product.StatusBuilding:
		return BadgeBuilding
	case product.StatusQueued:
		return BadgeQueued
	case product.StatusCanceled:
		return BadgeCanceled
	case product.StatusAbsent:
		return BadgeUnknown
	}
	return BadgeUnknown
}

// Visible reports whether the badge is displayed at all.
func (b Badge) Visible() bool {
	return b != BadgeNoIntegration
}

func (b Badge) String() string {
	switch b {
	case BadgeNoIntegration:
		return ""
	case BadgeUnknown:
		return "unknown"
	case BadgeReady:
		return "ready"
	case BadgeError:
		return "error"
	case BadgeBuilding:
		return "building"
	case BadgeQueued:
		return "queued"
	case BadgeCanceled:
		return "canceled"
	}
	return "unknown"
}
