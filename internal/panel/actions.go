package panel

import (
	"strings"

	"github.com/centralelevate/elevate/internal/product"
)

// ActionKind identifies one of the three fixed card buttons.
type ActionKind int

const (
	ActionRepository ActionKind = iota
	ActionDeployment
	ActionProduct
)

func (k ActionKind) String() string {
	switch k {
	case ActionRepository:
		return "repo"
	case ActionDeployment:
		return "deploy"
	case ActionProduct:
		return "product"
	}
	return "unknown"
}

// ParseActionKind accepts the String forms.
func ParseActionKind(s string) (ActionKind, bool) {
	for _, k := range []ActionKind{ActionRepository, ActionDeployment, ActionProduct} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ActionButton is a card button. Disabled buttons are placeholders with no URL.
type ActionButton struct {
	Kind    ActionKind
	Label   string
	URL     string
	Enabled bool
}

// ActionButtons returns the repository, deployment and product buttons, in
// that order.
func ActionButtons(p product.Product) []ActionButton {
	return []ActionButton{
		newButton(ActionRepository, "Repository", p.GitRepoURL),
		newButton(ActionDeployment, "Deployment", p.VercelURL),
		newButton(ActionProduct, "Product", p.ProductURL),
	}
}

func newButton(kind ActionKind, label, url string) ActionButton {
	url = strings.TrimSpace(url)
	return ActionButton{Kind: kind, Label: label, URL: url, Enabled: url != ""}
}
