package product

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DeploymentStatus is the state of a product's last known deployment.
// The zero value is StatusAbsent.
type DeploymentStatus int

const (
	StatusAbsent DeploymentStatus = iota
	StatusReady
	StatusError
	StatusBuilding
	StatusQueued
	StatusCanceled
)

var statusNames = map[DeploymentStatus]string{
	StatusReady:    "READY",
	StatusError:    "ERROR",
	StatusBuilding: "BUILDING",
	StatusQueued:   "QUEUED",
	StatusCanceled: "CANCELED",
}

// ParseDeploymentStatus maps a wire value to a DeploymentStatus. Unknown and
// empty values map to StatusAbsent.
func ParseDeploymentStatus(s string) DeploymentStatus {
	s = strings.ToUpper(strings.TrimSpace(s))
	for st, name := range statusNames {
		if name == s {
			return st
		}
	}
	return StatusAbsent
}

// String returns the wire name, or "" for StatusAbsent.
func (s DeploymentStatus) String() string {
	return statusNames[s]
}

// IsAbsent reports whether no status is known.
func (s DeploymentStatus) IsAbsent() bool {
	return s.String() == ""
}

// NullString returns nil for an absent status, for nullable columns.
func (s DeploymentStatus) NullString() *string {
	name := s.String()
	if name == "" {
		return nil
	}
	return &name
}

// MarshalJSON encodes an absent status as null.
func (s DeploymentStatus) MarshalJSON() ([]byte, error) {
	if s.IsAbsent() {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts null, "" or one of the known names.
func (s *DeploymentStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StatusAbsent
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("deployment status must be a string: %w", err)
	}
	parsed := ParseDeploymentStatus(raw)
	if parsed.IsAbsent() && strings.TrimSpace(raw) != "" {
		return fmt.Errorf("unknown deployment status %q", raw)
	}
	*s = parsed
	return nil
}
