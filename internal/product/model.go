package product

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product represents a row in the products table.
// Optional text fields use "" for absent.
type Product struct {
	ID                     uuid.UUID        `json:"id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	ImageURL               string           `json:"imageUrl"`
	CurrentStatus          string           `json:"currentStatus"`
	Features               []string         `json:"features"`
	GitRepoURL             string           `json:"gitRepoUrl"`
	VercelURL              string           `json:"vercelUrl"`
	ProductURL             string           `json:"productUrl"`
	VercelProjectID        string           `json:"vercelProjectId"`
	VercelTeamID           string           `json:"vercelTeamId"`
	VercelDeploymentStatus DeploymentStatus `json:"vercelDeploymentStatus"`
	VercelLastDeployment   *time.Time       `json:"vercelLastDeployment"`
	IsStarred              bool             `json:"isStarred"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

// HasDeploymentIntegration reports whether the product is linked to a deployment project.
func (p *Product) HasDeploymentIntegration() bool {
	return strings.TrimSpace(p.VercelProjectID) != ""
}

// Draft holds the user-editable fields of a product, as submitted by the
// create/edit form.
type Draft struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	ImageURL        string   `json:"imageUrl"`
	CurrentStatus   string   `json:"currentStatus"`
	Features        []string `json:"features"`
	GitRepoURL      string   `json:"gitRepoUrl"`
	VercelURL       string   `json:"vercelUrl"`
	VercelProjectID string   `json:"vercelProjectId"`
	VercelTeamID    string   `json:"vercelTeamId"`
	ProductURL      string   `json:"productUrl"`
}

// DraftOf copies the editable fields of p.
func DraftOf(p Product) Draft {
	return Draft{
		Name:            p.Name,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		CurrentStatus:   p.CurrentStatus,
		Features:        slices.Clone(p.Features),
		GitRepoURL:      p.GitRepoURL,
		VercelURL:       p.VercelURL,
		VercelProjectID: p.VercelProjectID,
		VercelTeamID:    p.VercelTeamID,
		ProductURL:      p.ProductURL,
	}
}

// ToUpdate returns an UpdateFields that sets every draft field.
func (d Draft) ToUpdate() UpdateFields {
	features := slices.Clone(d.Features)
	if features == nil {
		features = []string{}
	}
	return UpdateFields{
		Name:            &d.Name,
		Description:     &d.Description,
		ImageURL:        &d.ImageURL,
		CurrentStatus:   &d.CurrentStatus,
		Features:        &features,
		GitRepoURL:      &d.GitRepoURL,
		VercelURL:       &d.VercelURL,
		VercelProjectID: &d.VercelProjectID,
		VercelTeamID:    &d.VercelTeamID,
		ProductURL:      &d.ProductURL,
	}
}

// NewFromDraft builds an unsaved Product from a draft.
func NewFromDraft(d Draft) *Product {
	features := slices.Clone(d.Features)
	if features == nil {
		features = []string{}
	}
	return &Product{
		Name:            d.Name,
		Description:     d.Description,
		ImageURL:        d.ImageURL,
		CurrentStatus:   d.CurrentStatus,
		Features:        features,
		GitRepoURL:      d.GitRepoURL,
		VercelURL:       d.VercelURL,
		ProductURL:      d.ProductURL,
		VercelProjectID: d.VercelProjectID,
		VercelTeamID:    d.VercelTeamID,
	}
}

// UpdateFields holds a partial update. Nil fields are not updated.
type UpdateFields struct {
	Name                   *string           `json:"name,omitempty"`
	Description            *string           `json:"description,omitempty"`
	ImageURL               *string           `json:"imageUrl,omitempty"`
	CurrentStatus          *string           `json:"currentStatus,omitempty"`
	Features               *[]string         `json:"features,omitempty"`
	GitRepoURL             *string           `json:"gitRepoUrl,omitempty"`
	VercelURL              *string           `json:"vercelUrl,omitempty"`
	ProductURL             *string           `json:"productUrl,omitempty"`
	VercelProjectID        *string           `json:"vercelProjectId,omitempty"`
	VercelTeamID           *string           `json:"vercelTeamId,omitempty"`
	VercelDeploymentStatus *DeploymentStatus `json:"vercelDeploymentStatus,omitempty"`
	VercelLastDeployment   *time.Time        `json:"vercelLastDeployment,omitempty"`
	IsStarred              *bool             `json:"isStarred,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f UpdateFields) IsEmpty() bool {
	return f == (UpdateFields{})
}

// Apply merges the set fields into p.
func (f UpdateFields) Apply(p *Product) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.ImageURL != nil {
		p.ImageURL = *f.ImageURL
	}
	if f.CurrentStatus != nil {
		p.CurrentStatus = *f.CurrentStatus
	}
	if f.Features != nil {
		p.Features = slices.Clone(*f.Features)
	}
	if f.GitRepoURL != nil {
		p.GitRepoURL = *f.GitRepoURL
	}
	if f.VercelURL != nil {
		p.VercelURL = *f.VercelURL
	}
	if f.ProductURL != nil {
		p.ProductURL = *f.ProductURL
	}
	if f.VercelProjectID != nil {
		p.VercelProjectID = *f.VercelProjectID
	}
	if f.VercelTeamID != nil {
		p.VercelTeamID = *f.VercelTeamID
	}
	if f.VercelDeploymentStatus != nil {
		p.VercelDeploymentStatus = *f.VercelDeploymentStatus
	}
	if f.VercelLastDeployment != nil {
		t := *f.VercelLastDeployment
		p.VercelLastDeployment = &t
	}
	if f.IsStarred != nil {
		p.IsStarred = *f.IsStarred
	}
}

// ListFilter narrows a product listing.
type ListFilter struct {
	StarredOnly bool
	// LinkedOnly keeps products with a deployment project id.
	LinkedOnly bool
}
