package validation

import (
	"fmt"
	"strings"

	"github.com/centralelevate/elevate/internal/product"
)

const (
	maxNameLen     = 255
	maxFeatures    = 100
	maxFeatureLen  = 200
	maxDescription = 10000
)

// ValidateDraft validates a create request. The name is required.
func ValidateDraft(d product.Draft) []FieldError {
	var errs []FieldError

	errs = append(errs, validateName(d.Name)...)
	errs = append(errs, validateDescription(d.Description)...)
	errs = append(errs, validateFeatures(d.Features)...)
	errs = append(errs, validateURLs(d.ImageURL, d.GitRepoURL, d.VercelURL, d.ProductURL)...)

	return errs
}

// ValidateUpdate validates only the fields present in a partial update.
func ValidateUpdate(f product.UpdateFields) []FieldError {
	var errs []FieldError

	if f.IsEmpty() {
		return []FieldError{{Field: "body", Message: "at least one field must be provided"}}
	}

	if f.Name != nil {
		errs = append(errs, validateName(*f.Name)...)
	}
	if f.Description != nil {
		errs = append(errs, validateDescription(*f.Description)...)
	}
	if f.Features != nil {
		errs = append(errs, validateFeatures(*f.Features)...)
	}

	if f.ImageURL != nil {
		errs = append(errs, validateImageURL(*f.ImageURL)...)
	}
	for _, u := range []struct {
		field string
		value *string
	}{
		{"gitRepoUrl", f.GitRepoURL},
		{"vercelUrl", f.VercelURL},
		{"productUrl", f.ProductURL},
	} {
		if u.value != nil {
			errs = append(errs, validateAbsoluteURL(u.field, *u.value)...)
		}
	}

	return errs
}

func validateName(name string) []FieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	if len(name) > maxNameLen {
		return []FieldError{{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxNameLen)}}
	}
	return nil
}

func validateDescription(desc string) []FieldError {
	if len(desc) > maxDescription {
		return []FieldError{{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", maxDescription)}}
	}
	return nil
}

func validateFeatures(features []string) []FieldError {
	if len(features) > maxFeatures {
		return []FieldError{{Field: "features", Message: fmt.Sprintf("at most %d features are allowed", maxFeatures)}}
	}

	var errs []FieldError
	seen := make(map[string]bool, len(features))
	for i, f := range features {
		switch {
		case strings.TrimSpace(f) == "":
			errs = append(errs, FieldError{Field: "features", Message: fmt.Sprintf("feature %d must not be empty", i)})
		case len(f) > maxFeatureLen:
			errs = append(errs, FieldError{Field: "features", Message: fmt.Sprintf("feature %d must be at most %d characters", i, maxFeatureLen)})
		case seen[f]:
			errs = append(errs, FieldError{Field: "features", Message: fmt.Sprintf("feature %q is listed more than once", f)})
		}
		seen[f] = true
	}
	return errs
}

func validateURLs(imageURL, gitRepoURL, vercelURL, productURL string) []FieldError {
	var errs []FieldError
	errs = append(errs, validateImageURL(imageURL)...)
	errs = append(errs, validateAbsoluteURL("gitRepoUrl", gitRepoURL)...)
	errs = append(errs, validateAbsoluteURL("vercelUrl", vercelURL)...)
	errs = append(errs, validateAbsoluteURL("productUrl", productURL)...)
	return errs
}
