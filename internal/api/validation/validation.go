package validation

import (
	"net/url"
	"strings"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateAbsoluteURL accepts "" (absent) or an absolute http(s) URL.
func validateAbsoluteURL(field, raw string) []FieldError {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return []FieldError{{Field: field, Message: field + " must be an absolute http(s) URL"}}
	}
	return nil
}

// validateImageURL also accepts a root-relative path, which is what local
// storage hands back when no public base URL is configured.
func validateImageURL(raw string) []FieldError {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		u, err := url.Parse(raw)
		if err == nil && u.Scheme == "" && u.Host == "" && !strings.Contains(u.Path, "..") {
			return nil
		}
		return []FieldError{{Field: "imageUrl", Message: "imageUrl must be an absolute http(s) URL or a root-relative path"}}
	}
	return validateAbsoluteURL("imageUrl", raw)
}
