package panel

// Crumb is one breadcrumb entry. A nil OnClick marks the current page.
type Crumb struct {
	Label   string
	OnClick func()
}

// RenderedCrumb is a crumb with its display role resolved.
type RenderedCrumb struct {
	Label string
	// Home is set on the first entry only.
	Home bool
	// Current entries are not interactive.
	Current   bool
	Clickable bool
	// Separator is set when a separator precedes this entry.
	Separator bool
	OnClick   func()
}

// RenderBreadcrumbs resolves crumbs in order. An empty trail renders nothing.
func RenderBreadcrumbs(crumbs []Crumb) []RenderedCrumb {
	if len(crumbs) == 0 {
		return nil
	}

	out := make([]RenderedCrumb, len(crumbs))
	for i, c := range crumbs {
		out[i] = RenderedCrumb{
			Label:     c.Label,
			Home:      i == 0,
			Current:   c.OnClick == nil,
			Clickable: c.OnClick != nil,
			Separator: i > 0,
			OnClick:   c.OnClick,
		}
	}
	return out
}
