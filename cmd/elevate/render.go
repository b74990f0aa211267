package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/centralelevate/elevate/internal/panel"
	"github.com/centralelevate/elevate/internal/product"
)

var (
	crumbStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	currentStyle = lipgloss.NewStyle().Bold(true)
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	badgeStyles = map[panel.Badge]lipgloss.Style{
		panel.BadgeReady:    lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")),
		panel.BadgeError:    lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
		panel.BadgeBuilding: lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")),
		panel.BadgeQueued:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04")),
		panel.BadgeCanceled: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		panel.BadgeUnknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
)

func renderBreadcrumbs(w io.Writer, crumbs []panel.Crumb) {
	rendered := panel.RenderBreadcrumbs(crumbs)
	if rendered == nil {
		return
	}

	var b strings.Builder
	for _, c := range rendered {
		if c.Separator {
			b.WriteString(crumbStyle.Render(" / "))
		}
		if c.Current {
			b.WriteString(currentStyle.Render(c.Label))
		} else {
			b.WriteString(crumbStyle.Render(c.Label))
		}
	}
	fmt.Fprintln(w, b.String())
}

func renderBadge(p product.Product) string {
	badge := panel.BadgeFor(p)
	if !badge.Visible() {
		return ""
	}
	return badgeStyles[badge].Render(badge.String())
}

func renderStar(p product.Product) string {
	if p.IsStarred {
		return starStyle.Render("★")
	}
	return "☆"
}

// renderTable prints one row per product. The styled badge goes last so its
// escape codes do not skew the column widths.
func renderTable(w io.Writer, products []product.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAR\tNAME\tSTATUS\tDEPLOYMENT")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID.String()[:8], renderStar(p), p.Name, p.CurrentStatus, renderBadge(p))
	}
	tw.Flush()
}

func renderProduct(w io.Writer, p product.Product, loading bool) {
	fmt.Fprintf(w, "%s %s\n", renderStar(p), currentStyle.Render(p.Name))
	if loading {
		fmt.Fprintln(w, "(updating)")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", label, value)
		}
	}
	row("ID", p.ID.String())
	row("Status", p.CurrentStatus)
	row("Description", p.Description)
	row("Image", p.ImageURL)
	row("Vercel project", p.VercelProjectID)
	row("Vercel team", p.VercelTeamID)
	if p.VercelLastDeployment != nil {
		row("Last deployment", p.VercelLastDeployment.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()

	if badge := renderBadge(p); badge != "" {
		fmt.Fprintf(w, "Deployment: %s\n", badge)
	}

	if len(p.Features) > 0 {
		fmt.Fprintln(w, "Features:")
		for _, f := range p.Features {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	fmt.Fprintln(w, "Links:")
	for _, btn := range panel.ActionButtons(p) {
		if btn.Enabled {
			fmt.Fprintf(w, "  [%s] %s %s\n", btn.Kind, btn.Label, btn.URL)
		} else {
			fmt.Fprintf(w, "  [%s] %s (not set)\n", btn.Kind, btn.Label)
		}
	}
}
