package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/centralelevate/elevate/internal/config"
	"github.com/centralelevate/elevate/internal/panel"
)

func newRootCmd(a *app) *cobra.Command {
	defaults, err := config.LoadCLI()
	if err != nil {
		defaults = &config.CLIConfig{APIURL: "http://localhost:8080"}
	}

	root := &cobra.Command{
		Use:           "elevate",
		Short:         "Manage the product catalog",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", defaults.APIURL, "catalog API base URL (ELEVATE_API_URL)")
	root.PersistentFlags().StringVar(&a.apiKey, "api-key", defaults.APIKey, "API key (ELEVATE_API_KEY)")

	root.AddCommand(
		newWhoamiCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newStarCmd(a),
		newDeleteCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newOpenCmd(a),
		newRefreshCmd(a),
	)
	return root
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			s := ctrl.Session()
			access := "read-only"
			if s.Elevated() {
				access = "elevated"
			}
			fmt.Fprintf(a.out, "%s (%s, %s)\n", s.User.Name, s.User.OriginalRole, access)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var starred bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			crumbs := []panel.Crumb{{Label: "Home", OnClick: func() {}}, {Label: "Products"}}
			if starred {
				ctrl.SetFilter(panel.FilterStarred)
				crumbs[1].OnClick = func() {}
				crumbs = append(crumbs, panel.Crumb{Label: "Starred"})
			}
			renderBreadcrumbs(a.out, crumbs)
			renderTable(a.out, ctrl.Visible())
			return nil
		},
	}
	cmd.Flags().BoolVar(&starred, "starred", false, "show starred products only")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a product card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			p, err := a.find(ctrl, args[0])
			if err != nil {
				return err
			}
			renderBreadcrumbs(a.out, []panel.Crumb{
				{Label: "Home", OnClick: func() {}},
				{Label: "Products", OnClick: func() {}},
				{Label: p.Name},
			})
			renderProduct(a.out, p, ctrl.IsLoading(p.ID))
			return nil
		},
	}
}

func newStarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "star <id>",
		Short: "Toggle a product's star",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			p, err := a.find(ctrl, args[0])
			if err != nil {
				return err
			}
			if err := ctrl.ToggleStar(cmd.Context(), p); err != nil {
				return err
			}

			updated, _ := ctrl.Find(p.ID)
			fmt.Fprintf(a.out, "%s %s\n", renderStar(updated), updated.Name)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			p, err := a.find(ctrl, args[0])
			if err != nil {
				return err
			}
			if err := ctrl.DeleteProduct(cmd.Context(), p); err != nil {
				if errors.Is(err, panel.ErrCanceled) {
					fmt.Fprintln(a.out, "Canceled.")
				}
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s.\n", p.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&a.yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// formFlags are the create/edit form fields settable from the command line.
type formFlags struct {
	name          string
	description   string
	status        string
	features      []string
	gitRepoURL    string
	vercelURL     string
	vercelProject string
	vercelTeam    string
	productURL    string
	image         string
	removeImage   bool
}

func (ff *formFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&ff.name, "name", "", "product name")
	fs.StringVar(&ff.description, "description", "", "description")
	fs.StringVar(&ff.status, "status", "", "current status label")
	fs.StringArrayVar(&ff.features, "feature", nil, "feature (repeatable; replaces the list on edit)")
	fs.StringVar(&ff.gitRepoURL, "git", "", "Git repository URL")
	fs.StringVar(&ff.vercelURL, "vercel-url", "", "deployment URL")
	fs.StringVar(&ff.vercelProject, "vercel-project", "", "Vercel project ID")
	fs.StringVar(&ff.vercelTeam, "vercel-team", "", "Vercel team ID")
	fs.StringVar(&ff.productURL, "url", "", "live product URL")
	fs.StringVar(&ff.image, "image", "", "path of an image to upload")
	fs.BoolVar(&ff.removeImage, "remove-image", false, "clear the product image")
}

// apply copies the flags the user actually passed onto the form.
func (ff *formFlags) apply(cmd *cobra.Command, f *panel.Form) {
	changed := cmd.Flags().Changed
	if changed("name") {
		f.SetName(ff.name)
	}
	if changed("description") {
		f.SetDescription(ff.description)
	}
	if changed("status") {
		f.SetCurrentStatus(ff.status)
	}
	if changed("git") {
		f.SetGitRepoURL(ff.gitRepoURL)
	}
	if changed("vercel-url") {
		f.SetVercelURL(ff.vercelURL)
	}
	if changed("vercel-project") {
		f.SetVercelProjectID(ff.vercelProject)
	}
	if changed("vercel-team") {
		f.SetVercelTeamID(ff.vercelTeam)
	}
	if changed("url") {
		f.SetProductURL(ff.productURL)
	}
	if changed("feature") {
		for f.RemoveFeature(0) {
		}
		for _, feat := range ff.features {
			f.AddFeature(feat)
		}
	}
	if ff.removeImage {
		f.RemoveImage()
	}
}

// submit uploads the image if one was given, then saves the form. It returns
// the saved name, since closing the form discards the draft.
func (a *app) submit(cmd *cobra.Command, ff *formFlags, f *panel.Form) (string, error) {
	defer f.Close()
	ff.apply(cmd, f)

	if ff.image != "" {
		file, err := os.Open(ff.image)
		if err != nil {
			return "", fmt.Errorf("opening image: %w", err)
		}
		defer file.Close()

		if err := f.UploadImage(cmd.Context(), filepath.Base(ff.image), file); err != nil {
			if msg := f.UploadError(); msg != "" {
				return "", errors.New(msg)
			}
			return "", err
		}
		fmt.Fprintf(a.out, "Uploaded image: %s\n", f.Preview())
	}

	if err := f.Submit(cmd.Context()); err != nil {
		return "", err
	}
	return f.Draft().Name, nil
}

func newCreateCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			form, err := ctrl.NewProduct()
			if err != nil {
				return err
			}
			name, err := a.submit(cmd, &ff, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s.\n", name)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			p, err := a.find(ctrl, args[0])
			if err != nil {
				return err
			}
			form, err := ctrl.EditProduct(p)
			if err != nil {
				return err
			}
			name, err := a.submit(cmd, &ff, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s.\n", name)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "open <id> repo|deploy|product",
		Short:     "Open one of a product's links",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"repo", "deploy", "product"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := panel.ParseActionKind(args[1])
			if !ok {
				return fmt.Errorf("unknown link %q: want repo, deploy or product", args[1])
			}

			ctrl, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			p, err := a.find(ctrl, args[0])
			if err != nil {
				return err
			}
			for _, btn := range panel.ActionButtons(p) {
				if btn.Kind != kind {
					continue
				}
				if !btn.Enabled {
					return fmt.Errorf("%s has no %s link", p.Name, btn.Label)
				}
				fmt.Fprintln(a.out, btn.URL)
				return ctrl.OpenExternal(btn.URL)
			}
			return nil
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Sync deployment status from Vercel now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, be, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if !ctrl.Session().Elevated() {
				return panel.ErrReadOnly
			}
			n, err := be.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %d product(s).\n", n)
			return nil
		},
	}
}
