package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attanavaid/portfolio/internal/content"
	"github.com/attanavaid/portfolio/internal/theme"
)

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect the embedded site content",
	}
	cmd.AddCommand(newContentCheckCmd())
	return cmd
}

func newContentCheckCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Decode and validate the embedded content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := content.Load()
			if err != nil {
				return err
			}
			counts := map[string]int{
				"work":      len(p.Work),
				"education": len(p.Education),
				"skills":    len(p.Skills),
				"learning":  len(p.Learning),
				"projects":  len(p.Projects),
				"languages": len(p.Languages),
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(counts)
			}
			_, err = fmt.Fprintf(out, "content ok: %d work, %d education, %d skills, %d learning, %d projects, %d languages\n",
				counts["work"], counts["education"], counts["skills"], counts["learning"], counts["projects"], counts["languages"])
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print counts as JSON")
	return cmd
}

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Theme helpers",
	}
	cmd.AddCommand(newThemeResolveCmd(), newThemeScriptCmd())
	return cmd
}

func newThemeResolveCmd() *cobra.Command {
	var (
		pref        string
		prefersDark bool
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the theme shown for a stored preference and OS scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := theme.ParsePreference(pref)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), theme.Resolve(p, prefersDark))
			return err
		},
	}
	cmd.Flags().StringVar(&pref, "preference", string(theme.DefaultPreference), "light, dark or system")
	cmd.Flags().BoolVar(&prefersDark, "prefers-dark", false, "whether the OS prefers a dark scheme")
	return cmd
}

func newThemeScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script",
		Short: "Print the inline no-flash bootstrap script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), theme.BootstrapScript(theme.Preference(cfg.Theme.Default)))
			return err
		},
	}
}
