package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"invitation_server_go/data"

	"github.com/spf13/cobra"
)

func newThemesCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Inspect installed themes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List themes with a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			themes, err := data.NewFileThemeStorage(settings.Themes.Dir).ListThemes(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPREMIUM\tPRICE")
			for _, t := range themes {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%.2f\n", t.ID, t.Name, t.Premium, t.Price)
			}
			return tw.Flush()
		},
	})
	return cmd
}
