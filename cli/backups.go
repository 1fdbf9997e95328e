package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"invitation_server_go/models"

	"github.com/spf13/cobra"
)

func newBackupsCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Inspect and restore configuration backups",
	}
	cmd.AddCommand(newBackupsListCmd(stdout))
	cmd.AddCommand(newBackupsRestoreCmd(stdout))
	return cmd
}

func newBackupsListCmd(stdout io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configuration backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			storage, closer, err := openConfigStorage(settings)
			if err != nil {
				return err
			}
			defer closer.Close()

			backups, err := storage.ListBackups(cmd.Context())
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(backups)
			case "table", "":
				return renderBackups(stdout, backups)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func newBackupsRestoreCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <filename>",
		Short: "Restore the configuration from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			storage, closer, err := openConfigStorage(settings)
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := storage.Restore(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("restore %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(stdout, "Restored configuration from %s\n", args[0])
			return err
		},
	}
}

func renderBackups(w io.Writer, backups []models.BackupRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tTIMESTAMP\tDATE")
	for _, b := range backups {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Filename, b.Timestamp, b.Date)
	}
	return tw.Flush()
}
