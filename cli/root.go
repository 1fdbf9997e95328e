package cli

import (
	"fmt"
	"io"
	"os"

	"invitation_server_go/config"

	"github.com/spf13/cobra"
)

// NewRootCmd возвращает корневую команду CLI сервера приглашений.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invitation-server",
		Short:         "Config-driven event invitation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().String("config", "", "Path to YAML settings file (default: $"+config.ConfigPathEnv+")")

	cmd.AddCommand(newServeCmd(stdout))
	cmd.AddCommand(newBackupsCmd(stdout))
	cmd.AddCommand(newThemesCmd(stdout))
	cmd.AddCommand(newHashPasswordCmd(stdout))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// Execute запускает CLI с stdio процесса и возвращает код выхода.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadSettings читает настройки по флагу --config.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	return config.Load(path)
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(stdout, "%s %s\n", config.AppName, config.AppVersion)
			return err
		},
	}
}
