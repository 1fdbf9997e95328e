package cli

import (
	"fmt"
	"io"

	"invitation_server_go/auth"

	"github.com/spf13/cobra"
)

// newHashPasswordCmd печатает bcrypt-хеш для admin.password_hash / ADMIN_PASSWORD_HASH.
func newHashPasswordCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash suitable for admin.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, hash)
			return err
		},
	}
}
