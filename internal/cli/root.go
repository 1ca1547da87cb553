package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	Config  string
	Dir     string
	Driver  string
	DSN     string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the promise CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "promise",
		Short: "Issue and redeem single-use promise tokens",
		Long: `Manage single-use promise tokens.

A promise lets whoever holds its token perform one pre-authorized action:
follow an account, or attach a key to an account. Tokens live in a JSON
file under --dir; memberships and account keys live in the SQL database
given by --driver and --dsn.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (yaml or json)")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "directory holding the promise file")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "sqlite3", "collaborator database driver (sqlite3|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "collaborator database dsn (defaults to promise.db in --dir)")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewFollowCommand(opts))
	cmd.AddCommand(NewAccountAddCommand(opts))
	cmd.AddCommand(NewRevokeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
