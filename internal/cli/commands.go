package cli

import (
	"context"
	"fmt"
	"strings"

	gocmd "github.com/goliatone/go-command"
	promisecommand "github.com/goliatone/go-promise/command"
	"github.com/goliatone/go-promise/core"
	promisequery "github.com/goliatone/go-promise/query"
	"github.com/spf13/cobra"
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// withRuntime opens the runtime, runs fn and closes the database client.
func withRuntime(opts *RootOptions, cmd *cobra.Command, fn func(*runtime, *OutputFormatter) error) error {
	formatter := newFormatter(opts, cmd)
	rt, err := openRuntime(cmd.Context(), opts, formatter)
	if err != nil {
		_ = formatter.Error(core.PromiseErrorStoreNotReady, err.Error())
		return err
	}
	defer func() { _ = rt.Close() }()
	return fn(rt, formatter)
}

func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <follow|account-add> <account>",
		Short: "Create a promise and print its token",
		Long: `Create a promise bound to an account and print the token that redeems it.

  follow       the holder may add a member to the account's follow relation
  account-add  the holder may attach a public key to the account`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := promisecommand.CreateMessage{
				Candidate: map[string]any{"kind": args[0], "account": args[1]},
			}
			return withRuntime(rootOpts, cmd, func(rt *runtime, formatter *OutputFormatter) error {
				if err := msg.Validate(); err != nil {
					return reportError(formatter, "create", err)
				}
				collector := gocmd.NewResult[promisecommand.CreateResult]()
				ctx := gocmd.ContextWithResult(cmd.Context(), collector)
				if err := rt.facade.Commands().Create.Execute(ctx, msg); err != nil {
					return reportError(formatter, "create", err)
				}
				result, _ := collector.Load()
				return formatter.Success(result, result.Token)
			})
		},
	}
}

func NewFollowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "follow <token> <member>",
		Short:         "Redeem a follow promise for a member",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := promisecommand.FollowMessage{Token: args[0], Member: args[1]}
			return withRuntime(rootOpts, cmd, func(rt *runtime, formatter *OutputFormatter) error {
				if err := msg.Validate(); err != nil {
					return reportError(formatter, "follow", err)
				}
				return runRedemption(cmd.Context(), formatter, "follow", func(ctx context.Context) error {
					return rt.facade.Commands().Follow.Execute(ctx, msg)
				}, args[1]+" added", args[1]+" was already a member")
			})
		},
	}
}

type accountAddFlags struct {
	Purpose   string
	Algorithm string
	Bytes     string
	Consent   string
}

func NewAccountAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &accountAddFlags{}
	cmd := &cobra.Command{
		Use:           "account-add <token>",
		Short:         "Redeem an account-add promise by attaching a public key",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := promisecommand.AccountAddMessage{
				Token: args[0],
				Addition: core.AccountAddition{
					Key: core.AccountKey{
						Purpose:   core.KeyPurpose(strings.TrimSpace(flags.Purpose)),
						Algorithm: core.KeyAlgorithm(strings.TrimSpace(flags.Algorithm)),
						Bytes:     strings.TrimSpace(flags.Bytes),
					},
					Consent: flags.Consent,
				},
			}
			if msg.Addition.Key.Algorithm == "" {
				if algorithm, ok := core.AlgorithmForPurpose(msg.Addition.Key.Purpose); ok {
					msg.Addition.Key.Algorithm = algorithm
				}
			}
			return withRuntime(rootOpts, cmd, func(rt *runtime, formatter *OutputFormatter) error {
				if err := msg.Validate(); err != nil {
					return reportError(formatter, "account-add", err)
				}
				return runRedemption(cmd.Context(), formatter, "account-add", func(ctx context.Context) error {
					return rt.facade.Commands().AccountAdd.Execute(ctx, msg)
				}, "key attached", "key was already attached")
			})
		},
	}
	cmd.Flags().StringVar(&flags.Purpose, "purpose", string(core.KeyPurposeSig), "key purpose (sig|shs-and-sig|external-encryption)")
	cmd.Flags().StringVar(&flags.Algorithm, "algorithm", "", "key algorithm (defaults to the purpose's algorithm)")
	cmd.Flags().StringVar(&flags.Bytes, "bytes", "", "base58 public key")
	cmd.Flags().StringVar(&flags.Consent, "consent", "", "consent proof from the key holder")
	return cmd
}

// runRedemption executes a redeeming command and prints whether it changed
// anything.
func runRedemption(
	ctx context.Context,
	formatter *OutputFormatter,
	action string,
	execute func(context.Context) error,
	addedText string,
	presentText string,
) error {
	collector := gocmd.NewResult[promisecommand.RedemptionResult]()
	if err := execute(gocmd.ContextWithResult(ctx, collector)); err != nil {
		return reportError(formatter, action, err)
	}
	result, _ := collector.Load()
	text := presentText
	if result.Added {
		text = addedText
	}
	return formatter.Success(result, text)
}

func NewRevokeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "revoke <token>",
		Short:         "Discard a promise without redeeming it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := promisecommand.RevokeMessage{Token: args[0]}
			return withRuntime(rootOpts, cmd, func(rt *runtime, formatter *OutputFormatter) error {
				if err := rt.facade.Commands().Revoke.Execute(cmd.Context(), msg); err != nil {
					return reportError(formatter, "revoke", err)
				}
				return formatter.Success(map[string]string{"token": args[0]}, "revoked")
			})
		},
	}
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List live promises in creation order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := promisequery.ListPromisesMessage{Kind: kind}
			return withRuntime(rootOpts, cmd, func(rt *runtime, formatter *OutputFormatter) error {
				if err := msg.Validate(); err != nil {
					return reportError(formatter, "list", err)
				}
				views, err := rt.facade.Queries().ListPromises.Query(cmd.Context(), msg)
				if err != nil {
					return reportError(formatter, "list", err)
				}
				lines := make([]string, 0, len(views))
				for _, view := range views {
					lines = append(lines, fmt.Sprintf("%s\t%s\t%s", view.Token, view.Kind, view.Account))
				}
				if len(lines) == 0 {
					lines = append(lines, "no promises")
				}
				return formatter.Success(views, strings.Join(lines, "\n"))
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list promises of this kind (follow|account-add)")
	return cmd
}

func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "health",
		Short:         "Report the promise file load state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime, formatter *OutputFormatter) error {
				health, err := rt.facade.Queries().Health.Query(cmd.Context(), promisequery.HealthMessage{})
				if err != nil {
					return reportError(formatter, "health", err)
				}
				text := fmt.Sprintf("%s\t%d promises\t%s", health.State, health.Promises, health.Path)
				return formatter.Success(health, text)
			})
		},
	}
}
