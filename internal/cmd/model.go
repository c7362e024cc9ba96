package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/cmdutil"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/iocontext"
	"github.com/tierdev/tier-cli/internal/output"
)

const (
	pushUsage = "usage: tier push <pricing.json>"
	pullUsage = "usage: tier pull"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <pricing.json>",
		Short: "Upload a pricing model",
		Long: `Upload a pricing model to tier.

The file may contain // and /* */ comments and trailing commas. Use - to
read the model from stdin.`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return clierrors.NewUsageError("must supply filename", pushUsage)
			case 1:
				return nil
			default:
				return clierrors.NewUsageError("push accepts exactly one file", pushUsage)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := cmdutil.ReadModel(args[0], iocontext.Stdin(ctx))
			if err != nil {
				return clierrors.NewUsageError(err.Error(), pushUsage)
			}
			return callAndPrint(ctx, func(ctx context.Context, inv *invocation) (json.RawMessage, error) {
				c, err := inv.authedClient()
				if err != nil {
					return nil, err
				}
				return c.PushModel(ctx, model)
			})
		},
	}
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Print the current pricing model",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return clierrors.NewUsageError("pull takes no arguments", pullUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd.Context(), func(ctx context.Context, inv *invocation) (json.RawMessage, error) {
				c, err := inv.authedClient()
				if err != nil {
					return nil, err
				}
				return c.PullModel(ctx)
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the current key belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(cmd.Context(), func(ctx context.Context, inv *invocation) (json.RawMessage, error) {
				c, err := inv.authedClient()
				if err != nil {
					return nil, err
				}
				return c.Ping(ctx)
			})
		},
	}
}

// callAndPrint runs call and prints its result only if it succeeded.
func callAndPrint(ctx context.Context, call func(context.Context, *invocation) (json.RawMessage, error)) error {
	inv, err := requireInvocation(ctx)
	if err != nil {
		return err
	}
	result, err := call(ctx, inv)
	if err != nil {
		return err
	}
	return printerForContext(ctx).Print(ctx, result)
}

func printerForContext(ctx context.Context) *output.Printer {
	return output.NewPrinter(iocontext.Stdout(ctx), output.FormatFromContext(ctx))
}
