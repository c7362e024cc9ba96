package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/iocontext"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(iocontext.Stdout(cmd.Context()), versionLine(app))
			return err
		},
	}
}
