package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/auth"
	"github.com/tierdev/tier-cli/internal/browser"
	"github.com/tierdev/tier-cli/internal/config"
	"github.com/tierdev/tier-cli/internal/deviceflow"
	"github.com/tierdev/tier-cli/internal/iocontext"
	"github.com/tierdev/tier-cli/internal/ui"
)

// EnvNoBrowser disables the browser launch during login when truthy.
const EnvNoBrowser = config.EnvPrefix + "NO_BROWSER"

func newLoginCmd() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to tier for the current project",
		Long: `Authorize this project with tier using the device login flow.

A code is shown and your browser is opened on the verification page. Once
you approve, the token is stored for the current API host and project
directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), noBrowser)
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open a browser; print the verification URL instead")
	return cmd
}

func runLogin(ctx context.Context, noBrowser bool) error {
	inv, err := requireInvocation(ctx)
	if err != nil {
		return err
	}

	eff, root, err := inv.resolve(config.ResolveOptions{NoAuth: true})
	if err != nil {
		return err
	}
	store, err := inv.credentialStore()
	if err != nil {
		return err
	}

	stdin := iocontext.Stdin(ctx)
	noBrowser = noBrowser || envTruthy(inv.getenv(EnvNoBrowser)) || inv.settings.NoBrowser || !browser.Interactive(stdin)

	openBrowser := inv.app.OpenBrowser
	if openBrowser == nil {
		openBrowser = browser.Open
	}

	u := ui.FromContext(ctx)
	flow := &deviceflow.Flow{
		Remote:      inv.client(eff),
		Store:       store,
		Present:     presentSession(u, noBrowser),
		OpenBrowser: openBrowser,
		NoBrowser:   noBrowser,
		Sleep:       inv.app.Sleep,
	}

	if _, err := flow.Run(ctx, eff.APIHost(), root); err != nil {
		return err
	}

	return printLoggedIn(iocontext.Stdout(ctx), root)
}

func printLoggedIn(w io.Writer, root string) error {
	_, err := fmt.Fprintf(w, "Logged into tier!\nproject: %s\n", root)
	return err
}

// presentSession tells the user where to approve the login.
func presentSession(u *ui.UI, noBrowser bool) func(deviceflow.Session) {
	return func(s deviceflow.Session) {
		w := u.Writer()
		switch {
		case s.VerificationURIComplete != "" && !noBrowser:
			_, _ = fmt.Fprintf(w, "\nAttempting to open your browser to complete the authorization.\n\nIf that fails, please navigate to: %s\nand enter the code: %s\n\n",
				s.VerificationURI, u.Code(s.UserCode))
		case s.VerificationURIComplete != "":
			_, _ = fmt.Fprintf(w, "\nTo complete the verification, open: %s\n\nor navigate to: %s\nand enter the code: %s\n\n",
				s.VerificationURIComplete, s.VerificationURI, u.Code(s.UserCode))
		default:
			_, _ = fmt.Fprintf(w, "\nTo complete the verification, copy this code: %s\nand enter it at: %s\n\n",
				u.Code(s.UserCode), s.VerificationURI)
		}
		u.Info("Waiting...")
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored login for the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := requireInvocation(ctx)
			if err != nil {
				return err
			}
			eff, root, err := inv.resolve(config.ResolveOptions{NoAuth: true})
			if err != nil {
				return err
			}
			store, err := inv.credentialStore()
			if err != nil {
				return err
			}
			if err := store.Delete(auth.Key{APIHost: eff.APIHost(), ProjectRoot: root}); err != nil {
				return fmt.Errorf("failed to remove credential: %w", err)
			}
			ui.FromContext(ctx).Success("Logged out of %s for %s", eff.APIHost(), root)
			return nil
		},
	}
}

func envTruthy(value string) bool {
	b, ok := config.ParseBool(value)
	return ok && b
}
