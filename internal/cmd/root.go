package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/config"
	"github.com/tierdev/tier-cli/internal/iocontext"
	"github.com/tierdev/tier-cli/internal/logging"
	"github.com/tierdev/tier-cli/internal/output"
	"github.com/tierdev/tier-cli/internal/project"
	"github.com/tierdev/tier-cli/internal/ui"
)

// skipConfigAnnotation marks commands that run without resolving the
// effective configuration.
const skipConfigAnnotation = "tier.skip-config"

type rootFlags struct {
	apiURL   string
	webURL   string
	key      string
	authType string
	debug    bool
	noDebug  bool
	output   string
	query    string
	jsonPath string
	color    string
}

func newRootCmd(app *App) *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "tier",
		Short: "CLI for the tier pricing API",
		Long: `tier manages pricing models on tier.run.

Credentials are stored per API host and project directory. The project
directory is the closest ancestor of the working directory (below your home
directory) that contains a .git, go.mod, package.json or similar marker.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return preRun(app, cmd, &flags)
		},
	}

	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(versionLine(app) + "\n")
	rootCmd.SetOut(app.stdout())
	rootCmd.SetErr(app.stderr())
	if app.Stdin != nil {
		rootCmd.SetIn(app.Stdin)
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, config.FlagAPIURL, "", "API base URL (env TIER_API_URL, default "+config.DefaultAPIURL+")")
	pf.StringVar(&flags.webURL, config.FlagWebURL, "", "Web app URL used for login (env TIER_WEB_URL, default "+config.DefaultWebURL+")")
	pf.StringVar(&flags.key, config.FlagKey, "", "API key (env TIER_KEY, default: stored login)")
	pf.StringVar(&flags.authType, config.FlagAuthType, "", "How the key is sent: basic|bearer (env TIER_AUTH_TYPE)")
	pf.BoolVar(&flags.debug, config.FlagDebug, false, "Log HTTP requests and responses to stderr (env TIER_DEBUG)")
	pf.BoolVar(&flags.noDebug, "no-debug", false, "Disable debug output even if TIER_DEBUG is set")
	pf.StringVarP(&flags.output, "output", "o", "", "Output format: json|yaml|text")
	pf.StringVarP(&flags.query, "query", "q", "", "JQ expression to filter output")
	pf.StringVar(&flags.jsonPath, "jsonpath", "", "Extract a value using JSONPath (e.g. $.plans)")
	pf.StringVar(&flags.color, "color", "", "Color mode: auto|always|never")
	rootCmd.MarkFlagsMutuallyExclusive(config.FlagDebug, "no-debug")

	flagAlias(pf, "output", "format")
	flagAlias(pf, "query", "jq")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newProjectDirCmd())
	rootCmd.AddCommand(newDumpconfCmd())
	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newMCPCmd(app))

	return rootCmd
}

func preRun(app *App, cmd *cobra.Command, flags *rootFlags) error {
	inv := newInvocation(app, changedFlags(cmd, flags))

	settings, err := config.LoadSettings(inv.env)
	if err != nil {
		return err
	}
	inv.settings = settings

	var eff config.Effective
	if !skipsConfig(cmd) {
		// Key sources are not consulted here; commands resolve again with
		// credentials when they need them.
		eff, err = inv.resolver("").Resolve(config.ResolveOptions{NoAuth: true})
		if err != nil {
			return err
		}
	}
	logging.SetupFormat(eff.Debug, app.stderr(), inv.env[logging.EnvFormat])

	formatStr := flags.output
	if formatStr == "" {
		formatStr = settings.Output
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	colorStr := flags.color
	if colorStr == "" {
		colorStr = settings.Color
	}
	colorMode, err := ui.ParseColorMode(colorStr)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ctx = iocontext.WithIO(ctx, app.Stdin, app.stdout(), app.stderr())
	ctx = output.WithFormat(ctx, format)
	ctx = output.WithQuery(ctx, flags.query)
	ctx = output.WithJSONPath(ctx, flags.jsonPath)
	ctx = ui.WithUI(ctx, ui.NewWithWriter(app.stderr(), colorMode))
	ctx = withInvocation(ctx, inv)
	cmd.SetContext(ctx)
	return nil
}

// changedFlags returns the resolver flag map: only flags the user set.
func changedFlags(cmd *cobra.Command, flags *rootFlags) map[string]string {
	out := map[string]string{}
	set := func(name, value string) {
		if commandFlagChanged(cmd, name) {
			out[name] = value
		}
	}
	set(config.FlagAPIURL, flags.apiURL)
	set(config.FlagWebURL, flags.webURL)
	set(config.FlagKey, flags.key)
	set(config.FlagAuthType, flags.authType)
	set(config.FlagDebug, strconv.FormatBool(flags.debug))
	if commandFlagChanged(cmd, "no-debug") && flags.noDebug {
		out[config.FlagDebug] = "false"
	}
	return out
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
		if c.Name() == "help" || c.Name() == "completion" || strings.HasPrefix(c.Name(), cobra.ShellCompRequestCmd) {
			return true
		}
	}
	return false
}

func commandFlagChanged(cmd *cobra.Command, name string) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if flag := current.Flags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
		if flag := current.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
	}
	return false
}

func versionLine(app *App) string {
	return fmt.Sprintf("tier %s (commit: %s, built: %s)", app.Version, app.Commit, app.BuildTime)
}

func newProject(app *App) *project.Locator {
	loc := project.NewLocator()
	if app.WorkingDir != nil {
		loc.WorkingDir = app.WorkingDir
	}
	if app.HomeDir != nil {
		loc.HomeDir = app.HomeDir
	}
	return loc
}
