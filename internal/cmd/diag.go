package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/auth"
	"github.com/tierdev/tier-cli/internal/config"
	"github.com/tierdev/tier-cli/internal/iocontext"
	"github.com/tierdev/tier-cli/internal/redact"
)

func newProjectDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "projectDir",
		Short:       "Print the project directory credentials are scoped to",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := requireInvocation(ctx)
			if err != nil {
				return err
			}
			root, err := inv.projectRoot()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(iocontext.Stdout(ctx), root)
			return err
		},
	}
}

func newDumpconfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dumpconf",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := requireInvocation(ctx)
			if err != nil {
				return err
			}
			dump, err := buildConfigDump(inv)
			if err != nil {
				return err
			}
			return printerForContext(ctx).Print(ctx, dump)
		},
	}
}

// buildConfigDump describes the effective configuration, where each value
// came from, and the TIER_ environment. Keys are redacted.
func buildConfigDump(inv *invocation) (map[string]interface{}, error) {
	eff, root, err := inv.resolve(config.ResolveOptions{})
	if err != nil {
		return nil, err
	}

	sources := map[string]interface{}{}
	for field, src := range eff.Sources() {
		sources[field] = string(src)
	}

	env := map[string]interface{}{}
	names := make([]string, 0, len(inv.env))
	for k := range inv.env {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := inv.env[k]
		if k == config.EnvKey || k == auth.KeyringPasswordEnvVarName {
			v = redact.Secret(v)
		}
		env[k] = v
	}

	settingsPath, _ := config.SettingsPath(inv.env)

	return map[string]interface{}{
		"project_dir":   root,
		"api_url":       eff.APIURL,
		"api_host":      eff.APIHost(),
		"web_url":       eff.WebURL,
		"key":           redact.Secret(eff.APIKey),
		"auth_type":     eff.AuthType,
		"debug":         eff.Debug,
		"sources":       sources,
		"env":           env,
		"settings_file": settingsPath,
	}, nil
}
