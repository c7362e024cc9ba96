package cmd

import (
	"context"
	"strings"
	"sync"

	"github.com/tierdev/tier-cli/internal/auth"
	"github.com/tierdev/tier-cli/internal/config"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/project"
	"github.com/tierdev/tier-cli/internal/tier"
)

type invocationKey struct{}

// invocation is the per-process state shared by every command handler:
// the configuration sources, the project locator and the credential store.
type invocation struct {
	app      *App
	environ  map[string]string
	env      map[string]string
	flags    map[string]string
	settings *config.Settings
	locator  *project.Locator

	storeMu sync.Mutex
	store   *auth.Store
}

func newInvocation(app *App, flags map[string]string) *invocation {
	environ := app.environ()
	full := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			full[k] = v
		}
	}
	return &invocation{
		app:      app,
		environ:  full,
		env:      config.EnvSnapshot(environ),
		flags:    flags,
		settings: &config.Settings{},
		locator:  newProject(app),
	}
}

func withInvocation(ctx context.Context, inv *invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

func invocationFromContext(ctx context.Context) *invocation {
	if inv, ok := ctx.Value(invocationKey{}).(*invocation); ok {
		return inv
	}
	return nil
}

func (inv *invocation) getenv(key string) string {
	return inv.environ[key]
}

func (inv *invocation) projectRoot() (string, error) {
	return inv.locator.Root()
}

// credentialStore opens the store once. TIER_CREDENTIAL_STORE wins over the
// settings file. Safe for concurrent use; mcp tool calls share one invocation.
func (inv *invocation) credentialStore() (*auth.Store, error) {
	inv.storeMu.Lock()
	defer inv.storeMu.Unlock()

	if inv.store != nil {
		return inv.store, nil
	}
	backend := strings.TrimSpace(inv.getenv(auth.StoreEnvVarName))
	if backend == "" {
		backend = inv.settings.CredentialStore
	}
	open := inv.app.OpenStore
	if open == nil {
		open = auth.Open
	}
	store, err := open(backend, inv.getenv)
	if err != nil {
		return nil, err
	}
	inv.store = store
	return store, nil
}

// resolver builds a Resolver whose credential lookup is scoped to
// projectRoot. An empty projectRoot disables the lookup.
func (inv *invocation) resolver(projectRoot string) *config.Resolver {
	r := &config.Resolver{Flags: inv.flags, Env: inv.env}
	if projectRoot != "" {
		r.Credentials = func(apiHost string) (*auth.Record, error) {
			store, err := inv.credentialStore()
			if err != nil {
				return nil, err
			}
			return store.Lookup(projectRoot)(apiHost)
		}
	}
	return r
}

// resolve computes the effective configuration for the current project.
func (inv *invocation) resolve(opts config.ResolveOptions) (config.Effective, string, error) {
	root, err := inv.projectRoot()
	if err != nil {
		return config.Effective{}, "", err
	}
	eff, err := inv.resolver(root).Resolve(opts)
	if err != nil {
		return config.Effective{}, "", err
	}
	return eff, root, nil
}

// client builds an API client for eff.
func (inv *invocation) client(eff config.Effective) *tier.Client {
	c := tier.NewClient(eff.APIKey).
		WithBaseURL(eff.APIURL).
		WithWebURL(eff.WebURL).
		WithAuthType(eff.AuthType).
		WithUserAgent("tier-cli/" + inv.app.Version)
	if inv.app.HTTPClient != nil {
		hc := *inv.app.HTTPClient
		c.WithHTTPClient(&hc)
	}
	if !eff.HasKey() {
		c.WithAuthHeaderDisabled()
	}
	if eff.Debug {
		c.WithDebugOutput(inv.app.stderr())
	}
	return c
}

// authedClient resolves the configuration and fails with an AuthError when
// no key is available.
func (inv *invocation) authedClient() (*tier.Client, error) {
	eff, _, err := inv.resolve(config.ResolveOptions{})
	if err != nil {
		return nil, err
	}
	if !eff.HasKey() {
		return nil, clierrors.AuthRequiredError(nil)
	}
	return inv.client(eff), nil
}

func requireInvocation(ctx context.Context) (*invocation, error) {
	inv := invocationFromContext(ctx)
	if inv == nil {
		return nil, &clierrors.ConfigError{Field: "context", Message: "command run without the root command"}
	}
	return inv, nil
}
