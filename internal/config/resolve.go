package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/tierdev/tier-cli/internal/auth"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/validate"
)

// Built-in defaults.
const (
	DefaultAPIURL   = "https://api.tier.run"
	DefaultWebURL   = "https://tier.run"
	DefaultAuthType = AuthBasic
)

// Auth types accepted by the API.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// NoAuth is the API key used by clients that must not send credentials,
// such as the one driving the login flow.
const NoAuth = "\x00tier-no-auth"

// EnvPrefix namespaces every environment variable the resolver reads.
const EnvPrefix = "TIER_"

// Environment variable names.
const (
	EnvAPIURL   = EnvPrefix + "API_URL"
	EnvWebURL   = EnvPrefix + "WEB_URL"
	EnvKey      = EnvPrefix + "KEY"
	EnvAuthType = EnvPrefix + "AUTH_TYPE"
	EnvDebug    = EnvPrefix + "DEBUG"
)

// Flag names the resolver looks up in Resolver.Flags.
const (
	FlagAPIURL   = "api-url"
	FlagWebURL   = "web-url"
	FlagKey      = "key"
	FlagAuthType = "auth-type"
	FlagDebug    = "debug"
)

// Source identifies where an effective value came from.
type Source string

const (
	SourceFlag       Source = "flag"
	SourceEnv        Source = "env"
	SourceCredential Source = "credential"
	SourceDefault    Source = "default"
	SourceNoAuth     Source = "no-auth"
	SourceUnset      Source = "unset"
)

// Effective is the resolved configuration for one invocation.
type Effective struct {
	APIURL   string
	WebURL   string
	APIKey   string
	AuthType string
	Debug    bool

	sources map[string]Source
}

// APIHost returns the host (and port, if any) of APIURL.
func (e Effective) APIHost() string {
	return apiHost(e.APIURL)
}

// HasKey reports whether a real API key was resolved.
func (e Effective) HasKey() bool {
	return e.APIKey != "" && e.APIKey != NoAuth
}

// Source returns where field was resolved from.
func (e Effective) Source(field string) Source {
	if s, ok := e.sources[field]; ok {
		return s
	}
	return SourceUnset
}

// Sources returns a copy of the per-field source map.
func (e Effective) Sources() map[string]Source {
	out := make(map[string]Source, len(e.sources))
	for field, src := range e.sources {
		out[field] = src
	}
	return out
}

// CredentialLookup returns the stored credential for an API host, or nil.
type CredentialLookup func(apiHost string) (*auth.Record, error)

// Resolver merges flags, environment and stored credentials into an
// Effective configuration. Flags holds only flags the user actually set.
type Resolver struct {
	Flags       map[string]string
	Env         map[string]string
	Credentials CredentialLookup
}

// ResolveOptions tweaks a single resolution.
type ResolveOptions struct {
	// NoAuth skips every key source and yields the NoAuth sentinel.
	NoAuth bool
}

// Resolve computes the effective configuration. Each field resolves
// independently: flag, then environment, then stored credential, then
// default. Missing values are never an error; invalid ones are.
func (r *Resolver) Resolve(opts ResolveOptions) (Effective, error) {
	eff := Effective{sources: map[string]Source{}}

	var src Source
	eff.APIURL, src = r.pick(FlagAPIURL, EnvAPIURL, DefaultAPIURL)
	eff.sources["api_url"] = src
	if err := validateURL("api url", eff.APIURL); err != nil {
		return Effective{}, err
	}

	eff.WebURL, src = r.pick(FlagWebURL, EnvWebURL, DefaultWebURL)
	eff.sources["web_url"] = src
	if err := validateURL("web url", eff.WebURL); err != nil {
		return Effective{}, err
	}

	debug, src := r.pick(FlagDebug, EnvDebug, "false")
	eff.sources["debug"] = src
	b, ok := ParseBool(debug)
	if !ok {
		return Effective{}, &clierrors.ConfigError{
			Field:   "debug",
			Value:   debug,
			Message: "expected true or false",
		}
	}
	eff.Debug = b

	// The credential is consulted only when some field still needs it.
	var rec *auth.Record
	needKey := !opts.NoAuth && !r.has(FlagKey, EnvKey)
	needAuthType := !r.has(FlagAuthType, EnvAuthType)
	if r.Credentials != nil && !opts.NoAuth && (needKey || needAuthType) {
		var err error
		rec, err = r.Credentials(eff.APIHost())
		if err != nil {
			return Effective{}, err
		}
	}

	switch {
	case opts.NoAuth:
		eff.APIKey, src = NoAuth, SourceNoAuth
	case r.Flags[FlagKey] != "":
		eff.APIKey, src = r.Flags[FlagKey], SourceFlag
	case r.Env[EnvKey] != "":
		eff.APIKey, src = r.Env[EnvKey], SourceEnv
	case rec != nil && rec.Token != "":
		eff.APIKey, src = rec.Token, SourceCredential
	default:
		eff.APIKey, src = "", SourceUnset
	}
	eff.sources["key"] = src

	switch {
	case r.Flags[FlagAuthType] != "":
		eff.AuthType, src = r.Flags[FlagAuthType], SourceFlag
	case r.Env[EnvAuthType] != "":
		eff.AuthType, src = r.Env[EnvAuthType], SourceEnv
	case rec != nil && rec.AuthType != "":
		eff.AuthType, src = rec.AuthType, SourceCredential
	default:
		eff.AuthType, src = DefaultAuthType, SourceDefault
	}
	eff.sources["auth_type"] = src
	eff.AuthType = strings.ToLower(strings.TrimSpace(eff.AuthType))
	if eff.AuthType != AuthBasic && eff.AuthType != AuthBearer {
		return Effective{}, &clierrors.ConfigError{
			Field:   "auth type",
			Value:   eff.AuthType,
			Message: "expected basic or bearer",
		}
	}

	return eff, nil
}

func (r *Resolver) pick(flag, env, def string) (string, Source) {
	if v := r.Flags[flag]; v != "" {
		return v, SourceFlag
	}
	if v := r.Env[env]; v != "" {
		return v, SourceEnv
	}
	return def, SourceDefault
}

func (r *Resolver) has(flag, env string) bool {
	return r.Flags[flag] != "" || r.Env[env] != ""
}

func validateURL(field, raw string) error {
	var verr *validate.Error
	if err := validate.URL(field, raw); errors.As(err, &verr) {
		return &clierrors.ConfigError{Field: field, Value: raw, Message: verr.Reason}
	}
	return nil
}

func apiHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// ParseBool parses the boolean spellings accepted in TIER_ variables.
func ParseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "", "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// EnvSnapshot turns a list of KEY=value pairs (as from os.Environ) into a
// map holding only TIER_ variables.
func EnvSnapshot(environ []string) map[string]string {
	env := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		env[k] = v
	}
	return env
}
