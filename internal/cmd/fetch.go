package cmd

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tierdev/tier-cli/internal/cmdutil"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/iocontext"
	"github.com/tierdev/tier-cli/internal/tier"
	"github.com/tierdev/tier-cli/internal/validate"
)

const fetchUsage = "usage: tier fetch <path> [-X method] [-H 'Name: value']... [-d data]"

func newFetchCmd() *cobra.Command {
	var (
		method  string
		headers []string
		data    string
	)

	cmd := &cobra.Command{
		Use:   "fetch <path>",
		Short: "Make an authenticated request to any API path",
		Long: `Make an authenticated request to the tier API.

The path is relative to the API URL unless it is a full URL. -d takes the
body inline, as @file, or - for stdin; a body without -X is sent as POST.`,
		Example: `  tier fetch /v1/whoami
  tier fetch -X POST /v1/push -d @pricing.json
  tier fetch /v1/pull -H 'Accept: application/json'`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return clierrors.NewUsageError("fetch needs exactly one path", fetchUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := requireInvocation(ctx)
			if err != nil {
				return err
			}

			h, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			opts := tier.FetchOptions{Method: method, Headers: h}
			if data != "" {
				body, err := cmdutil.ResolveBody(data, iocontext.Stdin(ctx))
				if err != nil {
					return err
				}
				opts.Body = []byte(cmdutil.NormalizeJSONInput(body))
				if json.Valid(opts.Body) && h.Get("Content-Type") == "" {
					opts.Headers.Set("Content-Type", "application/json")
				}
			}

			c, err := inv.authedClient()
			if err != nil {
				return err
			}
			resp, err := c.Fetch(ctx, args[0], opts)
			if err != nil {
				return err
			}

			if isJSONResponse(resp) {
				return printerForContext(ctx).Print(ctx, json.RawMessage(resp.Body))
			}
			_, err = iocontext.Stdout(ctx).Write(resp.Body)
			return err
		},
	}

	cmd.Flags().StringVarP(&method, "request", "X", "", "HTTP method (default GET, or POST with -d)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "Request body: inline, @file, or - for stdin")
	return cmd
}

func parseHeaders(raw []string) (http.Header, error) {
	h := http.Header{}
	for _, line := range raw {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, clierrors.NewUsageError("invalid header "+line+"; expected 'Name: value'", fetchUsage)
		}
		if err := validate.HeaderName(name); err != nil {
			return nil, clierrors.NewUsageError(err.Error(), fetchUsage)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func isJSONResponse(resp *tier.RawResponse) bool {
	ct := strings.ToLower(resp.Headers.Get("Content-Type"))
	if strings.Contains(ct, "json") {
		return json.Valid(resp.Body)
	}
	return ct == "" && len(resp.Body) > 0 && json.Valid(resp.Body)
}
