// Package output renders command results for the tier CLI.
//
// Supported formats:
//   - json: two-space indented JSON (default)
//   - yaml: YAML
//   - text: sorted key-value lines for objects, one line per list item
//
// Results can be shaped before rendering with a JSONPath expression
// (--jsonpath) and then a jq filter (--query).
//
// # Context-Based Dependency Injection
//
// The root command parses the flags once in PersistentPreRunE:
//
//	format, err := output.ParseFormat(formatFlag)
//	if err != nil {
//	    return err
//	}
//	ctx := output.WithFormat(cmd.Context(), format)
//	ctx = output.WithQuery(ctx, queryFlag)
//	cmd.SetContext(ctx)
//
// Commands then print through a Printer:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), output.FormatFromContext(ctx))
//	return printer.Print(ctx, data)
package output
