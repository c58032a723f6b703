package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/registry"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	JSONSchema bool
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema [kind]",
		Short: "Show the action registry",
		Long: `Print the action documentation given to the model, or the schema of
one action kind.

Examples:
  storepilot schema
  storepilot schema ADD_SECTION
  storepilot schema ADD_SECTION --json-schema`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONSchema, "json-schema", false, "print a JSON Schema document for the kind")
	return cmd
}

func runSchema(opts *SchemaOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	reg := registry.Default()

	if len(args) == 0 {
		if opts.JSONSchema {
			return f.Fail(ExitCommandError, ErrCodeInvalidInput, "--json-schema needs an action kind", nil)
		}
		if f.JSON() {
			return f.Success(map[string]any{"kinds": reg.Kinds(), "docs": reg.Docs()})
		}
		fmt.Fprint(f.Writer, reg.Docs())
		return nil
	}

	kind := ir.Kind(strings.ToUpper(strings.TrimSpace(args[0])))
	schema, ok := reg.Lookup(kind)
	if !ok {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("unknown action type %q", args[0]), nil)
	}

	if opts.JSONSchema {
		doc, err := reg.JSONSchema(kind)
		if err != nil {
			return fmt.Errorf("failed to build schema: %w", err)
		}
		if f.JSON() {
			return f.Success(json.RawMessage(doc))
		}
		fmt.Fprintln(f.Writer, string(doc))
		return nil
	}

	if f.JSON() {
		return f.Success(schema)
	}
	fmt.Fprintf(f.Writer, "%s\n", schema.Kind)
	if schema.Description != "" {
		fmt.Fprintf(f.Writer, "  %s\n", schema.Description)
	}
	for _, field := range schema.Fields {
		req := "optional"
		if field.Required {
			req = "required"
		}
		fmt.Fprintf(f.Writer, "  %s (%s, %s)\n", field.Name, field.Type, req)
	}
	return nil
}
