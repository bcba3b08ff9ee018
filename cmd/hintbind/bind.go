package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hintbind/binder"
	"hintbind/internal/report"
)

func newBindCmd(a *app) *cobra.Command {
	var (
		src    sourceSet
		target string
		values string
	)

	cmd := &cobra.Command{
		Use:   "bind --target NAME [--values FILE|-]",
		Short: "Bind a value document against one target",
		Long: `bind reads a JSON or YAML mapping of field names to values, runs every
field through its marker chain and prints the bound values or the failures.`,
		Example: `  echo '{"age": "42"}' | hintbind bind --defs signup.yaml --target signup
  hintbind bind --package ./store --target store.Customer --values customer.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := src.withDefaults(a.cfg.Sources)
			if err != nil {
				return err
			}

			l, err := a.load(cmd.Context(), src)
			if err != nil {
				return err
			}

			if l.diagnostics.HasErrors() {
				if err := a.printer.Diagnostics(l.diagnostics); err != nil {
					return err
				}

				return errReported
			}

			registry, err := l.registry()
			if err != nil {
				return err
			}

			b, err := binder.NewCache(a.binderOptions()...).Lookup(cmd.Context(), registry, target)
			if err != nil {
				return err
			}

			a.dumpValue(target, b.Chains())

			doc, err := a.readValues(values)
			if err != nil {
				return err
			}

			bound, bindErr := b.Bind(doc)

			if err := a.printer.Outcome(report.NewOutcome(target, bound, bindErr)); err != nil {
				return err
			}

			if bindErr != nil {
				return errReported
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "target to bind against")
	cmd.Flags().StringVar(&values, "values", "-", "value document, - for stdin")
	cmd.Flags().StringSliceVar(&src.Definitions, "defs", nil, "definition file (yaml or toml), repeatable")
	cmd.Flags().StringSliceVar(&src.OpenAPI, "openapi", nil, "OpenAPI 3 document, repeatable")
	cmd.Flags().StringSliceVar(&src.Packages, "package", nil, "Go package pattern, repeatable")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// readValues decodes a mapping from path or, for "-", from stdin. JSON is
// read as YAML.
func (a *app) readValues(path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}

	return parseValues(data)
}

func parseValues(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}

	if doc == nil {
		return nil, errors.New("value document is empty")
	}

	return doc, nil
}
