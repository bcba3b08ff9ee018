package main

import (
	"github.com/spf13/cobra"

	"hintbind/binder"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		src    sourceSet
		chains bool
	)

	cmd := &cobra.Command{
		Use:   "check [PACKAGE]...",
		Short: "Resolve every declared chain and report problems",
		Long: `check loads definition files, OpenAPI documents and Go packages, resolves
the marker chain of every field and reports unknown markers, conflicts and
kind mismatches. Without arguments the [sources] of the config are used.`,
		Example: `  hintbind check ./...
  hintbind check --defs signup.yaml --openapi api.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src.Packages = args

			src, err := src.withDefaults(a.cfg.Sources)
			if err != nil {
				return err
			}

			l, err := a.load(cmd.Context(), src)
			if err != nil {
				return err
			}

			cache := binder.NewCache(a.binderOptions()...)

			for _, t := range l.targets {
				b, err := cache.Get(t)
				if err != nil {
					l.diagnostics.AddErr(err, t.Name, "", l.origin[t.Name])
					continue
				}

				a.dumpValue(t.Name, b.Chains())

				if chains {
					if err := a.printer.Chains(t.Name, b.Chains()); err != nil {
						return err
					}
				}
			}

			if err := a.printer.Diagnostics(l.diagnostics); err != nil {
				return err
			}

			if l.diagnostics.HasErrors() {
				return errReported
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&src.Definitions, "defs", nil, "definition file (yaml or toml), repeatable")
	cmd.Flags().StringSliceVar(&src.OpenAPI, "openapi", nil, "OpenAPI 3 document, repeatable")
	cmd.Flags().BoolVar(&chains, "chains", false, "print the resolved chain of every target")

	return cmd
}
