package main

import (
	"github.com/spf13/cobra"

	"hintbind/internal/definition"
	"hintbind/internal/openapi"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		out  string
		opts openapi.Options
	)

	cmd := &cobra.Command{
		Use:   "convert OPENAPI",
		Short: "Write the targets of an OpenAPI document as a definition file",
		Example: `  hintbind convert api.yaml -o api.defs.toml
  hintbind convert api.yaml --operations`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openapi.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f, err := openapi.Convert(doc, opts)
			if err != nil {
				return err
			}

			if out != "" {
				return definition.WriteFile(f, out)
			}

			data, err := definition.Marshal(f, definition.FormatYAML)
			if err != nil {
				return err
			}

			_, err = a.out.Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, format from the extension (default yaml on stdout)")
	cmd.Flags().BoolVar(&opts.Operations, "operations", false, "also convert JSON request bodies")
	cmd.Flags().BoolVar(&opts.NoCoerce, "no-coerce", false, "leave out coerce markers")

	return cmd
}
