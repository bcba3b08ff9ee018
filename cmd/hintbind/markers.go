package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hintbind/internal/version"
)

func newMarkersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "List the registered marker names",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printer.Names("MARKER", a.registry.Names())
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			name := color.New(color.Bold)
			if !useColor(a.cfg.Output.Color, a.out) {
				name.DisableColor()
			}

			_, err := fmt.Fprintf(a.out, "%s %s\n", name.Sprint("hintbind"), version.Version)

			return err
		},
	}
}
