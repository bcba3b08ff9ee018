package main

import (
	"errors"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"hintbind/binder"
	"hintbind/internal/config"
	"hintbind/internal/logging"
	"hintbind/internal/report"
	"hintbind/internal/version"
	"hintbind/marker"
)

// errReported is returned after a failure was already printed as a report.
var errReported = errors.New("failures reported")

// app is the state shared by all subcommands, filled in before each run.
type app struct {
	in          io.Reader
	out, errOut io.Writer

	cfg      *config.Config
	logger   *zap.Logger
	printer  *report.Printer
	registry *marker.Registry
	dump     bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, registry: marker.Default()}

	root := &cobra.Command{
		Use:           "hintbind",
		Short:         "Check and apply marker declarations",
		Long:          `hintbind resolves marker chains declared in struct tags, definition files and OpenAPI documents, and binds value documents against them.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./"+config.DefaultFile+" when present)")
	flags.String("color", "", "colorize output (auto|on|off)")
	flags.String("format", "", "output format (table|json|msgpack)")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("tag-key", "", "struct tag key holding marker specs")
	flags.Bool("strict", false, "report values that match no field")
	flags.Bool("dump", false, "dump resolved chains to stderr")

	root.AddCommand(
		newCheckCmd(a),
		newBindCmd(a),
		newConvertCmd(a),
		newMarkersCmd(a),
		newVersionCmd(a),
	)

	return root
}

// setup loads the config and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	explicit := path != ""

	if !explicit {
		path = config.DefaultFile
	}

	cfg := config.Default()

	if _, err := os.Stat(path); err == nil || explicit {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	for flag, dst := range map[string]*string{
		"color":     &cfg.Output.Color,
		"format":    &cfg.Output.Format,
		"log-level": &cfg.Log.Level,
		"tag-key":   &cfg.Binder.TagKey,
	} {
		if flags.Changed(flag) {
			*dst, _ = flags.GetString(flag)
		}
	}

	if flags.Changed("strict") {
		cfg.Binder.Strict, _ = flags.GetBool("strict")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(a.errOut, cfg.Log.Level)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.printer = report.New(a.out, format, useColor(cfg.Output.Color, a.out))
	a.dump, _ = flags.GetBool("dump")

	logger.Debug("config loaded", zap.String("path", path), zap.Any("config", cfg))

	return nil
}

func (a *app) binderOptions() []binder.Option {
	opts := []binder.Option{binder.WithLogger(a.logger)}
	if a.cfg.Binder.Strict {
		opts = append(opts, binder.WithStrict())
	}

	return opts
}

// dumpValue writes v to stderr when --dump is set.
func (a *app) dumpValue(label string, v any) {
	if !a.dump {
		return
	}

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	io.WriteString(a.errOut, "# "+label+"\n")
	cfg.Fdump(a.errOut, v)
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}

	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
