package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hintbind/hint"
	"hintbind/internal/analyze"
	"hintbind/internal/config"
	"hintbind/internal/definition"
	"hintbind/internal/diagnostic"
	"hintbind/internal/openapi"
)

// sourceSet names the inputs of one run.
type sourceSet struct {
	Definitions []string
	OpenAPI     []string
	Packages    []string
}

func (s sourceSet) empty() bool {
	return len(s.Definitions)+len(s.OpenAPI)+len(s.Packages) == 0
}

// withDefaults falls back to the [sources] section of the config and
// expands globs.
func (s sourceSet) withDefaults(cfg config.Sources) (sourceSet, error) {
	if s.empty() {
		s = sourceSet{Definitions: cfg.Definitions, OpenAPI: cfg.OpenAPI, Packages: cfg.Packages}
	}

	var err error

	if s.Definitions, err = config.Expand(s.Definitions); err != nil {
		return s, err
	}

	if s.OpenAPI, err = config.Expand(s.OpenAPI); err != nil {
		return s, err
	}

	return s, nil
}

// loaded is every target found, plus what went wrong finding them.
type loaded struct {
	targets     []*hint.Target
	origin      map[string]string
	diagnostics diagnostic.Diagnostics
}

func (l *loaded) add(origin string, targets ...*hint.Target) {
	for _, t := range targets {
		if prev, ok := l.origin[t.Name]; ok {
			l.diagnostics.AddError(diagnostic.CodeConflict,
				fmt.Sprintf("target also declared in %s", prev), t.Name, "")

			continue
		}

		l.origin[t.Name] = origin
		l.targets = append(l.targets, t)
	}
}

// registry collects the loaded targets into one lookup source.
func (l *loaded) registry() (*hint.Registry, error) {
	r := hint.NewRegistry()
	if err := r.Add(l.targets...); err != nil {
		return nil, err
	}

	return r, nil
}

// load reads every source. Problems become diagnostics so that one broken
// file does not hide the others; only context errors abort.
func (a *app) load(ctx context.Context, s sourceSet) (*loaded, error) {
	l := &loaded{origin: map[string]string{}}

	for _, path := range s.Definitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := definition.LoadFile(path)
		if err != nil {
			l.diagnostics.AddError(diagnostic.CodeLoad, err.Error(), path, "")
			continue
		}

		a.addFile(l, path, f)
	}

	for _, path := range s.OpenAPI {
		doc, err := openapi.LoadFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			l.diagnostics.AddError(diagnostic.CodeLoad, err.Error(), path, "")

			continue
		}

		f, err := openapi.Convert(doc, openapi.Options{Operations: true})
		if err != nil {
			l.diagnostics.AddError(diagnostic.CodeLoad, err.Error(), path, "")
			continue
		}

		a.addFile(l, path, f)
	}

	if len(s.Packages) > 0 {
		an := analyze.NewAnalyzer(
			analyze.WithTagKey(a.cfg.Binder.TagKey),
			analyze.WithRegistry(a.registry),
			analyze.WithLogger(a.logger),
		)

		if _, err := an.LoadPackages(ctx, s.Packages...); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			l.diagnostics.AddError(diagnostic.CodeLoad, err.Error(), "", "")
		} else {
			res := an.Check()
			l.diagnostics.Merge(res.Diagnostics)
			l.add("go packages", res.Targets...)
		}
	}

	a.logger.Debug("sources loaded",
		zap.Int("targets", len(l.targets)),
		zap.Int("errors", len(l.diagnostics.Errors)))

	return l, nil
}

func (a *app) addFile(l *loaded, path string, f *definition.File) {
	for _, td := range f.Targets {
		one := definition.File{Version: f.Version, Targets: []definition.TargetDef{td}}

		targets, err := one.Build(a.registry)
		if err != nil {
			l.diagnostics.AddErr(err, td.Name, "", path)
			continue
		}

		l.add(path, targets...)
	}
}
