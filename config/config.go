// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides the discovery config.
//
// A config file is a starlark file; its top-level globals override
// defaults, e.g.
//
//	framework = "labrat.h"
//	output = "labrat_data.c"
//	exclude = ["third_party", "out/*"]
//	shapes = [
//	    shape("test", "TEST_CASE", "__lr_test_id__"),
//	    shape("benchmark", "BENCHMARK", "__lr_bench_id__"),
//	]
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"go.chromium.org/infra/build/labrat/artifact"
	"go.chromium.org/infra/build/labrat/matcher"
	"go.chromium.org/infra/build/labrat/o11y/clog"
	"go.chromium.org/infra/build/labrat/registry"
)

// DefaultFile is the default config filename, relative to the root.
const DefaultFile = ".labrat.star"

// Config is a discovery config.
type Config struct {
	// Framework is the framework header name.
	Framework string
	// SelfTest scans only the framework file, without the include gate.
	SelfTest bool

	// Output is the artifact filename.
	Output string
	// Format is the artifact format.
	Format artifact.Format
	// Manifest is an additional json manifest filename, if not empty.
	Manifest string
	Hooks    artifact.Hooks

	// Exclude are glob patterns of files/dirs not to scan.
	Exclude []string
	// Cache is the scan cache filename. Empty disables the cache.
	Cache string

	Shapes []matcher.Shape
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		Framework: matcher.DefaultFramework,
		Output:    "labrat_data.c",
		Format:    artifact.XMacro,
		Hooks:     artifact.DefaultHooks(),
		Cache:     ".labrat_cache",
		Shapes:    matcher.DefaultShapes(),
	}
}

// Matcher returns the matcher config.
func (c *Config) Matcher() matcher.Config {
	return matcher.Config{
		Framework: c.Framework,
		SelfTest:  c.SelfTest,
		Shapes:    c.Shapes,
	}
}

func shapeBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var kind, macro, placeholder string
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "kind", &kind, "macro", &macro, "placeholder?", &placeholder)
	if err != nil {
		return nil, err
	}
	switch kind {
	case registry.Test.String(), registry.Benchmark.String():
	default:
		return nil, fmt.Errorf("%s: unknown kind %q", b.Name(), kind)
	}
	return starlarkstruct.FromStringDict(starlark.String("shape"), starlark.StringDict{
		"kind":        starlark.String(kind),
		"macro":       starlark.String(macro),
		"placeholder": starlark.String(placeholder),
	}), nil
}

// Load executes the starlark config src (read from fname) and
// overrides c with the globals it defines.
func (c *Config) Load(ctx context.Context, fname string, src []byte) error {
	thread := &starlark.Thread{
		Name: "config",
		Print: func(thread *starlark.Thread, msg string) {
			clog.Infof(ctx, "%s: print: %s", fname, msg)
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, errors.New("load is not allowed in config")
		},
	}
	predeclared := starlark.StringDict{
		"shape": starlark.NewBuiltin("shape", shapeBuiltin),
	}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, fname, src, predeclared)
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			clog.Warningf(ctx, "%s: stacktrace:\n%s", fname, eerr.Backtrace())
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return fmt.Errorf("failed to exec %s: %w", fname, err)
	}
	if clog.V(1) {
		clog.Infof(ctx, "config %s: %s", fname, globals)
	}

	for _, s := range []struct {
		name string
		v    *string
	}{
		{"framework", &c.Framework},
		{"output", &c.Output},
		{"manifest", &c.Manifest},
		{"cache", &c.Cache},
		{"test_hook", &c.Hooks.Test},
		{"bench_hook", &c.Hooks.Benchmark},
	} {
		err := getString(globals, s.name, s.v)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
	}
	var format string
	err = getString(globals, "format", &format)
	if err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	if format != "" {
		c.Format, err = artifact.ParseFormat(format)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
	}
	if v, ok := globals["self_test"]; ok {
		b, ok := v.(starlark.Bool)
		if !ok {
			return fmt.Errorf("%s: self_test is %s, want bool", fname, v.Type())
		}
		c.SelfTest = bool(b)
	}
	if v, ok := globals["exclude"]; ok {
		c.Exclude, err = stringList(v)
		if err != nil {
			return fmt.Errorf("%s: exclude: %w", fname, err)
		}
	}
	if v, ok := globals["shapes"]; ok {
		c.Shapes, err = shapeList(v)
		if err != nil {
			return fmt.Errorf("%s: shapes: %w", fname, err)
		}
	}
	return nil
}

func getString(globals starlark.StringDict, name string, s *string) error {
	v, ok := globals[name]
	if !ok {
		return nil
	}
	str, ok := starlark.AsString(v)
	if !ok {
		return fmt.Errorf("%s is %s, want string", name, v.Type())
	}
	*s = str
	return nil
}

func stringList(v starlark.Value) ([]string, error) {
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, fmt.Errorf("%s is not iterable", v.Type())
	}
	defer iter.Done()
	var list []string
	var x starlark.Value
	for iter.Next(&x) {
		s, ok := starlark.AsString(x)
		if !ok {
			return nil, fmt.Errorf("element %s is %s, want string", x, x.Type())
		}
		list = append(list, s)
	}
	return list, nil
}

func shapeList(v starlark.Value) ([]matcher.Shape, error) {
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, fmt.Errorf("%s is not iterable", v.Type())
	}
	defer iter.Done()
	var shapes []matcher.Shape
	var x starlark.Value
	for iter.Next(&x) {
		st, ok := x.(*starlarkstruct.Struct)
		if !ok || st.Constructor() != starlark.String("shape") {
			return nil, fmt.Errorf("element %s is %s, want shape(...)", x, x.Type())
		}
		var kind, macro, placeholder string
		for _, a := range []struct {
			name string
			v    *string
		}{
			{"kind", &kind},
			{"macro", &macro},
			{"placeholder", &placeholder},
		} {
			av, err := st.Attr(a.name)
			if err != nil {
				return nil, err
			}
			*a.v, _ = starlark.AsString(av)
		}
		s := matcher.Shape{
			Macro:       macro,
			Placeholder: placeholder,
		}
		switch kind {
		case registry.Test.String():
			s.Kind = registry.Test
			s.Arity = 1
		case registry.Benchmark.String():
			s.Kind = registry.Benchmark
			s.Arity = 2
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}
