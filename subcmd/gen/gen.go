// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gen provides gen subcommand.
package gen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/labrat/artifact"
	"go.chromium.org/infra/build/labrat/config"
	"go.chromium.org/infra/build/labrat/driver"
	"go.chromium.org/infra/build/labrat/o11y/clog"
	"go.chromium.org/infra/build/labrat/osfs"
)

const usage = `discover tests and benchmarks

 $ labrat gen [-C <dir>] [-o labrat_data.c]

Scans C sources under <dir> for TEST_CASE(name) and
BENCHMARK(name, param) declarations in files that include
"labrat.h", and writes the registration artifact.

Settings are read from <dir>/.labrat.star (or -config),
and flags given on the command line override them.
`

// Cmd returns the Command for the `gen` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "gen [-C <dir>] [-o <output>]",
		ShortDesc: "generate the test registration artifact",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir        string
	configFile string
	verbose    bool

	framework string
	selfTest  bool
	output    string
	format    string
	manifest  string
	cache     string
	exclude   listFlag
}

// listFlag is a flag that may be given multiple times.
type listFlag []string

func (f *listFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *listFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "root directory to scan")
	c.Flags.BoolVar(&c.verbose, "v", false, "print each file being scanned")
	c.Flags.StringVar(&c.configFile, "config", "", "config file. default is "+config.DefaultFile+" in the root directory, if exists")
	c.Flags.StringVar(&c.framework, "framework", "", "framework header name")
	c.Flags.BoolVar(&c.selfTest, "self_test", false, "scan only the framework's own file for its self tests")
	c.Flags.StringVar(&c.output, "o", "", "artifact filename, relative to the root directory")
	c.Flags.StringVar(&c.format, "format", "", "artifact format: xmacro or json")
	c.Flags.StringVar(&c.manifest, "manifest", "", "additional json manifest filename, relative to the root directory")
	c.Flags.StringVar(&c.cache, "cache", "", "scan cache filename, relative to the root directory. \"none\" disables the cache")
	c.Flags.Var(&c.exclude, "exclude", "glob pattern of files or dirs not to scan, relative to the root directory. can be repeated")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s: position arguments not expected\n", a.GetName())
		return 1
	}
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context) error {
	started := time.Now()
	runID := uuid.New().String()
	logger := clog.New(runID)
	defer logger.Close()
	ctx = clog.NewContext(ctx, logger)

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "run %s in %s: framework=%q self_test=%t output=%q format=%s", runID, c.dir, cfg.Framework, cfg.SelfTest, cfg.Output, cfg.Format)

	fsys := osfs.New()
	d, err := driver.New(fsys, cfg)
	if err != nil {
		return err
	}
	if c.verbose {
		d.Progress = func(rel string) {
			log.Infof("scanning %s", rel)
		}
	}
	result, err := d.Run(ctx, c.dir)
	if err != nil {
		return err
	}
	for _, ferr := range result.Failed {
		log.Warnf("skipped: %v", ferr)
	}
	for _, dup := range result.Registry.Duplicates() {
		log.Warnf("duplicate %s %q at %s (first at %s)", dup.Dup.Kind, dup.Dup.Name, dup.Dup.Location(), dup.First.Location())
	}
	stats := fsys.Stats()
	clog.Infof(ctx, "fs stats: ops=%d(err=%d) read=%d/%dB(err=%d) write=%d/%dB(err=%d)", stats.Ops, stats.OpsErrs, stats.ROps, stats.RBytes, stats.RErrs, stats.WOps, stats.WBytes, stats.WErrs)

	if result.Registry.Len() == 0 {
		log.Warnf("no TEST_CASE or BENCHMARK found in files including %q under %s", cfg.Framework, c.dir)
	}
	state := "up to date"
	if result.Written {
		state = "written"
	}
	log.Infof("%d tests, %d benchmarks in %d files (%d cached, %d skipped): %s %s in %s",
		len(result.Registry.Tests()),
		len(result.Registry.Benchmarks()),
		result.Files,
		result.CacheHits,
		len(result.Failed),
		cfg.Output,
		state,
		time.Since(started).Round(time.Millisecond))
	return nil
}

// loadConfig builds the config from defaults, the config file, then
// flags set on the command line.
func (c *run) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := config.Default()
	fname := c.configFile
	if fname == "" {
		fname = filepath.Join(c.dir, config.DefaultFile)
	}
	buf, err := os.ReadFile(fname)
	switch {
	case err == nil:
		err = cfg.Load(ctx, fname, buf)
		if err != nil {
			return nil, err
		}
		clog.Infof(ctx, "loaded config %s", fname)
	case errors.Is(err, fs.ErrNotExist) && c.configFile == "":
		clog.Infof(ctx, "no config %s. use default", fname)
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var ferr error
	c.Flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "framework":
			cfg.Framework = c.framework
		case "self_test":
			cfg.SelfTest = c.selfTest
		case "o":
			cfg.Output = c.output
		case "format":
			format, err := artifact.ParseFormat(c.format)
			if err != nil {
				ferr = fmt.Errorf("bad -format: %w: %w", err, flag.ErrHelp)
				return
			}
			cfg.Format = format
		case "manifest":
			cfg.Manifest = c.manifest
		case "cache":
			cfg.Cache = c.cache
			if c.cache == "none" {
				cfg.Cache = ""
			}
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, c.exclude...)
		}
	})
	if ferr != nil {
		return nil, ferr
	}
	return cfg, nil
}
