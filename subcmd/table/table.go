// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package table provides table subcommand.
package table

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/labrat/artifact"
	"go.chromium.org/infra/build/labrat/osfs"
)

const usage = `generate C dispatch table from a manifest

 $ labrat table -manifest labrat.json [-o labrat_table.c]

reads a json manifest written by "labrat gen -manifest" and
writes C arrays of test and benchmark function pointers and names.
`

// Cmd returns the Command for the `table` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "table -manifest <file> [-o <output>]",
		ShortDesc: "generate C dispatch table from a manifest",
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

	manifest string
	output   string
}

func (c *run) init() {
	c.Flags.StringVar(&c.manifest, "manifest", "labrat.json", "json manifest filename")
	c.Flags.StringVar(&c.output, "o", "", "output filename. stdout if empty")
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
	if c.manifest == "" {
		return fmt.Errorf("no manifest: %w", flag.ErrHelp)
	}
	fsys := osfs.New()
	buf, err := fsys.ReadFile(ctx, c.manifest)
	if err != nil {
		return err
	}
	m, err := artifact.ReadManifest(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%s: %w", c.manifest, err)
	}
	var out bytes.Buffer
	err = artifact.WriteTable(&out, m)
	if err != nil {
		return err
	}
	if c.output == "" {
		_, err = os.Stdout.Write(out.Bytes())
		return err
	}
	_, err = fsys.UpdateFile(ctx, c.output, out.Bytes(), 0644)
	return err
}
