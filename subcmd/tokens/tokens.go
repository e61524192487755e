// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tokens is tokens subcommand for debugging the lexer and matcher.
package tokens

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/labrat/lexer"
	"go.chromium.org/infra/build/labrat/matcher"
	"go.chromium.org/infra/build/labrat/osfs"
)

const usage = `dump tokens of a source file

 $ labrat tokens [-matches] [-self_test] <file>

prints kind, byte offset and text of each token.
With -matches, prints TEST_CASE/BENCHMARK matches instead.
`

// Cmd returns the Command for the `tokens` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "tokens <file>",
		ShortDesc: "dump tokens of a source file",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	matches   bool
	framework string
	selfTest  bool
}

func (c *run) init() {
	c.Flags.BoolVar(&c.matches, "matches", false, "print matches instead of tokens")
	c.Flags.StringVar(&c.framework, "framework", matcher.DefaultFramework, "framework header name")
	c.Flags.BoolVar(&c.selfTest, "self_test", false, "match without the include gate")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, os.Stdout, args)
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

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want one file, got %d args: %w", len(args), flag.ErrHelp)
	}
	buf, err := osfs.New().ReadFile(ctx, args[0])
	if err != nil {
		return err
	}
	tokens := lexer.Scan(buf)
	if !c.matches {
		for _, tok := range tokens {
			fmt.Fprintf(w, "%-14s %6d %q\n", tok.Kind, tok.Pos, tok.Text)
		}
		return nil
	}
	cfg := matcher.DefaultConfig()
	cfg.Framework = c.framework
	cfg.SelfTest = c.selfTest
	m, err := matcher.New(cfg)
	if err != nil {
		return err
	}
	for _, match := range m.Match(tokens) {
		if match.Param != "" {
			fmt.Fprintf(w, "%s %6d %s %s\n", match.Kind, match.Pos, match.Name, match.Param)
			continue
		}
		fmt.Fprintf(w, "%s %6d %s\n", match.Kind, match.Pos, match.Name)
	}
	return nil
}
