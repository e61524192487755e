// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package artifact

import (
	"bufio"
	"fmt"
	"io"

	"go.chromium.org/infra/build/labrat/registry"
)

// WriteXMacro writes reg as hook invocations: tests first, then
// benchmarks, each in discovery order.
func WriteXMacro(w io.Writer, reg *registry.Registry, hooks Hooks) error {
	err := hooks.Validate()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "// Code generated by labrat gen. DO NOT EDIT.\n")
	for _, hook := range []string{hooks.Test, hooks.Benchmark} {
		fmt.Fprintf(bw, "#ifndef %s\n#define %s(id)\n#endif\n", hook, hook)
	}
	for _, r := range reg.Tests() {
		fmt.Fprintf(bw, "%s(%s)\n", hooks.Test, r.Name)
	}
	for _, r := range reg.Benchmarks() {
		fmt.Fprintf(bw, "%s(%s)\n", hooks.Benchmark, r.Name)
	}
	for _, hook := range []string{hooks.Test, hooks.Benchmark} {
		fmt.Fprintf(bw, "#undef %s\n", hook)
	}
	return bw.Flush()
}
