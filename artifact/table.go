// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package artifact

import (
	"bufio"
	"io"
	"text/template"
)

// defaultParam is the parameter name used for benchmarks without one.
const defaultParam = "iterations"

var tableTmpl = template.Must(template.New("table").Funcs(template.FuncMap{
	"param": func(p string) string {
		if p == "" {
			return defaultParam
		}
		return p
	},
}).Parse(`// Code generated by labrat table. DO NOT EDIT.
#include <stddef.h>
#include <stdint.h>
{{range .Tests}}
void {{.Name}}(void);{{if .File}} // {{.File}}:{{.Line}}{{end}}
{{- end}}
{{range .Benchmarks}}
void {{.Name}}(int64_t {{param .Param}});{{if .File}} // {{.File}}:{{.Line}}{{end}}
{{- end}}

void (*const lr_tests[])(void) = {
{{- range .Tests}}
    {{.Name}},
{{- end}}
    NULL,
};
const char *const lr_test_names[] = {
{{- range .Tests}}
    "{{.Name}}",
{{- end}}
    NULL,
};
const size_t lr_test_count = {{len .Tests}};

void (*const lr_benchmarks[])(int64_t) = {
{{- range .Benchmarks}}
    {{.Name}},
{{- end}}
    NULL,
};
const char *const lr_benchmark_names[] = {
{{- range .Benchmarks}}
    "{{.Name}}",
{{- end}}
    NULL,
};
const size_t lr_benchmark_count = {{len .Benchmarks}};
`))

// WriteTable writes a C source defining dispatch tables of the manifest's
// entry points: forward declarations, NULL terminated function and name
// arrays and their counts.
func WriteTable(w io.Writer, m *Manifest) error {
	bw := bufio.NewWriter(w)
	err := tableTmpl.Execute(bw, m)
	if err != nil {
		return err
	}
	return bw.Flush()
}
