package tsgen

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/thellimist/openapi-client-generator/internal/generator"
)

//go:embed templates
var templateFS embed.FS

const fileHeader = `/* generated by openapi-client-generator -- do not edit */
/* istanbul ignore file */
/* tslint:disable */
/* eslint-disable */
`

var funcs = template.FuncMap{
	"quote":     quote,
	"doc":       docBlock,
	"methodDoc": methodDoc,
	"signature": signature,
	"json":      indentJSON,
}

var templates = template.Must(template.New("tsgen").Funcs(funcs).ParseFS(templateFS,
	"templates/*.tmpl", "templates/core/*.tmpl"))

// staticCore lists runtime files copied verbatim into core/.
var staticCore = []string{"ApiError.ts", "ApiRequestOptions.ts", "ApiResult.ts", "CancelablePromise.ts"}

type serviceData struct {
	Service    *Service
	UseOptions bool
}

type indexData struct {
	generator.Options
	Client *Client
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	buf.WriteString("\n")
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func staticFile(path string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return append([]byte(fileHeader+"\n"), data...), nil
}

// reindent replaces the leading tabs of every line with unit.
func reindent(src []byte, unit string) []byte {
	if unit == "\t" {
		return src
	}
	lines := bytes.Split(src, []byte("\n"))
	for i, line := range lines {
		n := 0
		for n < len(line) && line[n] == '\t' {
			n++
		}
		if n > 0 {
			lines[i] = append([]byte(strings.Repeat(unit, n)), line[n:]...)
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

func docBlock(indent, description string, deprecated bool) string {
	var b strings.Builder
	writeDoc(&b, indent, description, deprecated)
	return b.String()
}

func methodDoc(op *Operation) string {
	const indent = "\t"
	var lines []string
	if op.Deprecated {
		lines = append(lines, "@deprecated")
	}
	for _, text := range []string{op.Summary, op.Description} {
		if text = strings.TrimSpace(text); text != "" {
			lines = append(lines, strings.Split(text, "\n")...)
		}
	}
	for _, p := range op.Parameters {
		if d := strings.TrimSpace(p.Description); d != "" {
			lines = append(lines, "@param "+p.Name+" "+firstLine(d))
		}
	}
	lines = append(lines, "@returns "+firstLine(op.Result), "@throws ApiError")

	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, l := range lines {
		b.WriteString(strings.TrimRight(indent+" * "+escapeComment(l), " ") + "\n")
	}
	b.WriteString(indent + " */\n")
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// orderedParameters puts required parameters first so positional
// signatures stay valid.
func orderedParameters(op *Operation) []*Parameter {
	params := append([]*Parameter(nil), op.Parameters...)
	sort.SliceStable(params, func(i, j int) bool {
		return params[i].Required && !params[j].Required
	})
	return params
}

// signature renders a method's parameter list without the enclosing parens.
func signature(op *Operation, useOptions bool) string {
	params := orderedParameters(op)
	if len(params) == 0 {
		return ""
	}

	var b strings.Builder
	if useOptions {
		b.WriteString("{\n")
		for _, p := range params {
			b.WriteString("\t\t" + p.Name)
			if p.Default != "" {
				b.WriteString(" = " + p.Default)
			}
			b.WriteString(",\n")
		}
		b.WriteString("\t}: {\n")
		for _, p := range params {
			writeDoc(&b, "\t\t", p.Description, false)
			b.WriteString("\t\t" + p.Name)
			if !p.Required {
				b.WriteString("?")
			}
			b.WriteString(": " + p.Type + ",\n")
		}
		b.WriteString("\t}")
		return b.String()
	}

	b.WriteString("\n")
	for _, p := range params {
		b.WriteString("\t\t" + p.Name)
		switch {
		case p.Default != "":
			b.WriteString(": " + p.Type + " = " + p.Default)
		case !p.Required:
			b.WriteString("?: " + p.Type)
		default:
			b.WriteString(": " + p.Type)
		}
		b.WriteString(",\n")
	}
	b.WriteString("\t")
	return b.String()
}

func indentJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "\t"); err != nil {
		return "", err
	}
	return buf.String(), nil
}
