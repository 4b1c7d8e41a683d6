package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// Printer renders command results. Construct one per invocation; the format
// is resolved (never Auto) and the query is fixed for the printer's lifetime.
type Printer struct {
	format Format
	query  string
	out    io.Writer
	styles styles
}

// NewPrinter builds a printer for out. An Auto format resolves against out's
// TTY-ness when out is a file, otherwise to JSON (pipes, buffers).
func NewPrinter(format Format, query string, out io.Writer) *Printer {
	file, _ := out.(*os.File)
	resolved := format.resolve(file)
	return &Printer{
		format: resolved,
		query:  query,
		out:    out,
		styles: newStyles(resolved == FormatTable && colorsEnabled(file)),
	}
}

// Stdout builds the conventional printer for the process stdout.
func Stdout(format Format, query string) *Printer {
	return NewPrinter(format, query, os.Stdout)
}

// Format returns the resolved format. Never FormatAuto.
func (p *Printer) Format() Format { return p.format }

// Print projects v through the query expression (when one is set) and renders
// it in the printer's format.
func (p *Printer) Print(v any) error {
	return p.print(v, false)
}

// PrintRedacted renders like Print but masks secret-bearing fields in table
// output. JSON and YAML stay verbatim: machine output under an explicit user
// action shows what is actually configured.
func (p *Printer) PrintRedacted(v any) error {
	return p.print(v, true)
}

func (p *Printer) print(v any, redactTable bool) error {
	doc, err := normalize(v)
	if err != nil {
		return err
	}
	if p.query != "" {
		doc, err = p.project(doc)
		if err != nil {
			return err
		}
	}
	switch p.format {
	case FormatJSON:
		return p.renderJSON(doc.data)
	case FormatYAML:
		return p.renderYAML(doc.data)
	default:
		if redactTable {
			doc.data = Redact(doc.data)
		}
		return p.renderTable(doc)
	}
}

// document pairs the native value with its canonical JSON encoding. The raw
// bytes carry object key order, which maps lose; the table renderer reads
// column order from them.
type document struct {
	data any
	raw  []byte
}

// normalize converts any input (raw JSON, structs, native maps) into a
// document. A nil value becomes JSON null.
func normalize(v any) (document, error) {
	switch t := v.(type) {
	case json.RawMessage:
		return fromRaw([]byte(t))
	case []byte:
		return fromRaw(t)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return document{}, fmt.Errorf("value is not renderable: %w", err)
		}
		return fromRaw(raw)
	}
}

func fromRaw(raw []byte) (document, error) {
	if len(raw) == 0 {
		raw = []byte("null")
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return document{}, fmt.Errorf("response is not valid JSON: %w", err)
	}
	return document{data: data, raw: raw}, nil
}

// project applies the JMESPath expression. The projected value is re-encoded,
// so downstream table rendering sees sorted keys; the expression author chose
// the shape, the pipeline just keeps it deterministic.
func (p *Printer) project(doc document) (document, error) {
	expr, err := jmespath.Compile(p.query)
	if err != nil {
		return document{}, errdefs.Query(p.query, err)
	}
	result, err := expr.Search(doc.data)
	if err != nil {
		return document{}, errdefs.Query(p.query, err)
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return document{}, errdefs.Query(p.query, err)
	}
	return fromRaw(raw)
}

func (p *Printer) renderJSON(data any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

func (p *Printer) renderYAML(data any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}
