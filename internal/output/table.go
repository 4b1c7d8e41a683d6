package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// maxCellWidth bounds a rendered cell; longer values get an ellipsis.
const maxCellWidth = 64

// renderTable renders data as a table when its shape permits: an array of
// objects becomes a columnar table, a single object becomes a two-column
// field/value listing, and anything else (scalars, mixed arrays) falls back
// to JSON so nothing is ever unprintable.
func (p *Printer) renderTable(doc document) error {
	switch data := doc.data.(type) {
	case []any:
		if rows, ok := asObjectRows(data); ok {
			return p.renderArrayTable(doc.raw, rows)
		}
	case map[string]any:
		return p.renderObjectTable(doc.raw, data)
	}
	return p.renderJSON(doc.data)
}

func asObjectRows(data []any) ([]map[string]any, bool) {
	if len(data) == 0 {
		return nil, false
	}
	rows := make([]map[string]any, len(data))
	for i, item := range data {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		rows[i] = obj
	}
	return rows, true
}

func (p *Printer) renderArrayTable(raw []byte, rows []map[string]any) error {
	headers := arrayKeyUnion(raw, rows)

	t := p.newTable()
	t.Headers(p.styleHeaders(headers)...)
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = p.styleCell(h, row[h])
		}
		t.Row(cells...)
	}
	_, err := fmt.Fprintln(p.out, t.Render())
	return err
}

func (p *Printer) renderObjectTable(raw []byte, obj map[string]any) error {
	keys := objectKeys(raw, obj)

	t := p.newTable()
	t.Headers(p.styleHeaders([]string{"FIELD", "VALUE"})...)
	for _, k := range keys {
		t.Row(p.styles.cell.Render(k), p.styleCell(k, obj[k]))
	}
	_, err := fmt.Fprintln(p.out, t.Render())
	return err
}

func (p *Printer) newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func (p *Printer) styleHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = p.styles.header.Render(h)
	}
	return out
}

// styleCell stringifies, truncates, and color-hints one cell.
func (p *Printer) styleCell(header string, v any) string {
	s := truncateCell(cellString(v))
	if statusColumn(header) {
		return p.styles.statusStyle(s).Render(s)
	}
	return p.styles.cell.Render(s)
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		// Nested objects and arrays render as compact JSON.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

func truncateCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= maxCellWidth {
		return s
	}
	return string(runes[:maxCellWidth-1]) + "…"
}

// objectKeys returns an object's keys in their order of appearance in the raw
// JSON. Maps lose that order, so it is recovered from the byte stream; when
// the raw text cannot be walked (post-query re-encodings are sorted anyway),
// sorted map keys keep the output deterministic.
func objectKeys(raw []byte, obj map[string]any) []string {
	if keys, err := scanObjectKeys(json.NewDecoder(bytes.NewReader(raw)), nil, nil); err == nil && len(keys) == len(obj) {
		return keys
	}
	return sortedKeys(obj)
}

// arrayKeyUnion returns the union of all row keys, ordered by first
// appearance across the array.
func arrayKeyUnion(raw []byte, rows []map[string]any) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if t, err := dec.Token(); err != nil || t != json.Delim('[') {
		return unionFallback(rows)
	}
	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		var err error
		keys, err = scanObjectKeys(dec, keys, seen)
		if err != nil {
			return unionFallback(rows)
		}
	}
	return keys
}

// scanObjectKeys consumes one JSON object from dec, appending unseen keys to
// keys in source order. A nil seen map starts fresh.
func scanObjectKeys(dec *json.Decoder, keys []string, seen map[string]bool) ([]string, error) {
	if seen == nil {
		seen = make(map[string]bool)
	}
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if t != json.Delim('{') {
		return nil, fmt.Errorf("expected object, got %v", t)
	}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := t.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", t)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := t.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			t, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := t.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

func unionFallback(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, row := range rows {
		for _, k := range sortedKeys(row) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
