package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
)

// row keeps the table's column order when marshalled.
type row struct {
	columns []string
	values  []any
}

func (r row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r row) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, c := range r.columns {
		var v yaml.Node
		if err := v.Encode(r.values[i]); err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c}, &v)
	}
	return n, nil
}

func rows(t *pipeline.Table) []row {
	out := make([]row, 0, len(t.Rows))
	for _, values := range t.Rows {
		out = append(out, row{columns: t.Columns, values: values})
	}
	return out
}

// JSONWriter writes the table as an array of objects keyed by column name,
// keys in column order.
type JSONWriter struct {
	Indent string
}

func (jw JSONWriter) Write(w io.Writer, t *pipeline.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jw.Indent)
	if err := enc.Encode(rows(t)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAMLWriter writes the table as a sequence of mappings keyed by column name.
type YAMLWriter struct{}

func (YAMLWriter) Write(w io.Writer, t *pipeline.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows(t)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
