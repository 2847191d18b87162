package orgchart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/orgflow/types"
)

// Format names a document encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts md/markdown, json and yaml/yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", types.Errorf(types.ErrInvalidInput, "unsupported org chart format %q", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Encode writes c to w in format f.
func Encode(w io.Writer, c *Chart, f Format) error {
	switch f {
	case FormatMarkdown:
		return EncodeMarkdown(w, c)
	case FormatJSON:
		return EncodeJSON(w, c)
	case FormatYAML:
		return EncodeYAML(w, c)
	}
	return types.Errorf(types.ErrInvalidInput, "unsupported org chart format %q", f)
}

// Decode reads a chart in format f from r.
func Decode(r io.Reader, f Format, opts ...Option) (*Chart, error) {
	switch f {
	case FormatMarkdown:
		return DecodeMarkdown(r, opts...)
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	}
	return nil, types.Errorf(types.ErrInvalidInput, "unsupported org chart format %q", f)
}

// EncodeJSON writes {"entries": [...]} with two-space indentation.
func EncodeJSON(w io.Writer, c *Chart) error {
	if c == nil {
		c = &Chart{}
	}
	out := struct {
		Entries []Entry `json:"entries"`
	}{Entries: c.Entries}
	if out.Entries == nil {
		out.Entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// DecodeJSON accepts {"entries": [...]} or a bare array of entries.
func DecodeJSON(r io.Reader) (*Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	data = bytes.TrimSpace(data)

	chart := &Chart{}
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &chart.Entries)
	} else {
		err = json.Unmarshal(data, chart)
	}
	if err != nil {
		return nil, types.NewError(types.ErrInvalidDocument, "invalid org chart JSON").WithCause(err)
	}
	return chart, nil
}

// EncodeYAML writes the chart as a YAML mapping with an entries list.
func EncodeYAML(w io.Writer, c *Chart) error {
	if c == nil {
		c = &Chart{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeYAML accepts an entries mapping or a bare sequence.
func DecodeYAML(r io.Reader) (*Chart, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Chart{}, nil
		}
		return nil, types.NewError(types.ErrInvalidDocument, "invalid org chart YAML").WithCause(err)
	}

	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	chart := &Chart{}
	var err error
	if node.Kind == yaml.SequenceNode {
		err = node.Decode(&chart.Entries)
	} else {
		err = node.Decode(chart)
	}
	if err != nil {
		return nil, types.NewError(types.ErrInvalidDocument, "invalid org chart YAML").WithCause(err)
	}
	return chart, nil
}

// ReadFile loads a chart, choosing the codec from the extension. Unknown
// extensions are read as markdown.
func ReadFile(path string, opts ...Option) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open org chart: %w", err)
	}
	defer f.Close()

	format, err := FormatFromPath(path)
	if err != nil {
		format = FormatMarkdown
	}
	chart, err := Decode(f, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("load org chart %s: %w", path, err)
	}
	return chart, nil
}

// WriteFile saves a chart. An empty format is taken from the extension.
func WriteFile(path string, c *Chart, format Format) error {
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		format = f
	}

	var buf bytes.Buffer
	if err := Encode(&buf, c, format); err != nil {
		return fmt.Errorf("encode org chart: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write org chart %s: %w", path, err)
	}
	return nil
}
