package orgchart

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// 📝 Markdown 编解码
// =============================================================================

const (
	markdownTitle = "# Org Structure"
	sectionRule   = "---"
	nullToken     = "null"

	labelManager       = "Manager"
	labelDirectReports = "Direct Reports"
	labelTeammates     = "Teammates"
	labelWorkingOn     = "Working on"
)

var (
	headingPattern = regexp.MustCompile(`^##\s+(.+)$`)
	bulletPattern  = regexp.MustCompile(`^-\s+\*\*([^:]+):\*\*\s*(.*)$`)
)

// Option 配置解码行为
type Option func(*decodeOptions)

type decodeOptions struct {
	logger *zap.Logger
}

// WithLogger 记录被跳过的章节
func WithLogger(logger *zap.Logger) Option {
	return func(o *decodeOptions) {
		if logger != nil {
			o.logger = logger.With(zap.String("component", "orgchart"))
		}
	}
}

func newDecodeOptions(opts []Option) decodeOptions {
	o := decodeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MarshalMarkdown renders the chart in its human-readable form.
func MarshalMarkdown(c *Chart) string {
	lines := []string{markdownTitle, ""}
	if c != nil {
		for _, e := range c.Entries {
			lines = append(lines,
				"## "+e.Name,
				bullet(labelManager, orNull(e.Manager)),
				bullet(labelDirectReports, joinList(e.DirectReports)),
				bullet(labelTeammates, joinList(e.Teammates)),
				bullet(labelWorkingOn, e.WorkingOn),
				"",
				sectionRule,
				"",
			)
		}
	}
	return strings.Join(lines, "\n")
}

// EncodeMarkdown writes MarshalMarkdown(c) to w.
func EncodeMarkdown(w io.Writer, c *Chart) error {
	_, err := io.WriteString(w, MarshalMarkdown(c))
	return err
}

// UnmarshalMarkdown parses the human-readable form. A section without a name
// heading is skipped; a missing bullet leaves its field absent.
func UnmarshalMarkdown(content string, opts ...Option) *Chart {
	o := newDecodeOptions(opts)
	chart := &Chart{}
	for i, section := range splitSections(stripTitle(content)) {
		e, ok := parseSection(section)
		if !ok {
			if strings.TrimSpace(section) != "" {
				o.logger.Debug("skipping section without name heading", zap.Int("section", i))
			}
			continue
		}
		chart.Entries = append(chart.Entries, e)
	}
	return chart
}

// DecodeMarkdown reads all of r and parses it.
func DecodeMarkdown(r io.Reader, opts ...Option) (*Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	return UnmarshalMarkdown(string(data), opts...), nil
}

// stripTitle drops a leading "# ..." line.
func stripTitle(content string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	first, rest, _ := strings.Cut(content, "\n")
	if strings.HasPrefix(first, "# ") {
		return rest
	}
	return content
}

// splitSections splits on lines that are exactly the horizontal rule.
func splitSections(content string) []string {
	var (
		sections []string
		current  []string
	)
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == sectionRule {
			sections = append(sections, strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}

func parseSection(section string) (Entry, bool) {
	lines := strings.Split(strings.TrimSpace(section), "\n")
	m := headingPattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return Entry{}, false
	}

	e := Entry{Name: strings.TrimSpace(m[1])}
	for _, line := range lines[1:] {
		b := bulletPattern.FindStringSubmatch(strings.TrimSpace(line))
		if b == nil {
			continue
		}
		value := strings.TrimSpace(b[2])
		switch strings.TrimSpace(b[1]) {
		case labelManager:
			if value != nullToken {
				e.Manager = value
			}
		case labelDirectReports:
			e.DirectReports = splitList(value)
		case labelTeammates:
			e.Teammates = splitList(value)
		case labelWorkingOn:
			e.WorkingOn = value
		}
	}
	return e, true
}

func bullet(label, value string) string {
	return "- **" + label + ":** " + value
}

func orNull(s string) string {
	if s == "" {
		return nullToken
	}
	return s
}

func joinList(items []string) string {
	if len(items) == 0 {
		return nullToken
	}
	return strings.Join(items, ", ")
}

func splitList(value string) []string {
	if value == "" || value == nullToken {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
