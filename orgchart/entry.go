package orgchart

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is one person's row in the org chart. An empty Manager means the person
// has no manager; nil DirectReports/Teammates mean none.
type Entry struct {
	Name          string
	Manager       string
	DirectReports []string
	Teammates     []string
	WorkingOn     string
}

// entryDoc is the structured wire shape shared by the JSON and YAML codecs.
type entryDoc struct {
	Name          string    `json:"name" yaml:"name"`
	Manager       *string   `json:"manager" yaml:"manager"`
	DirectReports *[]string `json:"direct_reports" yaml:"direct_reports"`
	Teammates     *[]string `json:"teammates" yaml:"teammates"`
	WorkingOn     string    `json:"working_on" yaml:"working_on"`
}

func (e Entry) doc() entryDoc {
	d := entryDoc{Name: e.Name, WorkingOn: e.WorkingOn}
	if e.Manager != "" {
		m := e.Manager
		d.Manager = &m
	}
	if len(e.DirectReports) > 0 {
		r := append([]string(nil), e.DirectReports...)
		d.DirectReports = &r
	}
	if len(e.Teammates) > 0 {
		t := append([]string(nil), e.Teammates...)
		d.Teammates = &t
	}
	return d
}

func (d entryDoc) entry() Entry {
	e := Entry{Name: d.Name, WorkingOn: d.WorkingOn}
	if d.Manager != nil {
		e.Manager = *d.Manager
	}
	if d.DirectReports != nil && len(*d.DirectReports) > 0 {
		e.DirectReports = *d.DirectReports
	}
	if d.Teammates != nil && len(*d.Teammates) > 0 {
		e.Teammates = *d.Teammates
	}
	return e
}

// MarshalJSON writes absent values as null.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.doc())
}

// UnmarshalJSON treats null and empty lists alike.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var d entryDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*e = d.entry()
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Entry) MarshalYAML() (any, error) {
	return e.doc(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var d entryDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	*e = d.entry()
	return nil
}

// Chart is the org chart document.
type Chart struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Len returns the number of entries.
func (c *Chart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// Lookup returns the entry for name. When a name repeats, the last entry wins.
func (c *Chart) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	for i := len(c.Entries) - 1; i >= 0; i-- {
		if c.Entries[i].Name == name {
			return c.Entries[i], true
		}
	}
	return Entry{}, false
}

// Names returns entry names in document order without duplicates.
func (c *Chart) Names() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Entries))
	names := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	return names
}

// Managers returns the name → manager mapping, "" for none.
func (c *Chart) Managers() map[string]string {
	out := make(map[string]string, c.Len())
	if c == nil {
		return out
	}
	for _, e := range c.Entries {
		out[e.Name] = e.Manager
	}
	return out
}

// Roots returns entries without a manager, in document order.
func (c *Chart) Roots() []Entry {
	if c == nil {
		return nil
	}
	var roots []Entry
	for _, e := range c.Entries {
		if e.Manager == "" {
			roots = append(roots, e)
		}
	}
	return roots
}

// Sort orders entries by name.
func (c *Chart) Sort() {
	sort.SliceStable(c.Entries, func(i, j int) bool {
		return c.Entries[i].Name < c.Entries[j].Name
	})
}
