package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Assertion is one person's inferred manager. An empty Manager means the person
// is believed to have no manager.
type Assertion struct {
	Name    string
	Manager string
	Reason  string
}

type assertionJSON struct {
	Name    string  `json:"name"`
	Manager *string `json:"manager"`
	Reason  string  `json:"reason"`
}

// MarshalJSON encodes an absent manager as null.
func (a Assertion) MarshalJSON() ([]byte, error) {
	out := assertionJSON{Name: a.Name, Reason: a.Reason}
	if a.Manager != "" {
		m := a.Manager
		out.Manager = &m
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null or a string for manager.
func (a *Assertion) UnmarshalJSON(data []byte) error {
	var in assertionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	a.Name = in.Name
	a.Reason = in.Reason
	a.Manager = ""
	if in.Manager != nil {
		a.Manager = *in.Manager
	}
	return nil
}

// Role is a person's inferred title and current project.
type Role struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Project string `json:"project"`
	Reason  string `json:"reason"`
}

// LoadAssertions reads a JSON array of manager assertions.
func LoadAssertions(path string) ([]Assertion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assertions: %w", err)
	}
	var out []Assertion
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse assertions %s: %w", path, err)
	}
	return out, nil
}

// SaveAssertions writes assertions as an indented JSON array.
func SaveAssertions(path string, assertions []Assertion) error {
	data, err := json.MarshalIndent(assertions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode assertions: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadRoles reads a JSON array of roles.
func LoadRoles(path string) ([]Role, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles: %w", err)
	}
	var out []Role
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse roles %s: %w", path, err)
	}
	return out, nil
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest,
// so "jane DOE" and "Jane Doe" name the same person.
func TitleCase(name string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}

// NormalizeAssertions title-cases every name and manager.
func NormalizeAssertions(assertions []Assertion) []Assertion {
	out := make([]Assertion, len(assertions))
	for i, a := range assertions {
		out[i] = Assertion{Name: TitleCase(a.Name), Manager: TitleCase(a.Manager), Reason: a.Reason}
	}
	return out
}

// NormalizeRoles title-cases every role name.
func NormalizeRoles(roles []Role) []Role {
	out := make([]Role, len(roles))
	for i, r := range roles {
		r.Name = TitleCase(r.Name)
		out[i] = r
	}
	return out
}
