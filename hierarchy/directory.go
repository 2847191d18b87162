package hierarchy

// unknownValue fills title/project context for people the role stage never saw.
const unknownValue = "Unknown"

// Directory is the people lookup service. It is built once from the role stage's
// output and then only read, so it is safe to share between workers.
type Directory struct {
	roles map[string]Role
	order []string
}

// NewDirectory indexes roles by name. A later role for the same name wins.
func NewDirectory(roles []Role) *Directory {
	d := &Directory{roles: make(map[string]Role, len(roles))}
	for _, r := range roles {
		if _, seen := d.roles[r.Name]; !seen {
			d.order = append(d.order, r.Name)
		}
		d.roles[r.Name] = r
	}
	return d
}

// Lookup returns the role recorded for name.
func (d *Directory) Lookup(name string) (Role, bool) {
	if d == nil {
		return Role{}, false
	}
	r, ok := d.roles[name]
	return r, ok
}

// Has reports whether name has a role.
func (d *Directory) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Title returns name's title or "Unknown".
func (d *Directory) Title(name string) string {
	if r, ok := d.Lookup(name); ok {
		return r.Title
	}
	return unknownValue
}

// Project returns name's project or "Unknown".
func (d *Directory) Project(name string) string {
	if r, ok := d.Lookup(name); ok {
		return r.Project
	}
	return unknownValue
}

// Projects returns the name → project lookup used by the org chart builder.
// Missing people are simply absent.
func (d *Directory) Projects() map[string]string {
	if d == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(d.roles))
	for name, r := range d.roles {
		out[name] = r.Project
	}
	return out
}

// Names returns role names in first-seen order.
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}
