package core

// Variable is a named storage cell.
type Variable struct {
	Name  string
	Value Word
}

// Variables is an append-only table searched front to back. Entries are
// created on first assignment and never removed.
type Variables struct {
	entries []Variable
}

// Lookup returns the value bound to name.
func (v *Variables) Lookup(name string) (Word, bool) {
	for _, e := range v.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// Set updates the first entry called name, or appends one.
func (v *Variables) Set(name string, value Word) {
	for i := range v.entries {
		if v.entries[i].Name == name {
			v.entries[i].Value = value
			return
		}
	}
	v.entries = append(v.entries, Variable{Name: name, Value: value})
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	return len(v.entries)
}

// Each calls fn for every variable in creation order.
func (v *Variables) Each(fn func(Variable)) {
	for _, e := range v.entries {
		fn(e)
	}
}
