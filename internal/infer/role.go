package infer

import (
	"encoding/json"
	"fmt"
)

// Role is a semantic column category of a pack catalog.
type Role int

const (
	DateModified Role = iota
	Name
	URL
	Author
	Description
	Dependencies

	numRoles
)

// Unassigned marks a role that no column qualified for.
const Unassigned = -1

// Roles lists every role in declaration order.
var Roles = [numRoles]Role{DateModified, Name, URL, Author, Description, Dependencies}

// AssignOrder is the priority in which roles claim columns. URL and date
// columns have the least ambiguous content and go first; author and
// description are the weakest signals and take what remains.
var AssignOrder = [numRoles]Role{URL, DateModified, Name, Dependencies, Description, Author}

var roleKeys = [numRoles]string{
	DateModified: "dateModified",
	Name:         "name",
	URL:          "url",
	Author:       "author",
	Description:  "description",
	Dependencies: "dependencies",
}

// String returns the lowerCamel key used in JSON output.
func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleKeys[r]
}

// ParseRole resolves a role key as produced by String.
func ParseRole(s string) (Role, bool) {
	for i, k := range roleKeys {
		if k == s {
			return Role(i), true
		}
	}
	return 0, false
}

// Mapping binds each role to a column index or Unassigned.
type Mapping [numRoles]int

// NewMapping returns a mapping with every role unassigned.
func NewMapping() Mapping {
	var m Mapping
	for i := range m {
		m[i] = Unassigned
	}
	return m
}

// Column returns the column bound to r, or Unassigned.
func (m Mapping) Column(r Role) int {
	if r < 0 || r >= numRoles {
		return Unassigned
	}
	return m[r]
}

// Assigned reports whether r was bound to a column.
func (m Mapping) Assigned(r Role) bool {
	return m.Column(r) != Unassigned
}

// Cell returns the cell of row bound to r. Missing cells read as "".
func (m Mapping) Cell(row []string, r Role) string {
	col := m.Column(r)
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// MarshalJSON encodes the mapping as an object keyed by role name.
func (m Mapping) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, numRoles)
	for _, r := range Roles {
		out[r.String()] = m[r]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by role name. Missing roles stay
// unassigned.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	var in map[string]int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = NewMapping()
	for k, col := range in {
		r, ok := ParseRole(k)
		if !ok {
			return fmt.Errorf("unknown role %q", k)
		}
		m[r] = col
	}
	return nil
}
