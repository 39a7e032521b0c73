package tgl

import "math"

// Decl is a named declaration installed by a Layer.
type Decl interface {
	DeclName() string
}

// Domain maps discrete numbers and inclusive ranges to labels.
type Domain struct {
	Name     string
	Branches []DomainBranch
}

// DomainBranch is one label of a Domain.
type DomainBranch struct {
	Values []float64
	Ranges [][2]float64
	Label  string
}

// Match is an ordered list of branches tried against call arguments.
type Match struct {
	Name     string
	Branches []MatchBranch
}

// MatchBranch holds positional requirements and the node rendered on success.
// An empty requirement list always matches. Decoding drops branches that
// carry no "req" list at all.
type MatchBranch struct {
	Reqs []Requirement
	To   Node
}

// Requirement constrains one positional argument. Index first selects a
// field of the argument; the remaining checks all have to hold.
type Requirement struct {
	Index  string
	Domain string
	Expr   Expr
	Eq     any
	HasEq  bool
}

func (d *Domain) DeclName() string { return d.Name }
func (m *Match) DeclName() string  { return m.Name }

// Label returns the label of the first branch containing v.
func (d *Domain) Label(v any) (string, bool) {
	n := ToNumber(v)
	if math.IsNaN(n) {
		return "", false
	}
	for _, br := range d.Branches {
		for _, x := range br.Values {
			if n == x {
				return br.Label, true
			}
		}
		for _, r := range br.Ranges {
			if n >= r[0] && n <= r[1] {
				return br.Label, true
			}
		}
	}
	return "", false
}

func isMatch(d any) bool {
	_, ok := d.(*Match)
	return ok
}

func isDomain(d any) bool {
	_, ok := d.(*Domain)
	return ok
}
