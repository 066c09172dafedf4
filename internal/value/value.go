// Package value holds the candidate and selection sequences tracked for every
// enhanced select element. Values are ordered; every operation returns a new
// slice and never mutates its receiver.
package value

import "strings"

// Pair is a single option: the submitted value and the label shown to users.
type Pair struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Values is an ordered sequence of pairs.
type Values []Pair

// Clone produces a shallow copy of the sequence.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	dup := make(Values, len(v))
	copy(dup, v)
	return dup
}

// Index returns the position of the first pair with the given value, or -1.
func (v Values) Index(value string) int {
	for i, p := range v {
		if p.Value == value {
			return i
		}
	}
	return -1
}

// Contains reports whether a pair with the given value exists.
func (v Values) Contains(value string) bool {
	return v.Index(value) >= 0
}

// ContainsFold is Contains with a case-insensitive value comparison.
func (v Values) ContainsFold(value string) bool {
	for _, p := range v {
		if strings.EqualFold(p.Value, value) {
			return true
		}
	}
	return false
}

// Prepend puts p in front unless its value is already present.
func (v Values) Prepend(p Pair) Values {
	if v.Contains(p.Value) {
		return v.Clone()
	}
	out := make(Values, 0, len(v)+1)
	out = append(out, p)
	return append(out, v...)
}

// Without drops every pair carrying the given value.
func (v Values) Without(value string) Values {
	out := make(Values, 0, len(v))
	for _, p := range v {
		if p.Value != value {
			out = append(out, p)
		}
	}
	return out
}

// Exclude drops every pair whose value is present in other.
func (v Values) Exclude(other Values) Values {
	if len(other) == 0 {
		return v.Clone()
	}
	out := make(Values, 0, len(v))
	for _, p := range v {
		if !other.Contains(p.Value) {
			out = append(out, p)
		}
	}
	return out
}

// Concat appends other after v.
func (v Values) Concat(other Values) Values {
	out := make(Values, 0, len(v)+len(other))
	out = append(out, v...)
	return append(out, other...)
}

// Union returns v followed by the pairs of other whose value is not yet
// present. Duplicates inside v itself are collapsed as well.
func (v Values) Union(other Values) Values {
	out := make(Values, 0, len(v)+len(other))
	for _, p := range v.Concat(other) {
		if out.Contains(p.Value) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Limit caps the sequence at n entries. Non-positive n leaves it untouched.
func (v Values) Limit(n int) Values {
	if n <= 0 || len(v) <= n {
		return v.Clone()
	}
	return v[:n].Clone()
}

// Labels returns the labels in order.
func (v Values) Labels() []string {
	labels := make([]string, len(v))
	for i, p := range v {
		labels[i] = p.Label
	}
	return labels
}

// Strings returns the values in order.
func (v Values) Strings() []string {
	out := make([]string, len(v))
	for i, p := range v {
		out[i] = p.Value
	}
	return out
}
