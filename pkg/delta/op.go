// Package delta implements the pure operational-transformation algebra
// that the document actor and the client sync engine build on: a rich-text
// op sequence type and the compose/transform/invert/diff/transformPosition
// functions defined over it.
package delta

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Attrs is an attribute map carried by insert and retain ops. A nil value
// stored under a key means "remove this key" when the Attrs appears on a
// retain; it is kept distinct from the key being absent entirely.
type Attrs map[string]interface{}

// Clone returns a shallow copy of a, or nil if a is empty.
func (a Attrs) Clone() Attrs {
	if len(a) == 0 {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether a and b describe the same attribute set, treating
// an explicit nil value the same as any other value (both must match, or
// both keys must be absent).
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || bv != v {
			return false
		}
	}
	return true
}

// kind identifies which of the three Op variants a value holds.
type kind int

const (
	kindInsert kind = iota
	kindRetain
	kindDelete
)

// Op is one entry of a Delta: exactly one of insert, retain or delete.
// Construct ops with InsertText, InsertEmbed, Retain or Delete rather than
// the struct literal so the variant stays internally consistent.
type Op struct {
	kind  kind
	text  string      // insert: the payload, when it is a string
	embed interface{} // insert: the payload, when it is not a string
	n     int         // retain/delete: count; insert: unused
	attrs Attrs
}

// InsertText returns an insert op carrying a text payload.
func InsertText(s string, attrs Attrs) Op {
	return Op{kind: kindInsert, text: s, attrs: attrs.Clone()}
}

// InsertEmbed returns an insert op carrying a non-text (embed) payload.
// Its delta-length is always 1.
func InsertEmbed(v interface{}, attrs Attrs) Op {
	return Op{kind: kindInsert, embed: v, attrs: attrs.Clone()}
}

// Retain returns a retain op of the given positive count.
func Retain(n int, attrs Attrs) Op {
	if n <= 0 {
		panic("delta: retain count must be positive")
	}
	return Op{kind: kindRetain, n: n, attrs: attrs.Clone()}
}

// Delete returns a delete op of the given positive count.
func Delete(n int) Op {
	if n <= 0 {
		panic("delta: delete count must be positive")
	}
	return Op{kind: kindDelete, n: n}
}

// IsInsert, IsRetain and IsDelete report an op's variant.
func (o Op) IsInsert() bool { return o.kind == kindInsert }
func (o Op) IsRetain() bool { return o.kind == kindRetain }
func (o Op) IsDelete() bool { return o.kind == kindDelete }

// IsEmbed reports whether an insert op's payload is an embed rather than
// text. Only meaningful when IsInsert is true.
func (o Op) IsEmbed() bool { return o.kind == kindInsert && o.embed != nil }

// Text returns the text payload of an insert op, or "" for an embed or
// non-insert op.
func (o Op) Text() string { return o.text }

// Embed returns the embed payload of an insert op, or nil.
func (o Op) Embed() interface{} { return o.embed }

// Attrs returns the op's attribute map, which may be nil.
func (o Op) Attrs() Attrs { return o.attrs }

// Len returns the op's length in the delta-length sense: character count
// for a text insert, 1 for an embed insert, the count for retain/delete.
func (o Op) Len() int {
	switch o.kind {
	case kindInsert:
		if o.embed != nil {
			return 1
		}
		return utf8.RuneCountInString(o.text)
	default:
		return o.n
	}
}

// jsonOp is the wire shape of an Op.
type jsonOp struct {
	Insert     interface{} `json:"insert,omitempty"`
	Retain     int         `json:"retain,omitempty"`
	Delete     int         `json:"delete,omitempty"`
	Attributes Attrs       `json:"attributes,omitempty"`
}

// MarshalJSON encodes an Op as its wire object.
func (o Op) MarshalJSON() ([]byte, error) {
	j := jsonOp{Attributes: o.attrs}
	switch o.kind {
	case kindInsert:
		if o.embed != nil {
			j.Insert = o.embed
		} else {
			j.Insert = o.text
		}
	case kindRetain:
		j.Retain = o.n
	case kindDelete:
		j.Delete = o.n
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an Op from its wire object.
func (o *Op) UnmarshalJSON(data []byte) error {
	var j jsonOp
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	switch {
	case j.Insert != nil:
		if s, ok := j.Insert.(string); ok {
			*o = Op{kind: kindInsert, text: s, attrs: j.Attributes}
		} else {
			*o = Op{kind: kindInsert, embed: j.Insert, attrs: j.Attributes}
		}
	case j.Retain > 0:
		*o = Op{kind: kindRetain, n: j.Retain, attrs: j.Attributes}
	case j.Delete > 0:
		*o = Op{kind: kindDelete, n: j.Delete}
	default:
		return fmt.Errorf("delta: op has no insert, retain or delete field")
	}
	return nil
}
