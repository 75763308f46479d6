package delta

// Delta is an ordered sequence of ops. A "document delta" holds only
// inserts; a "change delta" may mix all three variants.
type Delta struct {
	ops []Op
}

// New builds a Delta from ops, canonicalizing it (see compact).
func New(ops ...Op) Delta {
	d := Delta{ops: append([]Op(nil), ops...)}
	return d.compact()
}

// Ops returns the delta's ops. Callers must not mutate the returned slice.
func (d Delta) Ops() []Op { return d.ops }

// Len returns the number of ops.
func (d Delta) Len() int { return len(d.ops) }

// push appends an op to a delta under construction, merging it into the
// previous op when they are the same variant with equal attributes (the
// canonical-form merge rule).
func (d *Delta) push(o Op) {
	if o.kind != kindDelete && o.Len() == 0 {
		return
	}
	if o.kind == kindDelete && o.n == 0 {
		return
	}
	if n := len(d.ops); n > 0 {
		last := d.ops[n-1]
		if last.kind == kindInsert && o.kind == kindDelete {
			// normalization rule: delete precedes insert at the same position.
			if n >= 2 && d.ops[n-2].kind == kindDelete {
				d.ops[n-2].n += o.n
				return
			}
			d.ops = append(d.ops[:n-1], o, last)
			return
		}
		if last.kind == o.kind {
			switch o.kind {
			case kindInsert:
				if !o.IsEmbed() && !last.IsEmbed() && last.attrs.Equal(o.attrs) {
					d.ops[n-1].text += o.text
					return
				}
			case kindRetain, kindDelete:
				if last.attrs.Equal(o.attrs) {
					d.ops[n-1].n += o.n
					return
				}
			}
		}
	}
	d.ops = append(d.ops, o)
}

// compact returns the canonical form of d: adjacent same-variant ops with
// equal attributes merged, a trailing bare retain elided, delete ops moved
// before insert ops emitted at the same position.
func (d Delta) compact() Delta {
	var out Delta
	for _, o := range d.ops {
		out.push(o)
	}
	if n := len(out.ops); n > 0 {
		last := out.ops[n-1]
		if last.kind == kindRetain && len(last.attrs) == 0 {
			out.ops = out.ops[:n-1]
		}
	}
	return out
}

// IsDocument reports whether d contains only insert ops, i.e. is valid as
// stored document content.
func (d Delta) IsDocument() bool {
	for _, o := range d.ops {
		if !o.IsInsert() {
			return false
		}
	}
	return true
}

// DocText concatenates the text of every insert in a document delta, with
// embeds represented as a single placeholder rune. Used by diff.
func (d Delta) DocText() []rune {
	var out []rune
	for _, o := range d.ops {
		if !o.IsInsert() {
			continue
		}
		if o.IsEmbed() {
			out = append(out, 0)
		} else {
			out = append(out, []rune(o.text)...)
		}
	}
	return out
}

// Length returns the total delta-length of d (sum of op lengths).
func (d Delta) Length() int {
	n := 0
	for _, o := range d.ops {
		n += o.Len()
	}
	return n
}

// BaseLength returns the length of the document d expects to be applied
// to: the sum of retain and delete lengths (inserts consume none of the
// base document).
func (d Delta) BaseLength() int {
	n := 0
	for _, o := range d.ops {
		if !o.IsInsert() {
			n += o.Len()
		}
	}
	return n
}

// Equal reports whether a and b have the same canonical op sequence.
func (a Delta) Equal(b Delta) bool {
	a, b = a.compact(), b.compact()
	if len(a.ops) != len(b.ops) {
		return false
	}
	for i := range a.ops {
		x, y := a.ops[i], b.ops[i]
		if x.kind != y.kind || x.n != y.n || x.text != y.text || x.embed != y.embed || !x.attrs.Equal(y.attrs) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes d as a JSON array of ops.
func (d Delta) MarshalJSON() ([]byte, error) {
	ops := d.ops
	if ops == nil {
		ops = []Op{}
	}
	return marshalOps(ops)
}

// UnmarshalJSON decodes d from a JSON array of ops.
func (d *Delta) UnmarshalJSON(data []byte) error {
	ops, err := unmarshalOps(data)
	if err != nil {
		return err
	}
	*d = New(ops...)
	return nil
}
