package delta

// Invert returns the inverse of change given the document base it was
// applied to: composing change then inverse onto base is a no-op. An
// insert becomes a delete of the same length; a delete becomes an insert of
// whatever text or embed it removed from base, carrying base's attributes
// at that point; a retain's attributes are restored to what base held:
// null for a key the change introduced, base's previous value for a key the
// change merely altered.
//
// base must be at least as long as change's base length, or Invert panics:
// a change that does not fit its stated base is a programmer error, not a
// recoverable condition.
func Invert(change, base Delta) Delta {
	if !base.IsDocument() {
		panic("delta: invert base must be a document delta")
	}
	bi := newOpIterator(base)
	var out Delta

	for _, o := range change.Ops() {
		switch {
		case o.IsInsert():
			out.push(Delete(o.Len()))
		case o.IsDelete():
			consumeBase(bi, o.Len(), func(n int, bOp Op) {
				if bOp.IsEmbed() {
					out.push(InsertEmbed(bOp.Embed(), bOp.Attrs()))
				} else {
					out.push(InsertText(bOp.Text(), bOp.Attrs()))
				}
			})
		case o.IsRetain():
			attrs := o.Attrs()
			consumeBase(bi, o.Len(), func(n int, bOp Op) {
				out.push(Retain(n, restoreAttrs(attrs, bOp.Attrs())))
			})
		}
	}
	return out.compact()
}

// consumeBase pulls exactly total units out of bi, in as many slices as
// base's own op boundaries require, invoking fn with each slice.
func consumeBase(bi *opIterator, total int, fn func(n int, bOp Op)) {
	for total > 0 {
		if bi.done() {
			panic("delta: invert base too short for change")
		}
		n := bi.peekLen()
		if n > total {
			n = total
		}
		fn(n, bi.next(n))
		total -= n
	}
}

// restoreAttrs returns the attribute set that undoes changeAttrs against
// what base actually held: a null for any key the change added, base's own
// value for any key the change only modified.
func restoreAttrs(changeAttrs, baseAttrs Attrs) Attrs {
	if len(changeAttrs) == 0 {
		return nil
	}
	out := make(Attrs, len(changeAttrs))
	for k := range changeAttrs {
		if v, ok := baseAttrs[k]; ok {
			out[k] = v
		} else {
			out[k] = nil
		}
	}
	return out
}
