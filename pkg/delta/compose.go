package delta

// Compose returns a delta c such that applying c to a document yields the
// same result as applying a then b. It walks both sequences in lockstep,
// pairing the next slice of a with the next slice of b:
//
//   - a.delete always wins and is emitted as-is, consuming only from a.
//   - b.insert always wins (it has no counterpart in a) and is emitted
//     as-is, consuming only from b.
//   - otherwise the shared prefix length of both sides is consumed from
//     each and the pair is resolved: insert+retain emits the insert with
//     merged attributes, insert+delete cancels (emits nothing), and
//     retain+retain / retain+delete emit a retain or delete respectively.
func Compose(a, b Delta) Delta {
	ai := newOpIterator(a)
	bi := newOpIterator(b)
	var out Delta

	for ai.remaining() || bi.remaining() {
		switch {
		case bi.peekKind() == kindInsert:
			out.push(bi.next(-1))
		case ai.peekKind() == kindDelete:
			out.push(ai.next(-1))
		default:
			n := min(ai.peekLen(), bi.peekLen())
			aOp := ai.next(n)
			bOp := bi.next(n)
			switch {
			case bOp.kind == kindRetain && aOp.kind == kindRetain:
				out.push(Retain(n, composeAttrs(aOp.attrs, bOp.attrs)))
			case bOp.kind == kindRetain && aOp.kind == kindInsert:
				attrs := composeAttrs(aOp.attrs, bOp.attrs)
				if aOp.IsEmbed() {
					out.push(InsertEmbed(aOp.embed, attrs))
				} else {
					out.push(InsertText(aOp.text, attrs))
				}
			case bOp.kind == kindDelete && aOp.kind == kindRetain:
				out.push(Delete(n))
			// aOp.kind == kindInsert && bOp.kind == kindDelete: they cancel.
			}
		}
	}
	return out.compact()
}

// composeAttrs merges base and applied with applied winning; a nil value in
// applied removes the key from the result entirely.
func composeAttrs(base, applied Attrs) Attrs {
	if len(base) == 0 && len(applied) == 0 {
		return nil
	}
	out := make(Attrs, len(base)+len(applied))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range applied {
		if v == nil {
			delete(out, k)
		} else {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
