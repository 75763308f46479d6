package delta

// Transform returns a change b' that carries the same intent as b but
// applies to the document after a has already been applied. priority=true
// means a is considered to have happened first when both sides insert at
// the same position (the server's policy when transforming a client change
// against committed history); priority=false keeps b's insert and advances
// past it instead (used when a client folds a remote change against its own
// unacknowledged local change).
func Transform(a, b Delta, priority bool) Delta {
	ai := newOpIterator(a)
	bi := newOpIterator(b)
	var out Delta

	for ai.remaining() || bi.remaining() {
		switch {
		case ai.peekKind() == kindInsert && (priority || bi.peekKind() != kindInsert):
			out.push(Retain(ai.next(-1).Len(), nil))
		case bi.peekKind() == kindInsert:
			out.push(bi.next(-1))
		default:
			n := min(ai.peekLen(), bi.peekLen())
			aOp := ai.next(n)
			bOp := bi.next(n)
			switch {
			case aOp.kind == kindDelete:
				// a's delete already removed these characters; b's effect
				// on them (retain or delete) has nothing left to apply to.
			case bOp.kind == kindDelete:
				out.push(bOp)
			default:
				out.push(Retain(n, transformAttrs(aOp.attrs, bOp.attrs)))
			}
		}
	}
	return out.compact()
}

// transformAttrs returns b's attributes with any key already present in a
// removed: a's concurrent attribute change on that key wins.
func transformAttrs(a, b Attrs) Attrs {
	if len(b) == 0 {
		return nil
	}
	out := make(Attrs, len(b))
	for k, v := range b {
		if _, ok := a[k]; ok {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
