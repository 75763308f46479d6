package delta

import "reflect"

// Diff returns a change delta that, composed onto a, yields b. Both inputs
// must be document deltas. It computes a longest-common-subsequence over
// the two documents' character sequences to produce a minimal edit script,
// then walks both deltas' own ops in lockstep with the script to re-attach
// attribute changes on the retained spans.
func Diff(a, b Delta) Delta {
	if !a.IsDocument() || !b.IsDocument() {
		panic("delta: diff requires document deltas")
	}
	if a.Equal(b) {
		return Delta{}
	}

	comps := diffRunes(a.DocText(), b.DocText())
	ai := newOpIterator(a)
	bi := newOpIterator(b)
	var out Delta

	for _, c := range comps {
		length := len(c.text)
		for length > 0 {
			switch c.kind {
			case diffInsert:
				n := min(bi.peekLen(), length)
				out.push(bi.next(n))
				length -= n
			case diffDelete:
				n := min(ai.peekLen(), length)
				ai.next(n)
				out.push(Delete(n))
				length -= n
			default: // diffEqual
				n := min(ai.peekLen(), bi.peekLen(), length)
				aOp := ai.next(n)
				bOp := bi.next(n)
				if sameContent(aOp, bOp) {
					out.push(Retain(n, diffAttrs(aOp.attrs, bOp.attrs)))
				} else {
					out.push(bOp)
					out.push(Delete(n))
				}
				length -= n
			}
		}
	}
	return out.compact()
}

// sameContent reports whether two insert ops carry the same payload,
// ignoring attributes. Embeds are compared by deep equality since the LCS
// walk treats every embed as a single placeholder rune and so may pair up
// two embeds of different underlying value.
func sameContent(a, b Op) bool {
	if a.IsEmbed() != b.IsEmbed() {
		return false
	}
	if a.IsEmbed() {
		return reflect.DeepEqual(a.embed, b.embed)
	}
	return a.text == b.text
}

// diffAttrs returns the minimal attribute set that turns aAttrs into
// bAttrs: b's value for any key whose value changed, null for a key a held
// that b dropped.
func diffAttrs(aAttrs, bAttrs Attrs) Attrs {
	out := make(Attrs)
	for k, av := range aAttrs {
		if bv, ok := bAttrs[k]; !ok {
			out[k] = nil
		} else if !reflect.DeepEqual(av, bv) {
			out[k] = bv
		}
	}
	for k, bv := range bAttrs {
		if _, ok := aAttrs[k]; !ok {
			out[k] = bv
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type diffKind int

const (
	diffEqual diffKind = iota
	diffInsert
	diffDelete
)

type diffComponent struct {
	kind diffKind
	text []rune
}

// diffRunes computes a minimal edit script turning a into b via a classic
// longest-common-subsequence dynamic program, merging consecutive
// same-kind runs.
func diffRunes(a, b []rune) []diffComponent {
	n, m := len(a), len(b)
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var comps []diffComponent
	push := func(k diffKind, r rune) {
		if n := len(comps); n > 0 && comps[n-1].kind == k {
			comps[n-1].text = append(comps[n-1].text, r)
			return
		}
		comps = append(comps, diffComponent{kind: k, text: []rune{r}})
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			push(diffEqual, a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			push(diffDelete, a[i])
			i++
		default:
			push(diffInsert, b[j])
			j++
		}
	}
	for ; i < n; i++ {
		push(diffDelete, a[i])
	}
	for ; j < m; j++ {
		push(diffInsert, b[j])
	}
	return comps
}
