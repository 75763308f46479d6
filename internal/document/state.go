// Package document implements the per-document reconciliation actor: a
// single-writer state machine owning a document's version, history and
// contents, serializing get and update requests through its inbox.
package document

import "inkwell/pkg/delta"

// State is the data one document actor owns.
type State struct {
	ID string
	// Version is the number of changes committed so far.
	Version int
	// Contents is the current document, always a valid document delta.
	Contents delta.Delta
	// History holds every committed, transformed change in reverse
	// chronological order: History[0] is the most recent. len(History)
	// always equals Version.
	History []delta.Delta
}

// seedText is the hard-coded initial document every new actor starts from;
// there is no persistence, so this is also what a restarted actor resets to.
const seedText = "Hello world!\n"

// Seed returns the initial state for a freshly created (or restarted)
// document with the given id.
func Seed(id string) State {
	return State{
		ID:       id,
		Version:  0,
		Contents: delta.New(delta.InsertText(seedText, delta.Attrs{"node_id": "hello"})),
	}
}
