package state

import "encoding/json"

// Tracker holds the most recent checkpoint payload not yet superseded
// by a record commit. A committed record discards the pending payload:
// the checkpoint is only trustworthy while no records are pending
// acknowledgment past it. That means records arriving after the last
// STATE suppress emission even though they were durably written; the
// upstream contract has always worked that way, so it is preserved
// rather than corrected here.
type Tracker struct {
	pending json.RawMessage
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Set installs a new pending payload, overwriting any prior one. A
// missing or null value counts as "no checkpoint" and clears instead.
func (t *Tracker) Set(value json.RawMessage) {
	if len(value) == 0 || string(value) == "null" {
		t.pending = nil
		return
	}
	t.pending = value
}

func (t *Tracker) Clear() {
	t.pending = nil
}

func (t *Tracker) Holding() bool {
	return t.pending != nil
}

// Pending returns the payload to emit at end-of-stream, or nil when
// there is nothing to emit.
func (t *Tracker) Pending() json.RawMessage {
	return t.pending
}
