package pending

import "context"

// Store holds at most one unconfirmed transcript per sender. It is the only
// mutable state the conversation keeps between turns.
//
// Put always overwrites: a newer voice note from the same sender replaces the
// older pending entry, last write wins. TakeIfPresent is a single atomic
// check-and-remove, so a confirmation racing a fresh voice note observes
// either the full old entry or none, never a torn read. Entries never expire
// on their own.
type Store interface {
	Put(ctx context.Context, senderID, text string) error
	TakeIfPresent(ctx context.Context, senderID string) (string, bool, error)
}
