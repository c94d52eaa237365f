package domain

// Represents one confirmed feed delivery as extracted from a voice note.
// A record is only ever built by a successful extraction and is persisted
// in full or discarded in full; there are no partial writes.
type DeliveryRecord struct {
	ClientIndex string
	Quantity    int
	FeedType    string
	Price       int
	Location    string
	Notes       string

	// Carried in the schema for upcoming bookkeeping; no extraction path
	// populates them yet, so both stay zero.
	Debt     int
	Overpaid int

	// Stamped by the conversation at confirmation time, not at the time
	// the voice note was recorded.
	Date      string
	SenderID  string
	Reminders string
}

// Row returns the persisted column order every delivery log shares:
// date, sender id, client index, quantity, feed type, price, location,
// notes, reminders. Downstream consumers depend on this exact layout.
func (r *DeliveryRecord) Row() []any {
	return []any{
		r.Date,
		r.SenderID,
		r.ClientIndex,
		r.Quantity,
		r.FeedType,
		r.Price,
		r.Location,
		r.Notes,
		r.Reminders,
	}
}
