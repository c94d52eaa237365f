package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"delivery-log-service/internal/domain"
)

// ErrNoMatch reports a transcript that lacks one of the required clauses in
// order, or whose numeric clauses fail integer conversion. Callers never see
// a partial record.
var ErrNoMatch = errors.New("transcript does not match the delivery format")

// One composed pass over the whole transcript. Clauses must appear in order;
// the filler between them may contain anything, including line breaks, so the
// pattern runs case-insensitively with dot-matches-newline. Fillers are
// non-greedy: the first occurrence of each keyword that keeps the clause
// order wins, with no scoring of alternatives.
var deliveryPattern = regexp.MustCompile(`(?is)` +
	`\bclient\s+(?P<client_index>[1-7])` +
	`.*?\bdelivered\s+(?P<quantity>\d+)\s+(?P<feed_type>crumbs|pellets|day old chicks|layer mash)(?:\s+at)?` +
	`.*?\bprice\s+(?P<price>\d+)` +
	`.*?\blocation\s+(?P<location>matangi|kitengela|mihang'o)\s*` +
	`(?:.*?\bnotes\s+(?P<notes>.*))?`)

// Extract parses one speech-to-text transcript into a typed DeliveryRecord.
// The transcript may carry arbitrary filler before, between, and after the
// meaningful clauses. On any failure the sentinel ErrNoMatch is returned and
// the zero record must be discarded.
func Extract(transcript string) (domain.DeliveryRecord, error) {
	match := deliveryPattern.FindStringSubmatch(transcript)
	if match == nil {
		return domain.DeliveryRecord{}, ErrNoMatch
	}

	fields := make(map[string]string)
	for i, name := range deliveryPattern.SubexpNames() {
		if name != "" {
			fields[name] = match[i]
		}
	}

	// The captures are digit-only, so conversion failure should not happen;
	// checked anyway so a garbage numeric field can never reach storage.
	quantity, err := strconv.Atoi(fields["quantity"])
	if err != nil {
		return domain.DeliveryRecord{}, ErrNoMatch
	}
	price, err := strconv.Atoi(fields["price"])
	if err != nil {
		return domain.DeliveryRecord{}, ErrNoMatch
	}

	return domain.DeliveryRecord{
		ClientIndex: textField(fields["client_index"]),
		Quantity:    quantity,
		FeedType:    textField(fields["feed_type"]),
		Price:       price,
		Location:    textField(fields["location"]),
		Notes:       textField(fields["notes"]),
		Debt:        0,
		Overpaid:    0,
	}, nil
}

// Trim surrounding whitespace and fall back to the "N/A" sentinel for a
// structurally absent capture (in practice only the optional notes clause).
func textField(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	return s
}
