package domain

import (
	"fmt"
	"time"
)

// Vaccination offsets counted from the delivery date.
const (
	guboroOffsetDays = 14
	laSotaOffsetDays = 21
)

// Reminders derives the two vaccination reminder dates from a delivery date.
// The "Label: YYYY-MM-DD; ..." layout is part of the persisted row and must
// stay byte-for-byte stable for downstream consumers.
func Reminders(deliveryDate time.Time) string {
	guboro := deliveryDate.AddDate(0, 0, guboroOffsetDays)
	laSota := deliveryDate.AddDate(0, 0, laSotaOffsetDays)

	return fmt.Sprintf(
		"Guboro: %s; La Sota: %s",
		guboro.Format("2006-01-02"),
		laSota.Format("2006-01-02"),
	)
}
