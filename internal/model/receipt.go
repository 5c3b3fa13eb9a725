package model

import "time"

// Receipt is a captured expense document, already reduced to structured fields.
type Receipt struct {
	ID          string
	Vendor      string
	Date        time.Time
	Amount      Money
	Category    string
	DocumentRef string // pointer to the source document, may be empty
}
