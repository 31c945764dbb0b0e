package models

import "time"

// Quote is the normalized market snapshot for a single symbol. Every
// provider adapter converts its own response shape into this record,
// so nothing downstream depends on provider field names.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	DayHigh       float64   `json:"high"`
	DayLow        float64   `json:"low"`
	Open          float64   `json:"open"`
	PrevClose     float64   `json:"prevClose"`
	Volume        int64     `json:"volume"`
	LastUpdated   time.Time `json:"last_updated"`
}
