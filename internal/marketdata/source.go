package marketdata

import (
	"context"
	"math"

	"github.com/finaura/paper-trading/internal/models"
)

// Source fetches a normalized quote snapshot from one upstream
// provider. Implementations return an empty map (or an error) when no
// usable data came back; the scheduler decides what to do next.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (map[string]models.Quote, error)
}

// Browser-looking headers; the NEPSE endpoints reject the default Go
// user agent.
var requestHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Accept":     "application/json, text/plain, */*",
	"Referer":    "https://merolagani.com/",
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// changeFields derives change and change percent from a last price and
// previous close, guarding the zero previous close case.
func changeFields(last, prevClose float64) (change, changePercent float64) {
	change = round2(last - prevClose)
	if prevClose != 0 {
		changePercent = round2(change / prevClose * 100)
	}
	return change, changePercent
}
