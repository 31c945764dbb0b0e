package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/finaura/paper-trading/internal/models"
)

// NepseSource fetches today's prices from the NEPSE structured API.
// This is the primary source in the refresh chain.
type NepseSource struct {
	url    string
	client *http.Client
}

// NewNepseSource creates the API source for the given endpoint URL.
func NewNepseSource(url string) *NepseSource {
	return &NepseSource{
		url:    url,
		client: &http.Client{},
	}
}

// Name identifies the source in logs.
func (s *NepseSource) Name() string {
	return "nepse-api"
}

// flexFloat tolerates the API returning numbers either as JSON numbers
// or as quoted strings, which varies by endpoint version.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// todayPrice mirrors the union of field names the API has used across
// versions. Zero values mean the field was absent.
type todayPrice struct {
	Symbol          string    `json:"symbol"`
	StockSymbol     string    `json:"stockSymbol"`
	ClosingPrice    flexFloat `json:"closingPrice"`
	LastTradedPrice flexFloat `json:"lastTradedPrice"`
	LTP             flexFloat `json:"ltp"`
	PreviousClose   flexFloat `json:"previousClose"`
	PrevClose       flexFloat `json:"prevClose"`
	HighPrice       flexFloat `json:"highPrice"`
	LowPrice        flexFloat `json:"lowPrice"`
	TotalTradeQty   flexFloat `json:"totalTradeQuantity"`
	Volume          flexFloat `json:"volume"`
}

type todayPriceResponse struct {
	Content []todayPrice `json:"content"`
	Data    []todayPrice `json:"data"`
}

// Fetch retrieves and normalizes today's prices. Records that fail to
// parse or carry no positive last price are skipped, not fatal.
func (s *NepseSource) Fetch(ctx context.Context) (map[string]models.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status from nepse api: %s", resp.Status)
	}

	var payload todayPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode today prices: %w", err)
	}

	items := payload.Content
	if len(items) == 0 {
		items = payload.Data
	}

	now := time.Now()
	quotes := make(map[string]models.Quote, len(items))
	for _, item := range items {
		symbol := item.Symbol
		if symbol == "" {
			symbol = item.StockSymbol
		}

		last := float64(item.ClosingPrice)
		if last == 0 {
			last = float64(item.LastTradedPrice)
		}
		if last == 0 {
			last = float64(item.LTP)
		}
		if symbol == "" || last <= 0 {
			continue
		}

		prev := float64(item.PreviousClose)
		if prev == 0 {
			prev = float64(item.PrevClose)
		}
		if prev == 0 {
			prev = last
		}

		high := float64(item.HighPrice)
		if high == 0 {
			high = last
		}
		low := float64(item.LowPrice)
		if low == 0 {
			low = last
		}
		volume := int64(item.TotalTradeQty)
		if volume == 0 {
			volume = int64(item.Volume)
		}

		change, changePercent := changeFields(last, prev)
		quotes[symbol] = models.Quote{
			Symbol:        symbol,
			Price:         round2(last),
			Change:        change,
			ChangePercent: changePercent,
			DayHigh:       round2(high),
			DayLow:        round2(low),
			Open:          round2(prev),
			PrevClose:     round2(prev),
			Volume:        volume,
			LastUpdated:   now,
		}
	}

	return quotes, nil
}
