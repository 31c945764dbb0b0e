package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/finaura/paper-trading/internal/models"
)

// MerolaganiSource scrapes the latest-market table from merolagani.com.
// It is the fallback when the NEPSE API returns nothing.
type MerolaganiSource struct {
	url    string
	client *http.Client
}

// NewMerolaganiSource creates the scraping source for the given page URL.
func NewMerolaganiSource(url string) *MerolaganiSource {
	return &MerolaganiSource{
		url:    url,
		client: &http.Client{},
	}
}

// Name identifies the source in logs.
func (s *MerolaganiSource) Name() string {
	return "merolagani-scrape"
}

// Fetch downloads the page and extracts one quote per table row.
// Column layout: [sn, symbol, ltp, high, low, change, volume, ...].
// Rows that fail to parse are skipped.
func (s *MerolaganiSource) Fetch(ctx context.Context) (map[string]models.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status from merolagani: %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse market page: %w", err)
	}

	now := time.Now()
	quotes := make(map[string]models.Quote)
	for _, cols := range tableRows(doc) {
		if len(cols) < 6 {
			continue
		}

		symbol := strings.TrimSpace(cols[1])
		last, err := parseNumber(cols[2])
		if err != nil {
			continue
		}
		change, err := parseNumber(cols[5])
		if err != nil {
			change = 0
		}
		if symbol == "" || last <= 0 {
			continue
		}

		high, err := parseNumber(cols[3])
		if err != nil || high == 0 {
			high = last
		}
		low, err := parseNumber(cols[4])
		if err != nil || low == 0 {
			low = last
		}
		var volume int64
		if len(cols) > 6 {
			if v, err := parseNumber(cols[6]); err == nil {
				volume = int64(v)
			}
		}

		// The table carries change, not previous close; derive it.
		prev := last - change
		_, changePercent := changeFields(last, prev)

		quotes[symbol] = models.Quote{
			Symbol:        symbol,
			Price:         round2(last),
			Change:        round2(change),
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

// tableRows walks the document and returns the cell texts of every
// table row that contains td elements.
func tableRows(doc *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cols []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "td" {
					cols = append(cols, nodeText(c))
				}
			}
			if len(cols) > 0 {
				rows = append(rows, cols)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func parseNumber(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" || cleaned == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(cleaned, 64)
}
