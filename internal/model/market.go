package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StockMetric holds the valuation figures for one ticker. A nil ratio means
// the API did not supply a usable number.
type StockMetric struct {
	Ticker  string   `json:"ticker"`
	PERatio *float64 `json:"pe_ratio"`
	EPS     *float64 `json:"eps"`
}

func (m *StockMetric) UnmarshalJSON(data []byte) error {
	var raw struct {
		Ticker  string          `json:"ticker"`
		PERatio json.RawMessage `json:"pe_ratio"`
		EPS     json.RawMessage `json:"eps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Ticker = raw.Ticker
	m.PERatio = optionalFloat(raw.PERatio)
	m.EPS = optionalFloat(raw.EPS)
	return nil
}

// optionalFloat accepts a JSON number or numeric string. null, "", "N/A" and
// anything unparsable yield nil.
func optionalFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// NewsItem is a headline returned by the news endpoint.
type NewsItem struct {
	Ticker string `json:"ticker,omitempty"`
	Source string `json:"source"`
	Title  string `json:"title"`
	Link   string `json:"link"`
}

// NewsSummary pairs a headline with the ticker it concerns.
type NewsSummary struct {
	Ticker   string `json:"ticker"`
	Headline string `json:"headline"`
}

// Recommendation is one actionable suggestion from the analyze endpoint.
type Recommendation struct {
	Ticker         string `json:"ticker"`
	Recommendation string `json:"recommendation"`
	Confidence     string `json:"confidence"`
	Reasoning      string `json:"reasoning"`
}

// AnalyzeRequest is the body posted to the analyze endpoint.
type AnalyzeRequest struct {
	UserID             string         `json:"user_id"`
	Sentiment          *string        `json:"sentiment"`
	TransactionHistory []HistoryEntry `json:"transaction_history"`
	CurrentMetrics     []StockMetric  `json:"current_metrics"`
	NewsSummaries      []NewsSummary  `json:"news_summaries"`
}
