package portfolio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/andre/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestUniqueTickers(t *testing.T) {
	txs := []model.Transaction{
		{Ticker: "MSFT"}, {Ticker: "AAPL"}, {Ticker: "MSFT"}, {Ticker: ""}, {Ticker: "brk.b"}, {Ticker: "AAPL"},
	}
	assert.Equal(t, []string{"MSFT", "AAPL", "brk.b"}, UniqueTickers(txs))
	assert.Empty(t, UniqueTickers(nil))
}

func TestParseTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, ParseTickers(" aapl, msft  tsla,aapl "))
	assert.Empty(t, ParseTickers(" , ,"))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{19.5, "$19.50"},
		{0, "$0.00"},
		{0.1 + 0.2, "$0.30"},
		{189.999, "$190.00"},
		{1234.5, "$1,234.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in), "FormatPrice(%v)", tt.in)
	}
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, NotAvailable, FormatMetric(nil))
	assert.Equal(t, "28.10", FormatMetric(ptr(28.1)))
	assert.Equal(t, "-3.46", FormatMetric(ptr(-3.456)))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "10", FormatQuantity(10))
	assert.Equal(t, "2.5", FormatQuantity(2.5))
}

func TestBuildAnalyzeRequest(t *testing.T) {
	txs := []model.Transaction{
		{Ticker: "AAPL", BuyDate: "2024-01-02", TransactionType: "sell", Quantity: 3, Price: 150},
		{Ticker: "MSFT", BuyDate: "2024-02-03", Quantity: 1, Price: 400.25},
	}
	tickers := UniqueTickers(txs)
	metrics := []model.StockMetric{{Ticker: "AAPL", PERatio: ptr(28)}}
	news := []model.NewsItem{
		{Ticker: "MSFT", Title: "Microsoft ships"},
		{Title: "Markets rally"},
	}

	req := BuildAnalyzeRequest("user_1", "Bullish", txs, tickers, metrics, news)

	assert.Equal(t, "user_1", req.UserID)
	require.NotNil(t, req.Sentiment)
	assert.Equal(t, "Bullish", *req.Sentiment)

	require.Len(t, req.TransactionHistory, 2)
	for _, h := range req.TransactionHistory {
		assert.Equal(t, model.TransactionTypeBuy, h.TransactionType)
	}
	assert.Equal(t, "2024-01-02", req.TransactionHistory[0].TransactionDate)
	assert.Equal(t, 400.25, req.TransactionHistory[1].Price)

	require.Len(t, req.NewsSummaries, 2)
	assert.Equal(t, model.NewsSummary{Ticker: "MSFT", Headline: "Microsoft ships"}, req.NewsSummaries[0])
	assert.Equal(t, model.NewsSummary{Ticker: "AAPL", Headline: "Markets rally"}, req.NewsSummaries[1])
	assert.Equal(t, metrics, req.CurrentMetrics)
}

func TestBuildAnalyzeRequestWithoutSentiment(t *testing.T) {
	req := BuildAnalyzeRequest("user_1", "", nil, nil, nil, nil)
	assert.Nil(t, req.Sentiment)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "sentiment")
	assert.Nil(t, raw["sentiment"])
	assert.Equal(t, []any{}, raw["transaction_history"])
	assert.Equal(t, []any{}, raw["current_metrics"])
	assert.Equal(t, []any{}, raw["news_summaries"])
}

func TestConfidenceClass(t *testing.T) {
	assert.Equal(t, "text-green-400", ConfidenceClass("High"))
	assert.Equal(t, "text-green-400", ConfidenceClass(" HIGH "))
	assert.Equal(t, "text-yellow-400", ConfidenceClass("medium"))
	assert.Equal(t, "text-gray-400", ConfidenceClass("Low"))
	assert.Equal(t, "text-gray-400", ConfidenceClass(""))
}
