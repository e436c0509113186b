package portfolio

import (
	"strings"

	"github.com/dukerupert/andre/internal/model"
)

// BuildAnalyzeRequest assembles the analyze payload. Every transaction is sent
// as a purchase whatever its stored type. Headlines without a ticker are
// attributed to the first of tickers.
func BuildAnalyzeRequest(
	userID, sentiment string,
	txs []model.Transaction,
	tickers []string,
	metrics []model.StockMetric,
	news []model.NewsItem,
) model.AnalyzeRequest {
	req := model.AnalyzeRequest{
		UserID:             userID,
		TransactionHistory: make([]model.HistoryEntry, 0, len(txs)),
		CurrentMetrics:     metrics,
		NewsSummaries:      make([]model.NewsSummary, 0, len(news)),
	}
	if req.CurrentMetrics == nil {
		req.CurrentMetrics = []model.StockMetric{}
	}
	if sentiment != "" {
		req.Sentiment = &sentiment
	}

	for _, tx := range txs {
		req.TransactionHistory = append(req.TransactionHistory, model.HistoryEntry{
			Ticker:          tx.Ticker,
			TransactionDate: tx.BuyDate,
			TransactionType: model.TransactionTypeBuy,
			Quantity:        tx.Quantity,
			Price:           tx.Price,
		})
	}

	var fallback string
	if len(tickers) > 0 {
		fallback = tickers[0]
	}
	for _, item := range news {
		ticker := strings.TrimSpace(item.Ticker)
		if ticker == "" {
			ticker = fallback
		}
		req.NewsSummaries = append(req.NewsSummaries, model.NewsSummary{
			Ticker:   ticker,
			Headline: item.Title,
		})
	}
	return req
}
