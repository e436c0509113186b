package page

import (
	"context"
	"strings"

	"github.com/dukerupert/andre/internal/model"
	"github.com/dukerupert/andre/internal/portfolio"
	"github.com/dukerupert/andre/internal/session"
)

// StockCard is one formatted metrics card. Missing values read "N/A".
type StockCard struct {
	Ticker  string
	PERatio string
	EPS     string
}

type MarketView struct {
	Query   string
	Tickers []string
	Error   string
	// Loaded is set only when both requests succeeded.
	Loaded      bool
	Stocks      []StockCard
	News        []model.NewsItem
	StocksEmpty string
	NewsEmpty   string
}

// Market fetches metrics and news for the tickers in query, or for the
// stored transactions when query is blank.
func (c *Controller) Market(ctx context.Context, st session.State, query string) MarketView {
	view := MarketView{Query: strings.TrimSpace(query)}
	if view.Query != "" {
		view.Tickers = portfolio.ParseTickers(view.Query)
	} else {
		view.Tickers = portfolio.UniqueTickers(st.Transactions())
	}

	if len(view.Tickers) == 0 {
		view.Error = MsgNoTickers
		return view
	}

	md, err := c.api.MarketData(ctx, view.Tickers)
	if err != nil {
		c.logger.Warn("market data failed", "tickers", view.Tickers, "error", err)
		view.Error = errorf(MsgMarketFailed)
		return view
	}

	view.Loaded = true
	view.Stocks = stockCards(md.Stocks)
	view.News = md.News
	if len(view.Stocks) == 0 {
		view.StocksEmpty = MsgNoStockData
	}
	if len(view.News) == 0 {
		view.NewsEmpty = MsgNoNews
	}
	return view
}

func stockCards(metrics []model.StockMetric) []StockCard {
	cards := make([]StockCard, 0, len(metrics))
	for _, m := range metrics {
		cards = append(cards, StockCard{
			Ticker:  m.Ticker,
			PERatio: portfolio.FormatMetric(m.PERatio),
			EPS:     portfolio.FormatMetric(m.EPS),
		})
	}
	return cards
}
