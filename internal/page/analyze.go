package page

import (
	"context"
	"time"

	"github.com/dukerupert/andre/internal/model"
	"github.com/dukerupert/andre/internal/portfolio"
	"github.com/dukerupert/andre/internal/session"
)

// RecommendationCard is one rendered recommendation. Reasoning is markdown.
type RecommendationCard struct {
	Ticker          string
	Recommendation  string
	Confidence      string
	ConfidenceClass string
	Reasoning       string
}

type AnalyzeView struct {
	// Prerequisite is set when analysis is blocked on a missing sentiment.
	Prerequisite    string
	CanAnalyze      bool
	Ran             bool
	Error           string
	Recommendations []RecommendationCard
	Empty           string
}

func (c *Controller) analyzeView(st session.State) AnalyzeView {
	view := AnalyzeView{CanAnalyze: st.HasTransactions()}
	if c.opts.RequireSentiment && st.Sentiment() == "" {
		view.Prerequisite = MsgSentimentRequired
		view.CanAnalyze = false
	}
	return view
}

// Analyze renders the analysis page with the latest stored run. status is
// the outcome of the preceding run, if any; a failed run shows its error in
// place of older results.
func (c *Controller) Analyze(st session.State, status string) AnalyzeView {
	view := c.analyzeView(st)

	switch status {
	case StatusNoData:
		view.Ran, view.Error = true, errorf(MsgAnalysisData)
		return view
	case StatusFailed:
		view.Ran, view.Error = true, errorf(MsgAnalysisFailed)
		return view
	}

	a := st.Analysis()
	if a == nil {
		return view
	}
	view.Ran = true
	if len(a.Recommendations) == 0 {
		view.Empty = MsgNoRecommendations
		return view
	}
	view.Recommendations = make([]RecommendationCard, 0, len(a.Recommendations))
	for _, r := range a.Recommendations {
		view.Recommendations = append(view.Recommendations, RecommendationCard{
			Ticker:          r.Ticker,
			Recommendation:  r.Recommendation,
			Confidence:      r.Confidence,
			ConfidenceClass: portfolio.ConfidenceClass(r.Confidence),
			Reasoning:       r.Reasoning,
		})
	}
	return view
}

// RunAnalysis fetches fresh market data, submits the portfolio for analysis
// and stores the recommendations in the session. It returns the outcome;
// only storage failures are returned as errors.
func (c *Controller) RunAnalysis(ctx context.Context, st session.State) (string, error) {
	if !c.analyzeView(st).CanAnalyze {
		return StatusBlocked, nil
	}

	txs := st.Transactions()
	tickers := portfolio.UniqueTickers(txs)
	if len(tickers) == 0 {
		return StatusNoData, nil
	}

	md, err := c.api.MarketData(ctx, tickers)
	if err != nil {
		c.logger.Warn("analysis market data failed", "tickers", tickers, "error", err)
		return StatusNoData, nil
	}
	if len(md.Stocks) == 0 || len(md.News) == 0 {
		return StatusNoData, nil
	}

	userID, err := st.EnsureUserID()
	if err != nil {
		return "", err
	}

	req := portfolio.BuildAnalyzeRequest(userID, st.Sentiment(), txs, tickers, md.Stocks, md.News)
	recs, err := c.api.Analyze(ctx, req)
	if err != nil {
		c.logger.Warn("analysis failed", "user_id", userID, "error", err)
		return StatusFailed, nil
	}

	if err := st.SetAnalysis(&model.Analysis{Recommendations: recs, CreatedAt: time.Now()}); err != nil {
		return "", err
	}
	c.logger.Info("analysis complete", "user_id", userID, "recommendations", len(recs))
	return StatusSaved, nil
}
