// Package page holds the headless page controllers. Each controller reads
// and writes visitor state through session.State, calls the remote API and
// returns a view model for the HTTP layer to render.
package page

import (
	"context"
	"io"
	"log/slog"

	"github.com/dukerupert/andre/internal/api"
	"github.com/dukerupert/andre/internal/config"
	"github.com/dukerupert/andre/internal/model"
)

// API is the subset of the remote client the controllers call.
type API interface {
	UploadTransactions(ctx context.Context, filename string, file io.Reader) ([]model.Transaction, error)
	SaveSentiment(ctx context.Context, userID, sentiment string) (string, error)
	MarketData(ctx context.Context, tickers []string) (*api.MarketData, error)
	Analyze(ctx context.Context, req model.AnalyzeRequest) ([]model.Recommendation, error)
}

// Options selects between the observed page variants.
type Options struct {
	SentimentMode    string // config.SentimentModeForm or config.SentimentModeChat
	RequireSentiment bool
}

// User-facing messages.
const (
	MsgProcessing        = "Processing your transactions..."
	MsgNoFile            = "Please choose a file to upload."
	MsgFileTooLarge      = "File is too large. The limit is 10 MB."
	MsgNoTransactions    = "No transactions found in the uploaded file."
	MsgEmptyDashboard    = "No transactions found. Please upload a file."
	MsgSelectSentiment   = "Please select your sentiment."
	MsgSentimentFailed   = "Failed to save sentiment."
	MsgChatGreeting      = "Hi! How are you feeling about the market today?"
	MsgChatApology       = "Sorry, I couldn't save your sentiment right now. Please try again in a moment."
	MsgNoTickers         = "No tickers found in your transactions."
	MsgMarketFailed      = "Failed to fetch market data."
	MsgNoStockData       = "Could not retrieve stock data."
	MsgNoNews            = "No recent news found for your tickers."
	MsgSentimentRequired = "Please provide your sentiment on the 'What's Up' page before running an analysis."
	MsgAnalysisData      = "Could not fetch market data needed for analysis."
	MsgAnalysisFailed    = "Analysis request failed."
	MsgNoRecommendations = "No specific recommendations could be generated at this time."
)

// Submission outcomes. Each POST answers with a redirect carrying one of
// these in the "status" query parameter, so reloading the result page never
// repeats the submission.
const (
	StatusSaved   = "saved"
	StatusMissing = "missing"
	StatusFailed  = "failed"
	StatusNoData  = "nodata"
	StatusBlocked = "blocked"
)

// Controller serves every page of the application.
type Controller struct {
	api    API
	opts   Options
	logger *slog.Logger
}

func NewController(a API, opts Options, logger *slog.Logger) *Controller {
	if opts.SentimentMode == "" {
		opts.SentimentMode = config.SentimentModeForm
	}
	return &Controller{api: a, opts: opts, logger: logger}
}

// ChatMode reports whether sentiment is captured as a conversation.
func (c *Controller) ChatMode() bool {
	return c.opts.SentimentMode == config.SentimentModeChat
}

func errorf(msg string) string {
	return "Error: " + msg
}
