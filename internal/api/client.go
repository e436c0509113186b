// Package api is a client for the remote finance-analysis API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dukerupert/andre/internal/model"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultMaxBody   = 10 << 20
)

// Endpoint paths.
const (
	PathUpload    = "/upload-transactions"
	PathSentiment = "/get-sentiment"
	PathStockData = "/get-stock-data"
	PathNews      = "/get-news"
	PathAnalyze   = "/analyze"
)

// Version selects the upload response contract.
type Version string

const (
	V1 Version = "v1" // rows returned under "preview"
	V2 Version = "v2" // rows returned under "transactions"
)

// UploadField is the response field carrying the uploaded rows.
func (v Version) UploadField() string {
	if v == V2 {
		return "transactions"
	}
	return "preview"
}

// Client talks to the remote API.
type Client struct {
	baseURL    string
	version    Version
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBody    int64
	logger     *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

func WithVersion(v Version) ClientOption {
	return func(c *Client) {
		c.version = v
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithMaxResponseSize caps how many bytes of a response body are read.
func WithMaxResponseSize(n int64) ClientOption {
	return func(c *Client) {
		c.maxBody = n
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: V1,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxBody: DefaultMaxBody,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Version returns the configured contract version.
func (c *Client) Version() Version {
	return c.version
}

// do sends req and returns the response body for 2xx statuses. Anything else
// becomes an *Error with a best-effort message from the body.
func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", endpoint, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%s response exceeds %d bytes", endpoint, c.maxBody)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.StatusCode, body),
			Endpoint:   endpoint,
		}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, result any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// UploadTransactions sends the file as multipart field "file" and returns the
// parsed rows. The call succeeds only when the response reports
// status "success" and carries the version's data field.
func (c *Client) UploadTransactions(ctx context.Context, filename string, file io.Reader) ([]model.Transaction, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUpload, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, PathUpload)
	if err != nil {
		return nil, err
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", PathUpload, err)
	}

	var status, message string
	json.Unmarshal(resp["status"], &status)
	json.Unmarshal(resp["message"], &message)

	rows, ok := resp[c.version.UploadField()]
	if status != "success" || !ok || string(rows) == "null" {
		if message == "" {
			message = "Failed to process file."
		}
		return nil, &Error{StatusCode: http.StatusOK, Message: message, Endpoint: PathUpload}
	}

	var txs []model.Transaction
	if err := json.Unmarshal(rows, &txs); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", PathUpload, err)
	}
	return txs, nil
}

type sentimentRequest struct {
	UserID    string `json:"user_id"`
	Sentiment string `json:"sentiment"`
}

type sentimentResponse struct {
	Sentiment string `json:"sentiment"`
}

// SaveSentiment records the user's sentiment and returns the server's echo of it.
func (c *Client) SaveSentiment(ctx context.Context, userID, sentiment string) (string, error) {
	var resp sentimentResponse
	err := c.postJSON(ctx, PathSentiment, sentimentRequest{UserID: userID, Sentiment: sentiment}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Sentiment, nil
}

func tickerParams(tickers []string) url.Values {
	return url.Values{"tickers": {strings.Join(tickers, ",")}}
}

type stockDataResponse struct {
	Data []model.StockMetric `json:"data"`
}

// StockData returns valuation metrics for the tickers.
func (c *Client) StockData(ctx context.Context, tickers []string) ([]model.StockMetric, error) {
	var resp stockDataResponse
	if err := c.getJSON(ctx, PathStockData, tickerParams(tickers), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type newsResponse struct {
	Headlines []model.NewsItem `json:"headlines"`
}

// News returns recent headlines for the tickers.
func (c *Client) News(ctx context.Context, tickers []string) ([]model.NewsItem, error) {
	var resp newsResponse
	if err := c.getJSON(ctx, PathNews, tickerParams(tickers), &resp); err != nil {
		return nil, err
	}
	return resp.Headlines, nil
}

// MarketData holds the joined result of the stock-data and news requests.
type MarketData struct {
	Stocks []model.StockMetric
	News   []model.NewsItem
}

// MarketData fetches stock metrics and news concurrently. Both must succeed;
// the first failure cancels the other request and is returned.
func (c *Client) MarketData(ctx context.Context, tickers []string) (*MarketData, error) {
	var md MarketData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stocks, err := c.StockData(gctx, tickers)
		if err != nil {
			return err
		}
		md.Stocks = stocks
		return nil
	})
	g.Go(func() error {
		news, err := c.News(gctx, tickers)
		if err != nil {
			return err
		}
		md.News = news
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &md, nil
}

type analyzeResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// Analyze submits the portfolio for analysis and returns the recommendations.
func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) ([]model.Recommendation, error) {
	var resp analyzeResponse
	if err := c.postJSON(ctx, PathAnalyze, req, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}
