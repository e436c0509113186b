package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/andre/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithRateLimit(0)}, opts...)
	return NewClient(srv.URL+"/", opts...)
}

func TestUploadTransactionsV1(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathUpload, r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(file)
		assert.Equal(t, "trades.csv", header.Filename)
		assert.Equal(t, "ticker,price\nAAPL,19.5\n", string(data))

		w.Write([]byte(`{"status":"success","preview":[{"ticker":"AAPL","buy_date":"2024-01-02","quantity":10,"price":19.5}]}`))
	})

	txs, err := c.UploadTransactions(context.Background(), "trades.csv", strings.NewReader("ticker,price\nAAPL,19.5\n"))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "AAPL", txs[0].Ticker)
	assert.Equal(t, 19.5, txs[0].Price)
}

func TestUploadTransactionsV2Field(t *testing.T) {
	h := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","transactions":[{"ticker":"MSFT","transaction_date":"2024-05-06","quantity":1,"price":400}]}`))
	}

	v2 := newTestClient(t, h, WithVersion(V2))
	txs, err := v2.UploadTransactions(context.Background(), "a.csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024-05-06", txs[0].BuyDate)

	// The same body lacks the v1 field and must be rejected.
	v1 := newTestClient(t, h, WithVersion(V1))
	_, err = v1.UploadTransactions(context.Background(), "a.csv", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "Failed to process file.", Message(err))
}

func TestUploadTransactionsNotSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"CSV is missing a ticker column"}`))
	})

	_, err := c.UploadTransactions(context.Background(), "a.csv", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "CSV is missing a ticker column", Message(err))
}

func TestUploadTransactionsHTTPErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"bad file"}`, "bad file"},
		{"detail field", `{"detail":"Unsupported file type"}`, "Unsupported file type"},
		{"no message", `{"other":1}`, "HTTP error! status: 422"},
		{"not json", `<html>oops</html>`, UnknownErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			})
			_, err := c.UploadTransactions(context.Background(), "a.csv", strings.NewReader("x"))
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestUploadTransactionsMalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","preview":`))
	})
	_, err := c.UploadTransactions(context.Background(), "a.csv", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, UnknownErrorMessage, Message(err))
}

func TestSaveSentiment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSentiment, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req sentimentRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user_1", req.UserID)
		assert.Equal(t, "bullish on chips", req.Sentiment)
		json.NewEncoder(w).Encode(sentimentResponse{Sentiment: "Bullish"})
	})

	got, err := c.SaveSentiment(context.Background(), "user_1", "bullish on chips")
	require.NoError(t, err)
	assert.Equal(t, "Bullish", got)
}

func TestStockDataAndNewsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("tickers"))
		switch r.URL.Path {
		case PathStockData:
			w.Write([]byte(`{"data":[{"ticker":"AAPL","pe_ratio":28.1,"eps":6.2},{"ticker":"MSFT","pe_ratio":null}]}`))
		case PathNews:
			w.Write([]byte(`{"headlines":[{"ticker":"AAPL","source":"Wire","title":"Apple up","link":"https://x/1"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	md, err := c.MarketData(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.Len(t, md.Stocks, 2)
	require.Len(t, md.News, 1)
	assert.Nil(t, md.Stocks[1].PERatio)
	assert.Equal(t, "Apple up", md.News[0].Title)
}

func TestMarketDataAllOrNothing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathNews {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":[{"ticker":"AAPL","pe_ratio":1,"eps":1}]}`))
	})

	md, err := c.MarketData(context.Background(), []string{"AAPL"})
	require.Error(t, err)
	assert.Nil(t, md)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, PathNews, apiErr.Endpoint)
}

func TestMarketDataMissingArraysAreEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	md, err := c.MarketData(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, md.Stocks)
	assert.Empty(t, md.News)
}

func TestAnalyze(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAnalyze, r.URL.Path)
		var raw map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Nil(t, raw["sentiment"])
		if hist, ok := raw["transaction_history"].([]any); assert.True(t, ok) && assert.Len(t, hist, 1) {
			assert.Equal(t, "buy", hist[0].(map[string]any)["transaction_type"])
		}
		w.Write([]byte(`{"recommendations":[{"ticker":"AAPL","recommendation":"Hold","confidence":"High","reasoning":"Solid."}]}`))
	})

	recs, err := c.Analyze(context.Background(), model.AnalyzeRequest{
		UserID: "user_1",
		TransactionHistory: []model.HistoryEntry{
			{Ticker: "AAPL", TransactionType: model.TransactionTypeBuy, Quantity: 1, Price: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Hold", recs[0].Recommendation)
}

func TestTransportErrorHidesDetails(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTimeout(time.Second), WithRateLimit(0))
	_, err := c.SaveSentiment(context.Background(), "u", "s")
	require.Error(t, err)
	assert.Equal(t, UnknownErrorMessage, Message(err))
}

func TestResponseSizeLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sentiment":"` + strings.Repeat("x", 64) + `"}`))
	}, WithMaxResponseSize(32))

	_, err := c.SaveSentiment(context.Background(), "u", "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 32 bytes")
	assert.Equal(t, UnknownErrorMessage, Message(err))

	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sentiment":"Bullish"}`))
	}, WithMaxResponseSize(32))
	got, err := ok.SaveSentiment(context.Background(), "u", "s")
	require.NoError(t, err)
	assert.Equal(t, "Bullish", got)
}

func TestVersionUploadField(t *testing.T) {
	assert.Equal(t, "preview", V1.UploadField())
	assert.Equal(t, "transactions", V2.UploadField())
	assert.Equal(t, V1, NewClient("http://x").Version())
}
