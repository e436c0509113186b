package model

import (
	"encoding/json"
	"testing"
)

func TestStockMetricTolerantDecode(t *testing.T) {
	payload := `[
		{"ticker": "AAPL", "pe_ratio": 28.5, "eps": 6.1},
		{"ticker": "MSFT", "pe_ratio": "31.25", "eps": null},
		{"ticker": "XYZ", "pe_ratio": "N/A"},
		{"ticker": "BAD", "pe_ratio": {"nested": true}, "eps": ""}
	]`

	var metrics []StockMetric
	if err := json.Unmarshal([]byte(payload), &metrics); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(metrics) != 4 {
		t.Fatalf("got %d metrics, want 4", len(metrics))
	}

	if metrics[0].PERatio == nil || *metrics[0].PERatio != 28.5 {
		t.Errorf("AAPL pe_ratio = %v, want 28.5", metrics[0].PERatio)
	}
	if metrics[1].PERatio == nil || *metrics[1].PERatio != 31.25 {
		t.Errorf("MSFT pe_ratio = %v, want 31.25", metrics[1].PERatio)
	}
	if metrics[1].EPS != nil {
		t.Errorf("MSFT eps = %v, want nil", *metrics[1].EPS)
	}
	if metrics[2].PERatio != nil || metrics[2].EPS != nil {
		t.Error("XYZ metrics should be nil")
	}
	if metrics[3].PERatio != nil || metrics[3].EPS != nil {
		t.Error("BAD metrics should be nil")
	}
}

func TestStockMetricEncodesNullForMissing(t *testing.T) {
	pe := 12.0
	data, err := json.Marshal(StockMetric{Ticker: "T", PERatio: &pe})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ticker":"T","pe_ratio":12,"eps":null}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestTransactionAcceptsEitherDateField(t *testing.T) {
	payload := `[
		{"ticker": "AAPL", "buy_date": "2024-01-02", "quantity": 10, "price": 19.5},
		{"ticker": "MSFT", "transaction_date": "2024-03-04", "transaction_type": "sell", "quantity": 1, "price": 400}
	]`
	var txs []Transaction
	if err := json.Unmarshal([]byte(payload), &txs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if txs[0].BuyDate != "2024-01-02" {
		t.Errorf("buy_date = %q", txs[0].BuyDate)
	}
	if txs[1].BuyDate != "2024-03-04" {
		t.Errorf("transaction_date not mapped: %q", txs[1].BuyDate)
	}
	if txs[1].TransactionType != "sell" {
		t.Errorf("transaction_type = %q", txs[1].TransactionType)
	}
	if txs[0].Price != 19.5 || txs[0].Quantity != 10 {
		t.Errorf("numbers = %v/%v", txs[0].Quantity, txs[0].Price)
	}
}

func TestSessionAuthorized(t *testing.T) {
	var nilSession *Session
	if nilSession.Authorized() {
		t.Error("nil session must not be authorized")
	}
	if (&Session{}).Authorized() {
		t.Error("empty session must not be authorized")
	}
	if !(&Session{Transactions: []Transaction{{Ticker: "A"}}}).Authorized() {
		t.Error("session with transactions must be authorized")
	}
}
