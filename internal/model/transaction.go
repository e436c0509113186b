package model

import "encoding/json"

// TransactionTypeBuy is the only transaction type the analysis API is sent.
const TransactionTypeBuy = "buy"

// Transaction is one uploaded portfolio row. The upload API names the date
// either buy_date or transaction_date; both decode into BuyDate.
type Transaction struct {
	Ticker          string  `json:"ticker"`
	BuyDate         string  `json:"buy_date"`
	TransactionType string  `json:"transaction_type,omitempty"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var raw struct {
		plain
		TransactionDate string `json:"transaction_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Transaction(raw.plain)
	if t.BuyDate == "" {
		t.BuyDate = raw.TransactionDate
	}
	return nil
}

// HistoryEntry is the normalized transaction shape the analyze endpoint expects.
type HistoryEntry struct {
	Ticker          string  `json:"ticker"`
	TransactionDate string  `json:"transaction_date"`
	TransactionType string  `json:"transaction_type"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
}
