package page

import (
	"github.com/dukerupert/andre/internal/portfolio"
	"github.com/dukerupert/andre/internal/session"
)

// TransactionRow is one formatted dashboard row.
type TransactionRow struct {
	Ticker   string
	BuyDate  string
	Quantity string
	Price    string
}

type DashboardView struct {
	Rows  []TransactionRow
	Empty string
}

// Dashboard renders the stored transaction list.
func (c *Controller) Dashboard(st session.State) DashboardView {
	txs := st.Transactions()
	if len(txs) == 0 {
		return DashboardView{Empty: MsgEmptyDashboard}
	}

	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, TransactionRow{
			Ticker:   tx.Ticker,
			BuyDate:  tx.BuyDate,
			Quantity: portfolio.FormatQuantity(tx.Quantity),
			Price:    portfolio.FormatPrice(tx.Price),
		})
	}
	return DashboardView{Rows: rows}
}
