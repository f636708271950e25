package core

// DashboardStats are the aggregate counts shown on the landing dashboard.
// Each figure is derived only from the collections that loaded successfully;
// a failed fetch contributes zero rather than aborting the aggregation.
type DashboardStats struct {
	TotalUsers        int
	TotalApartments   int
	TotalCategories   int
	TotalTransactions int
	TotalRevenue      float64
}

// TransactionSummary are the per-status chips on the transactions screen.
type TransactionSummary struct {
	Count       int
	TotalAmount float64
	Completed   int
	Pending     int
	Failed      int
}

// SumAmounts is the revenue figure: the sum of amount over exactly the
// given transaction collection.
func SumAmounts(txs []Transaction) float64 {
	var total float64
	for _, t := range txs {
		total += t.Amount
	}
	return total
}

// SummarizeTransactions computes count, total and per-status tallies for a
// (possibly already filtered) transaction collection.
func SummarizeTransactions(txs []Transaction) TransactionSummary {
	s := TransactionSummary{Count: len(txs), TotalAmount: SumAmounts(txs)}
	for _, t := range txs {
		switch t.Status {
		case TxCompleted:
			s.Completed++
		case TxPending:
			s.Pending++
		case TxFailed:
			s.Failed++
		}
	}
	return s
}
