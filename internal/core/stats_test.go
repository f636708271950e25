package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumAmounts(t *testing.T) {
	assert.Equal(t, 0.0, SumAmounts(nil))
	assert.InDelta(t, 37.5, SumAmounts([]Transaction{
		{Amount: 10},
		{Amount: 25},
		{Amount: 2.5},
	}), 1e-9)
}

func TestSummarizeTransactions(t *testing.T) {
	s := SummarizeTransactions([]Transaction{
		{Amount: 100, Status: TxCompleted},
		{Amount: 50, Status: TxCompleted},
		{Amount: 20, Status: TxPending},
		{Amount: 5, Status: TxFailed},
		{Amount: 1, Status: TransactionStatus("refunded")},
	})

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 176, s.TotalAmount, 1e-9)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Failed)
}
