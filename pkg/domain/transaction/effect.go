package transaction

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Delta is a signed balance movement on one account.
type Delta struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// SourceDelta returns the movement a completed transaction applies to its source account.
func SourceDelta(typ Type, amount, fee decimal.Decimal) decimal.Decimal {
	if typ == TypeIncome {
		return amount.Sub(fee)
	}
	return amount.Add(fee).Neg()
}

// Deltas returns the balance movements t currently stands for. Only a
// completed transaction with a source account has any.
func (t *Transaction) Deltas() []Delta {
	if t.Status != StatusCompleted || t.AccountID == nil {
		return nil
	}
	ds := []Delta{{AccountID: *t.AccountID, Amount: SourceDelta(t.Type, t.Amount, t.Fee)}}
	if t.Type == TypeTransfer && t.ToAccountID != nil {
		ds = append(ds, Delta{AccountID: *t.ToAccountID, Amount: t.Amount})
	}
	return ds
}

// Inverse negates every movement in ds.
func Inverse(ds []Delta) []Delta {
	out := make([]Delta, 0, len(ds))
	for _, d := range ds {
		out = append(out, Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()})
	}
	return out
}

// Balances folds the movements of txs into a per-account total. It is the
// ground-truth balance for a transaction history.
func Balances(txs []*Transaction) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, t := range txs {
		for _, d := range t.Deltas() {
			out[d.AccountID] = out[d.AccountID].Add(d.Amount)
		}
	}
	return out
}
