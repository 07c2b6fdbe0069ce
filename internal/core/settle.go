package core

import "math"

// settleEpsilon is the noise floor for settlement arithmetic: balances within
// a cent of zero are treated as settled.
const settleEpsilon = 0.01

// Settlements reduces a balance mapping to a short list of payer-to-payee
// transactions. people fixes the partition order (insertion order of the
// balance mapping); there is no sorting by magnitude.
//
// The walk is a greedy two-pointer match: the current debtor pays the current
// creditor min(creditorRemaining, -debtorRemaining), and each cursor advances
// independently once its remaining balance is within a cent of zero. A single
// debtor can therefore pay several creditors and vice versa.
//
// This is not a minimum-transaction solver (that problem is NP-hard); it
// guarantees at most len(debtors)+len(creditors)-1 transactions, which is
// minimal enough in practice. Any residual imbalance, near zero when the
// input sums to zero, is dropped.
func Settlements(balances map[string]float64, people []string) []Settlement {
	type position struct {
		person  string
		balance float64
	}

	var creditors, debtors []position
	for _, p := range people {
		b := balances[p]
		if math.Abs(b) <= settleEpsilon {
			continue
		}
		if b > 0 {
			creditors = append(creditors, position{p, b})
		} else {
			debtors = append(debtors, position{p, b})
		}
	}

	settlements := []Settlement{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := math.Min(creditor.balance, -debtor.balance)
		settlements = append(settlements, Settlement{
			From:   debtor.person,
			To:     creditor.person,
			Amount: Round2(amount),
		})

		debtor.balance += amount
		creditor.balance -= amount

		if math.Abs(debtor.balance) < settleEpsilon {
			i++
		}
		if math.Abs(creditor.balance) < settleEpsilon {
			j++
		}
	}

	return settlements
}
