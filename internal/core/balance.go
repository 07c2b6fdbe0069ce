package core

// People returns every person appearing as payer or participant across the
// expense set, de-duplicated, in first-appearance order. The order matters:
// it fixes the iteration order for balance partitioning downstream.
func People(expenses []Expense) []string {
	seen := make(map[string]bool)
	people := []string{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		people = append(people, name)
	}

	for _, e := range expenses {
		add(e.PaidBy)
		for _, p := range e.Participants {
			add(p)
		}
	}
	return people
}

// Balances derives each person's net position from the full expense set.
// Positive means the person is owed money, negative means they owe.
//
// Per expense, the payer is credited the full amount and each participant is
// debited their share per the split type. An expense with no stored
// participants falls back to the payer alone. Balances are recomputed from
// scratch on every call; there is no incremental cache.
//
// Each final balance is rounded to two decimals independently, matching the
// per-person display semantics (not summed-then-rounded).
func Balances(expenses []Expense, people []string) map[string]float64 {
	balances := make(map[string]float64, len(people))
	for _, p := range people {
		balances[p] = 0
	}

	for _, e := range expenses {
		participants := e.Participants
		if len(participants) == 0 {
			participants = []string{e.PaidBy}
		}

		balances[e.PaidBy] += e.Amount

		switch e.SplitType {
		case SplitEqual:
			share := e.Amount / float64(len(participants))
			for _, p := range participants {
				balances[p] -= share
			}
		case SplitPercentage:
			for _, p := range participants {
				balances[p] -= e.Amount * (e.SplitValues[p] / 100)
			}
		case SplitExact:
			for _, p := range participants {
				balances[p] -= e.SplitValues[p]
			}
		}
		// An unrecognized split type debits nobody. The validator keeps new
		// records clean; legacy rows keep the behavior they were stored with.
	}

	for p, b := range balances {
		balances[p] = Round2(b)
	}
	return balances
}
