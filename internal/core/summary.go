package core

import (
	"log/slog"
	"sort"
	"time"
)

const (
	topCategoryLimit       = 3
	recentTransactionLimit = 5
)

// CategoryTotal is an accumulated expense total for one category name.
type CategoryTotal struct {
	Name  string
	Total Money
}

// Summary is the aggregated dashboard view of a user's transactions.
// It is computed fresh on every request and never persisted.
type Summary struct {
	TotalIncome   Money
	TotalExpenses Money
	NetBalance    Money

	CurrentMonthIncome   Money
	CurrentMonthExpenses Money
	CurrentMonthBalance  Money

	CurrentYearSavings     Money
	CurrentYearSavingsRate Percent

	TwelveMonthAverageExpense Money

	// RecentTransactions holds at most the 5 most recent transactions,
	// newest first. TopSpendingCategories holds at most the 3 largest
	// expense categories, largest first, ties in encounter order.
	RecentTransactions    []Transaction
	TopSpendingCategories []CategoryTotal

	GeneratedAt time.Time
}

// summaryAccumulator carries the running totals of a single aggregation pass.
// It is local to one ComputeSummary call, so partial accumulators could later
// be folded in parallel and merged without changing the observable result.
type summaryAccumulator struct {
	totalIncome   int64
	totalExpenses int64

	monthIncome   int64
	monthExpenses int64

	yearIncome   int64
	yearExpenses int64

	categoryTotals map[string]int64
	categoryOrder  []string

	// monthlyExpenses buckets absolute expense cents by year*12+month for
	// the trailing window that excludes the current month.
	monthlyExpenses map[int]int64

	firstOfMonth time.Time
	lastOfMonth  time.Time
	year         int
	windowStart  int // inclusive year-month index
	currentYM    int // exclusive upper bound
}

func newSummaryAccumulator(asOf time.Time) *summaryAccumulator {
	firstOfMonth := NewDate(asOf.Year(), asOf.Month(), 1)
	windowStart := firstOfMonth.AddDate(0, -11, 0)
	return &summaryAccumulator{
		categoryTotals:  make(map[string]int64),
		monthlyExpenses: make(map[int]int64),
		firstOfMonth:    firstOfMonth,
		lastOfMonth:     firstOfMonth.AddDate(0, 1, -1),
		year:            asOf.Year(),
		windowStart:     yearMonthIndex(windowStart),
		currentYM:       yearMonthIndex(firstOfMonth),
	}
}

func yearMonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func (a *summaryAccumulator) observe(tx Transaction) {
	amount := tx.Amount.Cents
	date := tx.Date

	// Lifetime totals and per-category expense accumulation.
	if amount > 0 {
		a.totalIncome += amount
	} else {
		expense := -amount
		a.totalExpenses += expense
		if _, seen := a.categoryTotals[tx.CategoryName]; !seen {
			a.categoryOrder = append(a.categoryOrder, tx.CategoryName)
		}
		a.categoryTotals[tx.CategoryName] += expense
	}

	// Current calendar month, first through last day inclusive.
	if !date.Before(a.firstOfMonth) && !date.After(a.lastOfMonth) {
		if amount > 0 {
			a.monthIncome += amount
		} else {
			a.monthExpenses += -amount
		}
	}

	// Current calendar year.
	if date.Year() == a.year {
		if amount > 0 {
			a.yearIncome += amount
		} else {
			a.yearExpenses += -amount
		}
	}

	// Trailing 12-month expense buckets, current month excluded.
	if amount < 0 {
		ym := yearMonthIndex(date)
		if ym >= a.windowStart && ym < a.currentYM {
			a.monthlyExpenses[ym] += -amount
		}
	}
}

func (a *summaryAccumulator) finalize() Summary {
	s := Summary{
		TotalIncome:          Money{Cents: a.totalIncome},
		TotalExpenses:        Money{Cents: a.totalExpenses},
		NetBalance:           Money{Cents: a.totalIncome - a.totalExpenses},
		CurrentMonthIncome:   Money{Cents: a.monthIncome},
		CurrentMonthExpenses: Money{Cents: a.monthExpenses},
		CurrentMonthBalance:  Money{Cents: a.monthIncome - a.monthExpenses},
		CurrentYearSavings:   Money{Cents: a.yearIncome - a.yearExpenses},
	}

	// Savings as a ratio rounded half-up to four fractional digits, then
	// expressed as a percentage. Zero income short-circuits to zero.
	if a.yearIncome > 0 {
		s.CurrentYearSavingsRate = Percent{
			BasisPoints: divHalfUp((a.yearIncome-a.yearExpenses)*10000, a.yearIncome),
		}
	}

	// Average over months that actually carry an expense, not over 12.
	if len(a.monthlyExpenses) > 0 {
		var sum int64
		for _, cents := range a.monthlyExpenses {
			sum += cents
		}
		s.TwelveMonthAverageExpense = Money{Cents: divHalfUp(sum, int64(len(a.monthlyExpenses)))}
	}

	if len(a.categoryOrder) > 0 {
		ranked := make([]CategoryTotal, 0, len(a.categoryOrder))
		for _, name := range a.categoryOrder {
			ranked = append(ranked, CategoryTotal{Name: name, Total: Money{Cents: a.categoryTotals[name]}})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Total.Cents > ranked[j].Total.Cents
		})
		if len(ranked) > topCategoryLimit {
			ranked = ranked[:topCategoryLimit]
		}
		s.TopSpendingCategories = ranked
	}

	return s
}

// ComputeSummary aggregates the complete transaction set of one user into a
// Summary as of the given date. It is a pure function of its arguments: the
// caller supplies the full, unpaginated set and an injectable clock reading.
//
// Zero-amount transactions violate a creation-time invariant; they are
// flagged and skipped rather than failing the whole aggregation.
func ComputeSummary(transactions []Transaction, asOf time.Time) Summary {
	acc := newSummaryAccumulator(asOf)

	valid := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Amount.IsZero() {
			slog.Warn("skipping zero-amount transaction in summary",
				"transaction_id", tx.ID,
				"user_id", tx.UserID)
			continue
		}
		acc.observe(tx)
		valid = append(valid, tx)
	}

	summary := acc.finalize()
	summary.RecentTransactions = recentTransactions(valid)
	summary.GeneratedAt = time.Now()
	return summary
}

// recentTransactions returns up to the 5 newest dated transactions without
// mutating the input slice.
func recentTransactions(transactions []Transaction) []Transaction {
	dated := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !tx.Date.IsZero() {
			dated = append(dated, tx)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.After(dated[j].Date)
	})
	if len(dated) > recentTransactionLimit {
		dated = dated[:recentTransactionLimit]
	}
	return dated
}
