package ledger

import (
	"fmt"
	"strings"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
)

// Totals sums local-currency amounts split by record type. Amounts are
// assumed already normalized, so no conversion happens here.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

// YearTotals is a yearly sum plus the per-month breakdown, months 1-12.
type YearTotals struct {
	Year     int        `json:"year"`
	Totals   Totals     `json:"totals"`
	PerMonth [12]Totals `json:"perMonth"`
}

func (t *Totals) add(rec record.Record) {
	switch rec.Type {
	case record.TypeIncome:
		t.Income += rec.AmountLocal
	default:
		t.Expense += rec.AmountLocal
	}
	t.Net = t.Income - t.Expense
}

// MonthlyTotals sums records whose date carries the yearMonth ("YYYY-MM")
// prefix.
func MonthlyTotals(records []record.Record, yearMonth string) Totals {
	var totals Totals
	for _, rec := range records {
		if strings.HasPrefix(rec.Date, yearMonth) {
			totals.add(rec)
		}
	}
	return totals
}

// YearlyTotals sums a whole year; the PerMonth entries add up to Totals.
func YearlyTotals(records []record.Record, year int) YearTotals {
	res := YearTotals{Year: year}
	for month := 1; month <= 12; month++ {
		prefix := fmt.Sprintf("%04d-%02d", year, month)
		res.PerMonth[month-1] = MonthlyTotals(records, prefix)
	}
	for _, m := range res.PerMonth {
		res.Totals.Income += m.Income
		res.Totals.Expense += m.Expense
	}
	res.Totals.Net = res.Totals.Income - res.Totals.Expense
	return res
}
