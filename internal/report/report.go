// Package report computes chart-ready aggregates from persisted time entries.
package report

import (
	"fmt"
	"sync"

	"github.com/minhnd/timespent/internal/store"
)

// Aggregator is the read-only slice of the store used for reporting.
type Aggregator interface {
	TimeSpentByMonth(userEmail, month string) (int64, error)
	TimeSpentByYear(userEmail, year string) (int64, error)
	ListEntriesByMonth(userEmail, month string) ([]store.TimeEntry, error)
}

// MonthTotal is the total time logged in one month.
type MonthTotal struct {
	Month        string // "YYYY-MM"
	TotalSeconds int64
}

// Yearly returns a dense 12-month series for the given year ("YYYY").
// Each month is a separate aggregate query; the twelve queries are
// independent, so they are dispatched concurrently and joined. Months
// without entries carry an explicit zero, so chart consumers get a
// gap-free series.
func Yearly(agg Aggregator, userEmail, year string) ([]MonthTotal, error) {
	totals := make([]MonthTotal, 12)
	errs := make([]error, 12)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			month := fmt.Sprintf("%s-%02d", year, i+1)
			total, err := agg.TimeSpentByMonth(userEmail, month)
			totals[i] = MonthTotal{Month: month, TotalSeconds: total}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return totals, nil
}

// DayTotal is the total time logged on one day.
type DayTotal struct {
	Day          string // "YYYY-MM-DD"
	TotalSeconds int64
}

// DailyTotals groups a month's entries into per-day totals, ordered by
// day. Days without entries are omitted; entries are expected in
// ascending spent-at order as returned by the store.
func DailyTotals(entries []store.TimeEntry) []DayTotal {
	var totals []DayTotal
	for _, entry := range entries {
		day := entry.SpentAt.UTC().Format("2006-01-02")
		if n := len(totals); n > 0 && totals[n-1].Day == day {
			totals[n-1].TotalSeconds += entry.TimeSpent
			continue
		}
		totals = append(totals, DayTotal{Day: day, TotalSeconds: entry.TimeSpent})
	}
	return totals
}

// Stats summarizes one month of entries: total time, distinct issues,
// average time per issue, and an income estimate from the configured
// rates.
type Stats struct {
	TotalSeconds   int64
	Issues         int
	AverageSeconds int64 // per issue
	IncomeUSD      float64
	IncomeVND      float64
}

// MonthlyStats computes summary statistics over a month's entries.
// hourlyRate is in USD per hour; exchangeRate converts USD to VND.
func MonthlyStats(entries []store.TimeEntry, hourlyRate, exchangeRate float64) Stats {
	var stats Stats
	issues := make(map[int64]struct{})
	for _, entry := range entries {
		stats.TotalSeconds += entry.TimeSpent
		issues[entry.IssueID] = struct{}{}
	}
	stats.Issues = len(issues)
	if stats.Issues > 0 {
		stats.AverageSeconds = stats.TotalSeconds / int64(stats.Issues)
	}

	hours := float64(stats.TotalSeconds) / 3600
	stats.IncomeUSD = hours * hourlyRate
	stats.IncomeVND = stats.IncomeUSD * exchangeRate

	return stats
}
