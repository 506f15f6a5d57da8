package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
)

// defaultReportDays is the day denominator of per-day KPIs when no period is selected
const defaultReportDays = 30

// ReportSelector is the raw period query of a report. Empty fields are absent.
type ReportSelector struct {
	From  string
	To    string
	Year  string
	Month string
}

// normalized trims every field so selectors that resolve to the same period
// also share a cache key
func (sel ReportSelector) normalized() ReportSelector {
	return ReportSelector{
		From:  strings.TrimSpace(sel.From),
		To:    strings.TrimSpace(sel.To),
		Year:  strings.TrimSpace(sel.Year),
		Month: strings.TrimSpace(sel.Month),
	}
}

// Period is a resolved report selector
type Period struct {
	// Range is nil for an all-time report
	Range *repository.DateRange
	// Previous is the period growth is measured against; nil when there is none
	Previous   *repository.DateRange
	Days       int
	TargetYear int
}

// ResolvePeriod turns a selector into concrete instants in loc. An explicit
// from/to pair wins over year/month; a lone from or to is ignored.
func ResolvePeriod(sel ReportSelector, loc *time.Location, now time.Time) (*Period, error) {
	period := &Period{
		Days:       defaultReportDays,
		TargetYear: now.In(loc).Year(),
	}

	sel = sel.normalized()
	from, to := sel.From, sel.To
	year, month := sel.Year, sel.Month

	switch {
	case from != "" && to != "":
		start, err := parseDay(from, loc, "from")
		if err != nil {
			return nil, err
		}
		end, err := parseDay(to, loc, "to")
		if err != nil {
			return nil, err
		}
		end = endOfDay(end)
		if end.Before(start) {
			return nil, apperror.NewFieldError("to", "to must not be before from")
		}

		period.Range = &repository.DateRange{From: start, To: end}
		length := end.Sub(start)
		prevEnd := start.Add(-time.Millisecond)
		period.Previous = &repository.DateRange{From: prevEnd.Add(-length), To: prevEnd}

	case year != "":
		// "2025-04" carries its own month
		if y, m, ok := strings.Cut(year, "-"); ok {
			year = y
			if month != "all" {
				month = m
			}
		}

		y, err := strconv.Atoi(year)
		if err != nil || y < 1 || y > 9999 {
			return nil, apperror.NewFieldError("year", "year must be a calendar year like 2025")
		}
		period.TargetYear = y

		if month != "" && month != "all" {
			m, err := strconv.Atoi(month)
			if err != nil || m < 1 || m > 12 {
				return nil, apperror.NewFieldError("month", "month must be between 1 and 12 or \"all\"")
			}
			period.Range = monthRange(y, time.Month(m), loc)
			period.Previous = monthRange(y, time.Month(m-1), loc)
		} else {
			period.Range = YearRange(y, loc)
			period.Previous = YearRange(y-1, loc)
		}
	}

	if period.Range != nil {
		days := math.Ceil(period.Range.To.Sub(period.Range.From).Hours() / 24)
		period.Days = int(math.Max(1, days))
	}

	return period, nil
}

// YearRange covers the calendar year y in loc
func YearRange(y int, loc *time.Location) *repository.DateRange {
	return &repository.DateRange{
		From: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
		To:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, loc)),
	}
}

// monthRange covers month m of year y; time.Date normalizes m = 0 to December of y-1
func monthRange(y int, m time.Month, loc *time.Location) *repository.DateRange {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, loc)
	return &repository.DateRange{From: first, To: endOfDay(last)}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// parseDay accepts a calendar date (2006-01-02) or a full RFC 3339 instant
func parseDay(raw string, loc *time.Location, field string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, apperror.NewFieldError(field, field+" must be a date like 2006-01-02")
}
