package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// dueDates steps n due dates from the disbursement date. Monthly steps keep
// the disbursement day of month and clamp to the last day of shorter months.
func dueDates(start time.Time, frequency enums.RepaymentFrequency, n int) ([]time.Time, error) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	opt := rrule.ROption{
		Dtstart: start,
		Count:   n + 1,
	}
	switch frequency {
	case enums.RepaymentFrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case enums.RepaymentFrequencyMonthly:
		opt.Freq = rrule.MONTHLY
		day := start.Day()
		if day <= 28 {
			opt.Bymonthday = []int{day}
		} else {
			for d := 28; d <= day; d++ {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
			opt.Bysetpos = []int{-1}
		}
	default:
		return nil, fmt.Errorf("unsupported repayment frequency %q", frequency)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence: %w", err)
	}

	dates := make([]time.Time, 0, n)
	for _, occurrence := range rule.All() {
		if !occurrence.After(start) {
			continue
		}
		dates = append(dates, occurrence)
		if len(dates) == n {
			break
		}
	}
	if len(dates) != n {
		return nil, fmt.Errorf("recurrence produced %d of %d due dates", len(dates), n)
	}
	return dates, nil
}
