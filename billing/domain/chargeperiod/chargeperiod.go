// Package chargeperiod intersects licence validity, financial year
// bounds, charge version validity and per-element time limits into the
// concrete date range a charge element is billed over.
package chargeperiod

import (
	"time"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// Calculate resolves the charge period for a charge version within a
// financial year. ok is false when the intersection is empty, in which
// case the charge version produces no transactions for that year.
func Calculate(financialYear model.DateRange, licence *model.Licence, chargeVersion *model.ChargeVersion) (model.DateRange, bool) {
	start := latest(financialYear.StartDate, licence.StartDate, chargeVersion.StartDate)

	end := financialYear.EndDate
	if licence.ExpiredDate != nil && licence.ExpiredDate.Before(end) {
		end = *licence.ExpiredDate
	}
	if chargeVersion.EndDate != nil && chargeVersion.EndDate.Before(end) {
		end = *chargeVersion.EndDate
	}

	if end.Before(start) {
		return model.DateRange{}, false
	}
	return model.DateRange{StartDate: model.TruncateDay(start), EndDate: model.TruncateDay(end)}, true
}

// ForElement narrows a charge period with the element's time-limited
// window. ok is false when the element is excluded entirely.
func ForElement(chargePeriod model.DateRange, element *model.ChargeElement) (model.DateRange, bool) {
	if element.TimeLimited == nil {
		return chargePeriod, true
	}
	return chargePeriod.Intersect(*element.TimeLimited)
}

// AbstractionDays counts the inclusive days within period on which the
// abstraction window is open. Windows crossing the calendar year end
// are handled by extending the window into the following year; leap
// days are counted when they fall inside both period and window.
func AbstractionDays(period model.DateRange, abs model.AbstractionPeriod) int {
	total := 0
	for year := period.StartDate.Year() - 1; year <= period.EndDate.Year(); year++ {
		windowStart := model.Date(year, time.Month(abs.StartMonth), abs.StartDay)
		windowEnd := model.Date(year, time.Month(abs.EndMonth), abs.EndDay)
		if windowEnd.Before(windowStart) {
			windowEnd = model.Date(year+1, time.Month(abs.EndMonth), abs.EndDay)
		}

		window := model.DateRange{StartDate: windowStart, EndDate: windowEnd}
		if overlap, ok := period.Intersect(window); ok {
			total += overlap.Days()
		}
	}
	return total
}

func latest(times ...time.Time) time.Time {
	out := times[0]
	for _, t := range times[1:] {
		if t.After(out) {
			out = t
		}
	}
	return out
}
