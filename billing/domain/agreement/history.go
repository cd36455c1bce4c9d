// Package agreement merges a licence's statutory agreement history
// into a partition of a charge period. The resulting sub-periods are
// contiguous, non-overlapping and exhaustive over the input period;
// each carries the set of agreements active throughout it.
package agreement

import (
	"sort"
	"time"

	"github.com/DEFRA/water-abstraction-service-sub009/billing/model"
)

// clamped is an agreement reduced to its overlap with the base period.
type clamped struct {
	agreement model.ChargeAgreement
	window    model.DateRange
}

// MergeHistory splits the charge period at every boundary introduced by
// the licence's agreements and tags each slice with its active set.
//
// Each agreement type has an independent timeline. When two agreements
// of the same type are active on the same day, the later-starting one
// wins from the shared boundary onward; this keeps the merge
// deterministic regardless of input order.
func MergeHistory(chargePeriod model.DateRange, history []model.ChargeAgreement) []model.AgreementPeriod {
	active := clampHistory(chargePeriod, history)

	boundaries := collectBoundaries(chargePeriod, active)

	periods := make([]model.AgreementPeriod, 0, len(boundaries))
	for i := 0; i < len(boundaries)-1; i++ {
		slice := model.DateRange{
			StartDate: boundaries[i],
			EndDate:   boundaries[i+1].AddDate(0, 0, -1),
		}
		periods = append(periods, model.AgreementPeriod{
			DateRange:  slice,
			Agreements: activeAgreements(slice, active),
		})
	}
	return periods
}

// clampHistory discards deleted agreements, clamps the rest to the
// charge period and drops any that do not overlap it. Open-ended
// agreements extend to the period's end.
func clampHistory(chargePeriod model.DateRange, history []model.ChargeAgreement) []clamped {
	out := make([]clamped, 0, len(history))
	for _, a := range history {
		if a.DateDeleted != nil {
			continue
		}
		end := chargePeriod.EndDate
		if a.EndDate != nil {
			end = model.TruncateDay(*a.EndDate)
		}
		window, ok := chargePeriod.Intersect(model.DateRange{
			StartDate: model.TruncateDay(a.StartDate),
			EndDate:   end,
		})
		if !ok {
			continue
		}
		out = append(out, clamped{agreement: a, window: window})
	}
	return out
}

// collectBoundaries returns the sorted, de-duplicated slice starts: the
// period start, every agreement start, and the day after every
// agreement end (a slice begins where an agreement stops applying).
// The final entry is the day after the period end, closing the last
// slice.
func collectBoundaries(chargePeriod model.DateRange, active []clamped) []time.Time {
	seen := map[time.Time]bool{}
	boundaries := []time.Time{chargePeriod.StartDate}
	seen[chargePeriod.StartDate] = true

	add := func(t time.Time) {
		if !seen[t] && chargePeriod.Contains(t) {
			seen[t] = true
			boundaries = append(boundaries, t)
		}
	}
	for _, c := range active {
		add(c.window.StartDate)
		add(c.window.EndDate.AddDate(0, 0, 1))
	}

	boundaries = append(boundaries, chargePeriod.EndDate.AddDate(0, 0, 1))
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })
	return boundaries
}

// activeAgreements resolves the agreement set covering a slice. Within
// a type, the agreement with the latest start wins.
func activeAgreements(slice model.DateRange, active []clamped) []model.AppliedAgreement {
	winner := map[model.AgreementCode]clamped{}
	for _, c := range active {
		if !c.window.Contains(slice.StartDate) {
			continue
		}
		current, ok := winner[c.agreement.Code]
		if !ok || c.window.StartDate.After(current.window.StartDate) {
			winner[c.agreement.Code] = c
		}
	}

	codes := make([]model.AgreementCode, 0, len(winner))
	for code := range winner {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	out := make([]model.AppliedAgreement, 0, len(codes))
	for _, code := range codes {
		out = append(out, model.AppliedAgreement{
			Code:   code,
			Factor: winner[code].agreement.Factor,
		})
	}
	return out
}
