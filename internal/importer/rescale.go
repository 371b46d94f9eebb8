package importer

import "math"

// RescaleTaskOffsets linearly maps the day offsets of items onto
// [1, targetTotalWorkDays]. The first offset lands on 1 and the last on the
// target, so short plans are stretched and long ones compressed. Rounding can
// put two items on the same day.
//
// Items without an offset are copied through and ignored when measuring the
// plan. The input is returned unchanged when the plan spans a single day,
// already spans exactly the target, or the target is below 1.
func RescaleTaskOffsets(items []PlanItem, targetTotalWorkDays int) []PlanItem {
	minOffset, maxOffset, ok := offsetRange(items)
	if !ok || targetTotalWorkDays < 1 {
		return items
	}
	aiSpan := max(1, maxOffset-minOffset+1)
	if aiSpan == 1 || aiSpan == targetTotalWorkDays {
		return items
	}

	out := make([]PlanItem, len(items))
	for i, item := range items {
		out[i] = item
		offset, ok := item.Offset()
		if !ok {
			continue
		}
		rel := float64(offset-minOffset) / float64(aiSpan-1)
		scaled := 1 + math.Round(rel*float64(targetTotalWorkDays-1))
		out[i].DayOffset = &scaled
	}
	return out
}

func offsetRange(items []PlanItem) (lo, hi int, ok bool) {
	for _, item := range items {
		offset, has := item.Offset()
		if !has {
			continue
		}
		if !ok {
			lo, hi, ok = offset, offset, true
			continue
		}
		lo = min(lo, offset)
		hi = max(hi, offset)
	}
	return lo, hi, ok
}
