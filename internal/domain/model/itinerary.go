package model

// ScheduleConflict is an unordered pair of same-day performances whose time
// ranges overlap.
type ScheduleConflict struct {
	Day            string      `json:"day"`
	A              Performance `json:"a"`
	B              Performance `json:"b"`
	OverlapMinutes int         `json:"overlapMinutes"`
}

// ItineraryDay holds the admitted performances for one festival day in
// admission order.
type ItineraryDay struct {
	Day          string              `json:"day"`
	Slots        []ScoredPerformance `json:"slots"`
	MustSeeCount int                 `json:"mustSeeCount"`
}

// Itinerary is a per-request plan across the festival days.
type Itinerary struct {
	Days      []ItineraryDay     `json:"days"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// SlotCount returns the number of admitted performances across all days.
func (it *Itinerary) SlotCount() int {
	n := 0
	for _, d := range it.Days {
		n += len(d.Slots)
	}
	return n
}
