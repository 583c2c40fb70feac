package project

import "math"

// ComputeStats derives aggregate counts from a collection. Completed, in
// progress and not started partition the collection by progress.
func ComputeStats(projects []Project) Stats {
	st := Stats{
		Total:      len(projects),
		ByStatus:   make(map[string]int, len(statuses)),
		ByPriority: make(map[Priority]int, 4),
	}
	for _, s := range statuses {
		st.ByStatus[s.ID] = 0
	}
	for _, p := range Priorities() {
		st.ByPriority[p] = 0
	}

	sum := 0
	for _, p := range projects {
		switch {
		case p.Progress >= 100:
			st.Completed++
		case p.Progress <= 0:
			st.NotStarted++
		default:
			st.InProgress++
		}
		sum += min(max(p.Progress, 0), 100)
		st.ByStatus[p.Status.ID]++
		st.ByPriority[p.Priority]++
	}
	if st.Total > 0 {
		st.AvgProgress = int(math.Round(float64(sum) / float64(st.Total)))
	}
	return st
}
