package search

import "math"

// walkableMaxMinutes is the walking-distance threshold for the summary.
const walkableMaxMinutes = 15

// Stats summarizes a result set.
type Stats struct {
	Total           int `json:"total"`
	WalkingDistance int `json:"walking_distance"`
	CWELCCCount     int `json:"cwelcc_count"`
	CWELCCPercent   int `json:"cwelcc_percent"`
	SubsidyCount    int `json:"subsidy_count"`
	SubsidyPercent  int `json:"subsidy_percent"`
	TotalSpaces     int `json:"total_spaces"`
}

// Aggregate computes summary statistics over ranked results. An empty input
// yields the zero Stats, with percentages defined as 0.
func Aggregate(results []Result) Stats {
	st := Stats{Total: len(results)}
	if st.Total == 0 {
		return st
	}

	for i := range results {
		r := &results[i]

		if mins, ok := ParseDuration(r.WalkTime); ok && mins <= walkableMaxMinutes {
			st.WalkingDistance++
		}
		if r.CWELCC {
			st.CWELCCCount++
		}
		if r.Subsidy {
			st.SubsidyCount++
		}
		st.TotalSpaces += r.Capacity
	}

	st.CWELCCPercent = percent(st.CWELCCCount, st.Total)
	st.SubsidyPercent = percent(st.SubsidyCount, st.Total)
	return st
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
