package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_Empty(t *testing.T) {
	st := Aggregate(nil)
	assert.Equal(t, Stats{}, st)
}

func TestAggregate(t *testing.T) {
	results := []Result{
		{Capacity: 10, CWELCC: true, Subsidy: true, WalkTime: "8 mins"},
		{Capacity: 5, CWELCC: true, WalkTime: "15 mins"},
		{Capacity: 20, WalkTime: "22 mins"},
		{Capacity: 7, Subsidy: true, WalkTime: "N/A"},
	}

	st := Aggregate(results)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 42, st.TotalSpaces)

	// 15 mins is still walkable; 22 mins and N/A are not.
	assert.Equal(t, 2, st.WalkingDistance)

	assert.Equal(t, 2, st.CWELCCCount)
	assert.Equal(t, 50, st.CWELCCPercent)
	assert.Equal(t, 2, st.SubsidyCount)
	assert.Equal(t, 50, st.SubsidyPercent)
}

func TestAggregate_PercentRounding(t *testing.T) {
	results := []Result{
		{CWELCC: true}, {}, {},
	}
	st := Aggregate(results)
	// 1/3 rounds to 33, not truncates to 33.33.
	assert.Equal(t, 33, st.CWELCCPercent)

	results = []Result{
		{CWELCC: true}, {CWELCC: true}, {},
	}
	st = Aggregate(results)
	// 2/3 rounds to 67.
	assert.Equal(t, 67, st.CWELCCPercent)
}

func TestAggregate_ZeroMinuteWalkCounts(t *testing.T) {
	st := Aggregate([]Result{{WalkTime: "0 mins"}})
	assert.Equal(t, 1, st.WalkingDistance)
}
