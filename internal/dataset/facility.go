// Package dataset loads the licensed child-care centre snapshot and the
// optional Places enrichment file from disk.
package dataset

import (
	"github.com/findmydaycare/daycare-server/internal/agegroup"
)

// Facility is one licensed child-care centre row from the city dataset.
// Capacity fields are pointers because the source leaves them blank for
// brackets a centre is not licensed for.
type Facility struct {
	ID         string `csv:"LOC_ID"`
	Name       string `csv:"LOC_NAME"`
	Address    string `csv:"ADDRESS"`
	PostalCode string `csv:"PCODE"`
	Phone      string `csv:"PHONE"`

	// Geometry is the raw GeoJSON point as shipped in the CSV. Parsed
	// lazily via ParsePoint so a bad row only costs itself.
	Geometry string `csv:"geometry"`

	InfantSpaces       *int `csv:"IGSPACE"`
	ToddlerSpaces      *int `csv:"TGSPACE"`
	PreschoolSpaces    *int `csv:"PGSPACE"`
	KindergartenSpaces *int `csv:"KGSPACE"`
	SchoolAgeSpaces    *int `csv:"SGSPACE"`
	TotalSpaces        *int `csv:"TOTSPACE"`

	SubsidyFlag string `csv:"subsidy"`
	CWELCCFlag  string `csv:"cwelcc_flag"`

	Enrichment *Enrichment `csv:"-"`
}

// Enrichment holds the optional Places fields joined on LOC_ID.
type Enrichment struct {
	ID              string   `csv:"LOC_ID"`
	Website         string   `csv:"website"`
	Rating          *float64 `csv:"google_rating"`
	ReviewsCount    *int     `csv:"google_reviews_count"`
	MapsURL         string   `csv:"google_maps_url"`
	Phone           string   `csv:"google_phone"`
	MatchConfidence string   `csv:"match_confidence"`
}

// Spaces returns the open capacity for the given bracket, zero when the
// source field is blank.
func (f *Facility) Spaces(b agegroup.Bracket) int {
	var p *int
	switch b {
	case agegroup.Infant:
		p = f.InfantSpaces
	case agegroup.Toddler:
		p = f.ToddlerSpaces
	case agegroup.Preschool:
		p = f.PreschoolSpaces
	case agegroup.Kindergarten:
		p = f.KindergartenSpaces
	case agegroup.SchoolAge:
		p = f.SchoolAgeSpaces
	}
	if p == nil {
		return 0
	}
	return *p
}

// Total returns the total licensed capacity, zero when blank.
func (f *Facility) Total() int {
	if f.TotalSpaces == nil {
		return 0
	}
	return *f.TotalSpaces
}

// Subsidy reports whether the centre has a fee subsidy contract.
func (f *Facility) Subsidy() bool { return f.SubsidyFlag == "Y" }

// CWELCC reports whether the centre is enrolled in the Canada-Wide Early
// Learning and Child Care program.
func (f *Facility) CWELCC() bool { return f.CWELCCFlag == "Y" }
