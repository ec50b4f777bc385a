// Package search implements the core daycare search: geocode the caller's
// address, filter the facility snapshot by age-bracket capacity and
// straight-line distance, rank by distance, annotate with travel times, and
// summarize.
package search

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/agegroup"
	"github.com/findmydaycare/daycare-server/internal/dataset"
	"github.com/findmydaycare/daycare-server/pkg/distancematrix"
	"github.com/findmydaycare/daycare-server/pkg/geocode"
)

const (
	// RadiusKM is the fixed straight-line search radius.
	RadiusKM = 5.0

	// travelTimeLimit caps how many of the nearest results get travel-time
	// annotations, bounding outbound Distance Matrix traffic.
	travelTimeLimit = 20
)

// ErrAddressNotFound is returned when the geocoder cannot resolve the search
// address to a precise street-level Toronto location.
var ErrAddressNotFound = eris.New("search: address not found")

// Request is one search as submitted by the caller. StartDate zero means
// "now".
type Request struct {
	Address   string
	Birthday  time.Time
	StartDate time.Time
}

// Result is one qualifying facility, decorated for presentation.
type Result struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	PostalCode    string  `json:"postal_code"`
	Phone         string  `json:"phone"`
	DistanceKM    float64 `json:"distance_km"`
	Capacity      int     `json:"capacity"`
	TotalSpaces   int     `json:"total_spaces"`
	Subsidy       bool    `json:"subsidy"`
	CWELCC        bool    `json:"cwelcc"`
	AgeGroupLabel string  `json:"age_group_label"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`

	InfantSpaces       int `json:"infant_spaces"`
	ToddlerSpaces      int `json:"toddler_spaces"`
	PreschoolSpaces    int `json:"preschool_spaces"`
	KindergartenSpaces int `json:"kindergarten_spaces"`
	SchoolAgeSpaces    int `json:"schoolage_spaces"`

	Website      string   `json:"website,omitempty"`
	Rating       *float64 `json:"google_rating,omitempty"`
	ReviewsCount *int     `json:"google_reviews_count,omitempty"`
	MapsURL      string   `json:"google_maps_url,omitempty"`

	WalkTime    string `json:"walk_time"`
	TransitTime string `json:"transit_time"`
	DriveTime   string `json:"drive_time"`
}

// Response is the full search outcome handed to the presentation layer.
type Response struct {
	Address       string   `json:"address"`
	UserLat       float64  `json:"user_lat"`
	UserLon       float64  `json:"user_lon"`
	RadiusKM      float64  `json:"radius_km"`
	AgeDisplay    string   `json:"age_display"`
	AgeGroupLabel string   `json:"age_group_label"`
	Results       []Result `json:"results"`
	Stats         Stats    `json:"stats"`
}

// Service wires the geocoder, travel-time client, and dataset loader behind
// the search operation. Both clients are interfaces so tests run on fakes.
type Service struct {
	geocoder geocode.Client
	travel   distancematrix.Client
	loader   *dataset.Loader
}

// NewService creates a search Service.
func NewService(g geocode.Client, tm distancematrix.Client, l *dataset.Loader) *Service {
	return &Service{geocoder: g, travel: tm, loader: l}
}

// Search runs one complete search. It aborts on an unresolvable address
// (ErrAddressNotFound) or a missing dataset snapshot; everything else
// degrades per row or per annotation.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	ref := req.StartDate
	if ref.IsZero() {
		ref = time.Now()
	}

	months := agegroup.MonthsBetween(req.Birthday, ref)
	bracket := agegroup.ForMonths(months)

	loc, err := s.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		zap.L().Warn("search: geocode failed", zap.Error(err))
		return nil, ErrAddressNotFound
	}
	if loc == nil || !loc.Matched {
		return nil, ErrAddressNotFound
	}

	facilities, err := s.loader.Load()
	if err != nil {
		return nil, err
	}

	results := FindNearby(loc.Latitude, loc.Longitude, bracket, facilities)
	s.annotateTravelTimes(ctx, loc.Latitude, loc.Longitude, results)

	zap.L().Info("search complete",
		zap.String("bracket", bracket.Label()),
		zap.Int("age_months", months),
		zap.Int("results", len(results)),
	)

	return &Response{
		Address:       req.Address,
		UserLat:       loc.Latitude,
		UserLon:       loc.Longitude,
		RadiusKM:      RadiusKM,
		AgeDisplay:    agegroup.AgeDisplay(months),
		AgeGroupLabel: bracket.Label(),
		Results:       results,
		Stats:         Aggregate(results),
	}, nil
}

// FindNearby filters facilities to those within RadiusKM of the user with
// open capacity in the bracket, sorted ascending by distance. The sort is
// stable so equidistant facilities keep their dataset order. Rows with
// unparseable geometry or no capacity are skipped, never fatal.
func FindNearby(userLat, userLon float64, bracket agegroup.Bracket, facilities []dataset.Facility) []Result {
	results := make([]Result, 0)

	for i := range facilities {
		f := &facilities[i]

		lat, lon, ok := dataset.ParsePoint(f.Geometry)
		if !ok {
			continue
		}

		km := round2(Haversine(userLat, userLon, lat, lon))
		if km > RadiusKM {
			continue
		}

		capacity := f.Spaces(bracket)
		if capacity <= 0 {
			continue
		}

		r := Result{
			ID:                 f.ID,
			Name:               f.Name,
			Address:            f.Address,
			PostalCode:         f.PostalCode,
			Phone:              f.Phone,
			DistanceKM:         km,
			Capacity:           capacity,
			TotalSpaces:        f.Total(),
			Subsidy:            f.Subsidy(),
			CWELCC:             f.CWELCC(),
			AgeGroupLabel:      bracket.Label(),
			Lat:                lat,
			Lon:                lon,
			InfantSpaces:       f.Spaces(agegroup.Infant),
			ToddlerSpaces:      f.Spaces(agegroup.Toddler),
			PreschoolSpaces:    f.Spaces(agegroup.Preschool),
			KindergartenSpaces: f.Spaces(agegroup.Kindergarten),
			SchoolAgeSpaces:    f.Spaces(agegroup.SchoolAge),
			WalkTime:           Unavailable,
			TransitTime:        Unavailable,
			DriveTime:          Unavailable,
		}
		if e := f.Enrichment; e != nil {
			r.Website = e.Website
			r.Rating = e.Rating
			r.ReviewsCount = e.ReviewsCount
			r.MapsURL = e.MapsURL
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKM < results[j].DistanceKM
	})
	return results
}

// annotateTravelTimes fills walk/transit/drive durations for the nearest
// results. Failures leave the Unavailable marker in place.
func (s *Service) annotateTravelTimes(ctx context.Context, originLat, originLon float64, results []Result) {
	n := len(results)
	if n == 0 {
		return
	}
	if n > travelTimeLimit {
		n = travelTimeLimit
	}

	dests := make([]distancematrix.Coord, n)
	for i := 0; i < n; i++ {
		dests[i] = distancematrix.Coord{Lat: results[i].Lat, Lon: results[i].Lon}
	}

	times, err := s.travel.AllModes(ctx, distancematrix.Coord{Lat: originLat, Lon: originLon}, dests)
	if err != nil {
		zap.L().Warn("search: travel time lookup failed", zap.Error(err))
		return
	}

	for i := 0; i < n && i < len(times); i++ {
		results[i].WalkTime = times[i].Walk
		results[i].TransitTime = times[i].Transit
		results[i].DriveTime = times[i].Drive
	}
}
