// Package enrich joins Google Places details onto the facility snapshot and
// writes the supplementary file the search path left-joins at load time.
package enrich

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/dataset"
	"github.com/findmydaycare/daycare-server/pkg/places"
)

// Summary reports what one enrichment run did.
type Summary struct {
	Facilities int
	LookedUp   int
	Reused     int
	High       int
	NoMatch    int
	Failed     int
}

// Enricher drives Places lookups over the current snapshot.
type Enricher struct {
	places places.Client
	loader *dataset.Loader
	dir    string
}

// New creates an Enricher writing into dir.
func New(p places.Client, l *dataset.Loader, dir string) *Enricher {
	return &Enricher{places: p, loader: l, dir: dir}
}

// Run looks up every facility in the latest snapshot and rewrites the
// supplementary file. Facilities that already carry a high-confidence match
// are reused untouched unless refresh is set; individual lookup failures are
// logged and skipped, never fatal.
func (e *Enricher) Run(ctx context.Context, refresh bool) (*Summary, error) {
	facilities, err := e.loader.Load()
	if err != nil {
		return nil, err
	}

	sum := &Summary{Facilities: len(facilities)}
	rows := make([]dataset.Enrichment, 0, len(facilities))

	for i := range facilities {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "enrich: cancelled")
		}
		f := &facilities[i]

		if !refresh && f.Enrichment != nil && f.Enrichment.MatchConfidence == places.ConfidenceHigh {
			rows = append(rows, *f.Enrichment)
			sum.Reused++
			sum.High++
			continue
		}

		q := places.Query{Name: f.Name, Address: f.Address, PostalCode: f.PostalCode}
		if lat, lon, ok := dataset.ParsePoint(f.Geometry); ok {
			q.Lat, q.Lon, q.HasCoord = lat, lon, true
		}

		det, err := e.places.Lookup(ctx, q)
		if err != nil {
			zap.L().Warn("enrich: lookup failed",
				zap.String("id", f.ID),
				zap.String("name", f.Name),
				zap.Error(err),
			)
			sum.Failed++
			// Keep whatever we knew before rather than losing it.
			if f.Enrichment != nil {
				rows = append(rows, *f.Enrichment)
			}
			continue
		}
		sum.LookedUp++

		row := dataset.Enrichment{ID: f.ID, MatchConfidence: det.Confidence}
		if det.Confidence == places.ConfidenceHigh {
			sum.High++
			row.Website = det.Website
			row.Rating = det.Rating
			row.ReviewsCount = det.ReviewsCount
			row.MapsURL = det.MapsURL
			row.Phone = det.Phone
		} else {
			sum.NoMatch++
		}
		rows = append(rows, row)
	}

	if err := e.writeRows(rows); err != nil {
		return nil, err
	}

	zap.L().Info("enrichment complete",
		zap.Int("facilities", sum.Facilities),
		zap.Int("looked_up", sum.LookedUp),
		zap.Int("reused", sum.Reused),
		zap.Int("high_confidence", sum.High),
		zap.Int("no_match", sum.NoMatch),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

// writeRows replaces the supplementary file atomically.
func (e *Enricher) writeRows(rows []dataset.Enrichment) error {
	final := filepath.Join(e.dir, dataset.SupplementaryFile)
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return eris.Wrap(err, "enrich: create supplementary file")
	}

	cw := csv.NewWriter(f)
	enc := csvutil.NewEncoder(cw)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			f.Close()          //nolint:errcheck
			_ = os.Remove(tmp) //nolint:errcheck
			return eris.Wrap(err, "enrich: encode row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()          //nolint:errcheck
		_ = os.Remove(tmp) //nolint:errcheck
		return eris.Wrap(err, "enrich: flush supplementary file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "enrich: close supplementary file")
	}

	if err := os.Rename(tmp, final); err != nil {
		return eris.Wrap(err, "enrich: finalize supplementary file")
	}
	return nil
}
