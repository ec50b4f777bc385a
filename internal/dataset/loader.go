package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SnapshotPrefix is the filename prefix the fetch command writes and the
// loader selects on. Filenames embed a YYYYMMDD stamp, so reverse lexical
// order is reverse chronological order.
const (
	SnapshotPrefix    = "daycare_list_"
	SupplementaryFile = "daycare_supplementary.csv"
)

// ErrNoSnapshot is returned when no daycare_list_*.csv exists in the data dir.
var ErrNoSnapshot = eris.New("dataset: no daycare snapshot file found")

// Loader reads facility snapshots from a data directory. Every Load call
// re-reads the current snapshot from disk; nothing is cached across calls.
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LatestSnapshot returns the path of the most recent snapshot file.
func (l *Loader) LatestSnapshot() (string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSnapshot
		}
		return "", eris.Wrap(err, "dataset: read data dir")
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, SnapshotPrefix) && strings.HasSuffix(name, ".csv") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", ErrNoSnapshot
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return filepath.Join(l.dir, names[0]), nil
}

// Load parses the latest snapshot and left-joins the supplementary Places
// file when present. Rows that fail to decode are skipped, not fatal.
func (l *Loader) Load() ([]Facility, error) {
	path, err := l.LatestSnapshot()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open snapshot %s", path)
	}
	defer f.Close() //nolint:errcheck

	facilities, err := decodeFacilities(f)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: decode snapshot %s", path)
	}

	enrichment, err := l.loadEnrichment()
	if err != nil {
		// Enrichment is optional; a broken file degrades to no enrichment.
		zap.L().Warn("dataset: skipping unreadable supplementary file", zap.Error(err))
		enrichment = nil
	}
	if enrichment != nil {
		for i := range facilities {
			if e, ok := enrichment[facilities[i].ID]; ok {
				facilities[i].Enrichment = e
			}
		}
	}

	zap.L().Debug("dataset: snapshot loaded",
		zap.String("path", path),
		zap.Int("facilities", len(facilities)),
		zap.Int("enriched", len(enrichment)),
	)
	return facilities, nil
}

func decodeFacilities(r io.Reader) ([]Facility, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}

	var out []Facility
	for {
		var row Facility
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			zap.L().Debug("dataset: skipping malformed row", zap.Error(err))
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// loadEnrichment reads the supplementary file into a LOC_ID-keyed map.
// A missing file is not an error; it simply means no enrichment data.
func (l *Loader) loadEnrichment() (map[string]*Enrichment, error) {
	path := filepath.Join(l.dir, SupplementaryFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "dataset: open supplementary file")
	}
	defer f.Close() //nolint:errcheck

	cr := csv.NewReader(f)
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read supplementary header")
	}

	out := make(map[string]*Enrichment)
	for {
		var row Enrichment
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			zap.L().Debug("dataset: skipping malformed supplementary row", zap.Error(err))
			continue
		}
		if row.ID == "" {
			continue
		}
		e := row
		out[row.ID] = &e
	}
	return out, nil
}
