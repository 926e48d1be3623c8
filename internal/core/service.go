package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/WorldInfo/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Document names read from a DocumentSource.
const (
	DocCountries         = "countries.json"
	DocGDP               = "gdp.json"
	DocTerritories       = "territories.json"
	DocOfficialLanguages = "wikidata.json"
	DocIndicators        = "indicators.json"
)

// Documents lists every document the service reads, in load order.
var Documents = []string{
	DocCountries,
	DocGDP,
	DocTerritories,
	DocOfficialLanguages,
	DocIndicators,
}

// ChartDefaultLimit is how many rows the chart shows without a selection.
const ChartDefaultLimit = 50

// DefaultLoadTimeout bounds a dataset load started on first use.
const DefaultLoadTimeout = 30 * time.Second

// DocumentSource reads a named static document.
type DocumentSource interface {
	ReadDocument(ctx context.Context, name string) ([]byte, error)
}

// RateSource supplies exchange rates (currency code -> units per USD).
// It must never fail; an unavailable upstream yields stale or empty rates.
type RateSource interface {
	Rates(ctx context.Context) map[string]float64
}

// Dataset is an immutable, parsed snapshot of the static documents.
type Dataset struct {
	Version   string
	LoadedAt  time.Time
	Countries []CountryEntry
	GDP       map[string]GdpEntry
	Metadata  []byte
	Builder   RowBuilder

	details metadataIndex
}

// DatasetInfo summarizes the held dataset.
type DatasetInfo struct {
	Loaded    bool      `json:"loaded"`
	Version   string    `json:"version,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	Countries int       `json:"countries"`
}

// Service provides the country data operations used by the web layer.
type Service struct {
	docs        DocumentSource
	rates       RateSource
	now         func() time.Time
	loadTimeout time.Duration

	mu      sync.RWMutex
	dataset *Dataset

	loads singleflight.Group
}

// NewService creates a new Service instance.
func NewService(docs DocumentSource, rates RateSource) *Service {
	return &Service{
		docs:        docs,
		rates:       rates,
		now:         time.Now,
		loadTimeout: DefaultLoadTimeout,
	}
}

// SetLoadTimeout overrides DefaultLoadTimeout for loads started on first
// use. Non-positive values are ignored.
func (s *Service) SetLoadTimeout(d time.Duration) {
	if d > 0 {
		s.loadTimeout = d
	}
}

// Load reads all documents concurrently, parses them, and replaces the held
// dataset. Any read failure aborts the load and keeps the previous dataset.
func (s *Service) Load(ctx context.Context) (*Dataset, error) {
	start := s.now()
	raw := make([][]byte, len(Documents))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range Documents {
		i, name := i, name
		g.Go(func() error {
			data, err := s.docs.ReadDocument(gctx, name)
			if err != nil {
				return fmt.Errorf("dataset unavailable: read %s: %w", name, err)
			}
			raw[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("error").Inc()
		slog.Error("dataset load failed", "error", err)
		return nil, err
	}

	countries := ParseCountries(raw[0])
	ds := &Dataset{
		Version:   uuid.NewString(),
		LoadedAt:  s.now(),
		Countries: countries,
		GDP:       ParseGdpData(raw[1], NewCodeSet(countries)),
		Metadata:  raw[0],
		Builder: RowBuilder{
			Territories:       ParseTerritories(raw[2]),
			OfficialLanguages: ParseOfficialLanguages(raw[3]),
			Indicators:        ParseIndicators(raw[4]),
		},
		details: indexMetadata(raw[0]),
	}

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()
	metrics.DatasetLoadsTotal.WithLabelValues("ok").Inc()

	slog.Info("dataset loaded",
		"version", ds.Version,
		"countries", len(ds.Countries),
		"gdp_entries", len(ds.GDP),
		"indicators", len(ds.Builder.Indicators),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return ds, nil
}

// current returns the held dataset, loading it on first use.
//
// Concurrent first callers share a single load. The load runs detached from
// any one caller's cancellation, bounded by the load timeout; a caller whose
// context ends stops waiting without failing the others.
func (s *Service) current(ctx context.Context) (*Dataset, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	ch := s.loads.DoChan("dataset", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return s.Load(lctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Rows returns the full row set in default order. The dataset and the
// exchange rates are fetched concurrently.
func (s *Service) Rows(ctx context.Context) ([]CountryRow, error) {
	var (
		ds    *Dataset
		rates map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = s.current(gctx)
		return err
	})
	g.Go(func() error {
		rates = s.rates.Rates(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ds.rows(rates), nil
}

// rows builds the row set from ds with the given rates. A Dataset built
// outside Load has no index yet and falls back to parsing Metadata.
func (ds *Dataset) rows(rates map[string]float64) []CountryRow {
	details := ds.details
	if details == nil {
		details = indexMetadata(ds.Metadata)
	}
	return ds.Builder.buildRows(ds.Countries, ds.GDP, details, rates)
}

// SortedRows returns rows ordered by key; see SortRows.
func (s *Service) SortedRows(ctx context.Context, key string, order SortOrder) ([]CountryRow, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return SortRows(rows, key, order), nil
}

// ChartRows returns the rows for the chart view.
//
// With a selection, rows whose code is selected are returned in default
// order. Without one, the top ChartDefaultLimit rows by GDP per capita are
// returned, excluding rows without GDP.
func (s *Service) ChartRows(ctx context.Context, selected []string) ([]CountryRow, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(selected))
	for _, code := range selected {
		if code = strings.TrimSpace(code); code != "" {
			want[code] = true
		}
	}

	if len(want) > 0 {
		out := make([]CountryRow, 0, len(want))
		for _, row := range rows {
			if want[row.Code] {
				out = append(out, row)
			}
		}
		return out, nil
	}

	out := make([]CountryRow, 0, len(rows))
	for _, row := range rows {
		if row.GdpPerCapita != nil {
			out = append(out, row)
		}
	}
	slices.SortStableFunc(out, func(a, b CountryRow) int {
		return compareNullLast(a.GdpPerCapita, b.GdpPerCapita, SortDesc)
	})
	if len(out) > ChartDefaultLimit {
		out = out[:ChartDefaultLimit]
	}
	return out, nil
}

// CurrencyRates maps every country code to its currency rate, or nil when
// the country has none.
func (s *Service) CurrencyRates(ctx context.Context) (map[string]*float64, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*float64, len(rows))
	for _, row := range rows {
		out[row.Code] = row.CurrencyRate
	}
	return out, nil
}

// DatasetInfo describes the held dataset without loading one.
func (s *Service) DatasetInfo() DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dataset == nil {
		return DatasetInfo{}
	}
	return DatasetInfo{
		Loaded:    true,
		Version:   s.dataset.Version,
		LoadedAt:  s.dataset.LoadedAt,
		Countries: len(s.dataset.Countries),
	}
}
