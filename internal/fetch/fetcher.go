package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/WorldInfo/internal/core"
	"github.com/JonMunkholm/WorldInfo/internal/logging"
)

// World Bank series codes.
const (
	SeriesGdpPerCapita = "NY.GDP.PCAP.CD"
)

// IndicatorSeries maps each auxiliary indicator to its World Bank series.
var IndicatorSeries = map[core.IndicatorKind]string{
	core.IndicatorGdpTotal:        "NY.GDP.MKTP.CD",
	core.IndicatorGini:            "SI.POV.GINI",
	core.IndicatorInternetUsers:   "IT.NET.USER.ZS",
	core.IndicatorUrbanPopulation: "SP.URB.TOTL.IN.ZS",
}

// officialLanguageQuery lists sovereign states by ISO 3166-1 alpha-3 code
// with their official languages.
const officialLanguageQuery = `
SELECT ?iso3Code ?officialLanguageLabel WHERE {
  ?country wdt:P31 wd:Q6256.
  ?country wdt:P298 ?iso3Code.
  OPTIONAL { ?country wdt:P37 ?officialLanguage. }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
`

// Sources holds the upstream endpoints.
type Sources struct {
	RestCountriesURL string
	WorldBankURL     string
	WikidataURL      string
}

// DefaultSources returns the public endpoints.
func DefaultSources() Sources {
	return Sources{
		RestCountriesURL: "https://restcountries.com/v3.1/all?fields=cca3,name,languages,currencies,area,population,gini,flags,independent,unMember",
		WorldBankURL:     "https://api.worldbank.org/v2",
		WikidataURL:      "https://query.wikidata.org/sparql",
	}
}

// seriesURL is the latest-value query for one World Bank series.
func (s Sources) seriesURL(series string) string {
	return fmt.Sprintf("%s/country/all/indicator/%s?format=json&per_page=20000&mrv=1",
		strings.TrimRight(s.WorldBankURL, "/"), url.PathEscape(series))
}

// OfficialLanguage is one member of the official-language document.
type OfficialLanguage struct {
	OfficialLanguage string `json:"officialLanguage,omitempty"`
}

// Bundle is one complete fetch, ready to be written.
type Bundle struct {
	Countries         json.RawMessage
	GDP               json.RawMessage
	OfficialLanguages map[string]OfficialLanguage
	Indicators        map[string]core.IndicatorEntry
	Territories       map[string]string
}

// Fetcher downloads every upstream source.
type Fetcher struct {
	client  *Client
	sources Sources
}

// New creates a Fetcher.
func New(client *Client, sources Sources) *Fetcher {
	return &Fetcher{client: client, sources: sources}
}

// FetchAll downloads every source concurrently. It fails if any source
// fails, reporting every failure, so a partial bundle is never returned.
func (f *Fetcher) FetchAll(ctx context.Context) (*Bundle, error) {
	var (
		mu     sync.Mutex
		failed []error
		series = make(map[core.IndicatorKind]map[string]core.GdpEntry, len(IndicatorSeries))
		bundle = &Bundle{Territories: Territories}
	)

	g, gctx := errgroup.WithContext(ctx)
	run := func(source string, fn func(context.Context) error) {
		g.Go(func() error {
			start := time.Now()
			log := logging.WithFields(gctx, "source", source)
			if err := fn(gctx); err != nil {
				log.Error("fetch failed", "error", err)
				mu.Lock()
				failed = append(failed, fmt.Errorf("%s: %w", source, err))
				mu.Unlock()
				return nil
			}
			log.Info("fetched", "duration_ms", time.Since(start).Milliseconds())
			return nil
		})
	}

	run("restcountries", func(ctx context.Context) error {
		data, err := f.getJSON(ctx, f.sources.RestCountriesURL)
		bundle.Countries = data
		return err
	})
	run("worldbank "+SeriesGdpPerCapita, func(ctx context.Context) error {
		data, err := f.getJSON(ctx, f.sources.seriesURL(SeriesGdpPerCapita))
		bundle.GDP = data
		return err
	})
	run("wikidata", func(ctx context.Context) error {
		langs, err := f.officialLanguages(ctx)
		bundle.OfficialLanguages = langs
		return err
	})
	for kind, code := range IndicatorSeries {
		kind, code := kind, code
		run("worldbank "+code, func(ctx context.Context) error {
			data, err := f.getJSON(ctx, f.sources.seriesURL(code))
			if err != nil {
				return err
			}
			parsed := core.ParseIndicatorSeries(data)
			mu.Lock()
			series[kind] = parsed
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("fetch upstream data: %w", errors.Join(failed...))
	}

	bundle.Indicators = core.MergeIndicators(series)
	return bundle, nil
}

// getJSON fetches url and checks the body is JSON.
func (f *Fetcher) getJSON(ctx context.Context, rawURL string) (json.RawMessage, error) {
	data, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: response is not JSON", rawURL)
	}
	return data, nil
}

type sparqlValue struct {
	Value string `json:"value"`
}

type sparqlResults struct {
	Results struct {
		Bindings []struct {
			ISO3     *sparqlValue `json:"iso3Code"`
			Language *sparqlValue `json:"officialLanguageLabel"`
		} `json:"bindings"`
	} `json:"results"`
}

// officialLanguages runs the SPARQL query and folds the bindings by code.
// A country listed with several languages keeps the last one returned.
func (f *Fetcher) officialLanguages(ctx context.Context) (map[string]OfficialLanguage, error) {
	form := url.Values{"query": {officialLanguageQuery}}
	data, err := f.client.PostForm(ctx, f.sources.WikidataURL, form, "application/sparql-results+json")
	if err != nil {
		return nil, err
	}

	var res sparqlResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}

	out := make(map[string]OfficialLanguage)
	for _, b := range res.Results.Bindings {
		if b.ISO3 == nil || b.ISO3.Value == "" {
			continue
		}
		code := strings.ToUpper(b.ISO3.Value)
		entry := out[code]
		if b.Language != nil && b.Language.Value != "" {
			entry.OfficialLanguage = b.Language.Value
		}
		out[code] = entry
	}
	return out, nil
}

// DocumentWriter persists one named document.
type DocumentWriter interface {
	WriteDocument(name string, data []byte) error
}

// Write stores every document of b, pretty-printed.
func Write(w DocumentWriter, b *Bundle) error {
	docs := make(map[string][]byte, len(core.Documents))

	for name, raw := range map[string]json.RawMessage{
		core.DocCountries: b.Countries,
		core.DocGDP:       b.GDP,
	} {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("format %s: %w", name, err)
		}
		docs[name] = buf.Bytes()
	}

	for name, v := range map[string]any{
		core.DocTerritories:       b.Territories,
		core.DocOfficialLanguages: b.OfficialLanguages,
		core.DocIndicators:        b.Indicators,
	} {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		docs[name] = data
	}

	for _, name := range core.Documents {
		if err := w.WriteDocument(name, docs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Run fetches every source and writes the documents. A failed fetch writes
// nothing, so existing documents stay in place; the failure is returned
// only when strict is set.
func Run(ctx context.Context, f *Fetcher, w DocumentWriter, strict bool) error {
	log := logging.FromContext(ctx)

	bundle, err := f.FetchAll(ctx)
	if err != nil {
		if strict {
			return err
		}
		log.Warn("fetch failed, keeping existing data", "error", err)
		return nil
	}

	if err := Write(w, bundle); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	log.Info("documents written", "documents", len(core.Documents))
	return nil
}
