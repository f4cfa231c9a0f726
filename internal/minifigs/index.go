// Package minifigs keeps the searchable minifigure name index in object
// storage. The index is a CSV object with the header code,name,year.
package minifigs

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
)

const (
	DefaultObjectKey = "minifigures.csv"

	leftBracket  = "&#40;"
	rightBracket = "&#41;"
)

var header = []string{"code", "name", "year"}

// Minifig is one row of the index.
type Minifig struct {
	Code string
	Name string
	Year string
}

// Hit converts the row to a search result.
func (m Minifig) Hit() catalog.SearchHit {
	year, _ := strconv.Atoi(m.Year)
	return catalog.SearchHit{Kind: catalog.KindMinifig, Number: m.Code, Name: m.Name, Year: year}
}

type Index struct {
	store   ObjectStore
	key     string
	metrics *metrics.Metrics
	group   singleflight.Group
}

func NewIndex(store ObjectStore, key string, m *metrics.Metrics) *Index {
	if key == "" {
		key = DefaultObjectKey
	}
	return &Index{store: store, key: key, metrics: m}
}

// Key returns the object key of the index.
func (ix *Index) Key() string {
	return ix.key
}

// Search returns the rows whose name contains every whitespace separated
// word of query, ignoring case. A missing index yields no rows.
func (ix *Index) Search(ctx context.Context, query string) ([]Minifig, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}

	rows, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}

	var found []Minifig
	for _, row := range rows {
		if matchesAll(strings.ToLower(row.Name), words) {
			found = append(found, row)
		}
	}
	log.Info().Str("query", query).Int("results", len(found)).Msg("minifigure search")
	return found, nil
}

func matchesAll(name string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(name, w) {
			return false
		}
	}
	return true
}

// load reads the whole index. Concurrent searches share one download.
func (ix *Index) load(ctx context.Context) ([]Minifig, error) {
	v, err, _ := ix.group.Do(ix.key, func() (any, error) {
		start := time.Now()
		body, err := ix.store.Download(ctx, ix.key)
		if errors.Is(err, ErrNotFound) {
			ix.metrics.RecordUpstream("s3", "not_found", time.Since(start))
			log.Warn().Str("key", ix.key).Msg("minifigure index does not exist yet")
			return []Minifig(nil), nil
		}
		if err != nil {
			ix.metrics.RecordUpstream("s3", "error", time.Since(start))
			return nil, err
		}
		defer body.Close()

		rows, err := readIndex(body)
		ix.metrics.RecordUpstream("s3", statusLabel(err), time.Since(start))
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load minifigure index: %w", err)
	}
	return v.([]Minifig), nil
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func readIndex(r io.Reader) ([]Minifig, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := columnIndex(records[0])
	code, okCode := cols["code"]
	name, okName := cols["name"]
	if !okCode || !okName {
		return nil, fmt.Errorf("index header %v lacks code or name", records[0])
	}
	year, okYear := cols["year"]

	rows := make([]Minifig, 0, len(records)-1)
	for _, rec := range records[1:] {
		if code >= len(rec) || name >= len(rec) {
			continue
		}
		row := Minifig{Code: rec[code], Name: rec[name]}
		if okYear && year < len(rec) {
			row.Year = rec[year]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return cols
}

// Replace overwrites the index with figs. Rows sharing a code collapse into
// the last one while keeping the position of the first.
func (ix *Index) Replace(ctx context.Context, figs []Minifig) (int, error) {
	rows := dedupe(figs)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return 0, err
	}
	for _, f := range rows {
		if err := w.Write([]string{f.Code, restoreBrackets(f.Name), f.Year}); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("failed to write index: %w", err)
	}

	start := time.Now()
	err := ix.store.Upload(ctx, ix.key, &buf, "text/csv")
	ix.metrics.RecordUpstream("s3", statusLabel(err), time.Since(start))
	if err != nil {
		return 0, err
	}

	log.Info().Str("key", ix.key).Int("entries", len(rows)).Msg("minifigure index replaced")
	return len(rows), nil
}

func dedupe(figs []Minifig) []Minifig {
	pos := make(map[string]int, len(figs))
	rows := make([]Minifig, 0, len(figs))
	for _, f := range figs {
		f.Code = strings.TrimSpace(f.Code)
		if f.Code == "" {
			continue
		}
		if i, ok := pos[f.Code]; ok {
			rows[i] = f
			continue
		}
		pos[f.Code] = len(rows)
		rows = append(rows, f)
	}
	return rows
}

func restoreBrackets(s string) string {
	return strings.NewReplacer(leftBracket, "(", rightBracket, ")").Replace(s)
}
