// Package directory resolves user-entered names to canonical market symbols
// using a static reference table.
package directory

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"RsiWatch/internal/domain/models"
	applogger "RsiWatch/pkg/logger"
)

//go:embed stocks_kr.csv
var embeddedTable string

const defaultMarket = "KOSPI"

// Market index aliases, in both directions.
var (
	indexSymbols = map[string]string{"KOSPI200": "^KS200", "KOSDAQ": "^KQ11"}
	indexNames   = map[string]string{"^KS200": "KOSPI200", "^KQ11": "KOSDAQ"}
)

// Option configures a Directory.
type Option func(*Directory)

// WithPath loads the table from a file instead of the embedded one.
func WithPath(path string) Option {
	return func(d *Directory) { d.path = path }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(d *Directory) { d.log = l }
}

// Directory is the in-memory symbol reference. Safe for concurrent use once loaded.
type Directory struct {
	path string
	log  *applogger.Logger

	mu       sync.RWMutex
	loaded   bool
	records  []models.SymbolRecord
	byName   map[string]models.SymbolRecord
	bySymbol map[string]models.SymbolRecord
}

func New(opts ...Option) *Directory {
	d := &Directory{
		log:      applogger.Nop(),
		byName:   make(map[string]models.SymbolRecord),
		bySymbol: make(map[string]models.SymbolRecord),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load reads the configured table. Only the first successful load has any effect.
func (d *Directory) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.path == "" {
		return d.LoadFrom(strings.NewReader(embeddedTable))
	}
	f, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("open symbol table: %w", err)
	}
	defer f.Close()
	return d.LoadFrom(f)
}

// LoadFrom parses a "name,symbol[,market]" table with a header row.
// Malformed lines are skipped. Later duplicates of a name or symbol are ignored.
func (d *Directory) LoadFrom(r io.Reader) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header := true
	skipped := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("read symbol table: %w", err)
		}
		if header {
			header = false
			continue
		}

		rec, ok := parseRecord(fields)
		if !ok {
			skipped++
			continue
		}
		nameKey := strings.ToUpper(rec.DisplayName)
		symKey := strings.ToUpper(rec.CanonicalSymbol)
		if _, dup := d.byName[nameKey]; dup {
			continue
		}
		if _, dup := d.bySymbol[symKey]; dup {
			continue
		}
		d.byName[nameKey] = rec
		d.bySymbol[symKey] = rec
		d.records = append(d.records, rec)
	}

	d.loaded = true
	d.log.Info("symbol table loaded", applogger.Int("records", len(d.records)), applogger.Int("skipped", skipped))
	return nil
}

func parseRecord(fields []string) (models.SymbolRecord, bool) {
	if len(fields) < 2 {
		return models.SymbolRecord{}, false
	}
	name := strings.TrimSpace(fields[0])
	symbol := strings.TrimSpace(fields[1])
	if name == "" || symbol == "" {
		return models.SymbolRecord{}, false
	}
	market := defaultMarket
	if len(fields) >= 3 && strings.TrimSpace(fields[2]) != "" {
		market = strings.TrimSpace(fields[2])
	}
	return models.SymbolRecord{DisplayName: name, CanonicalSymbol: symbol, Market: market}, true
}

// ResolveToCanonical maps a name, symbol, index name or bare 6-digit code to the
// canonical symbol the quote source understands.
func (d *Directory) ResolveToCanonical(query string) (string, bool) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if rec, ok := d.byName[q]; ok {
		return rec.CanonicalSymbol, true
	}
	if rec, ok := d.bySymbol[q]; ok {
		return rec.CanonicalSymbol, true
	}
	if sym, ok := indexSymbols[q]; ok {
		return sym, true
	}
	if isSixDigits(q) {
		ks := q + ".KS"
		if rec, ok := d.bySymbol[ks]; ok {
			return rec.CanonicalSymbol, true
		}
		return ks, true
	}
	return "", false
}

// ResolveToDisplayName is the reverse lookup. Unknown symbols come back unchanged.
func (d *Directory) ResolveToDisplayName(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	d.mu.RLock()
	rec, ok := d.bySymbol[s]
	d.mu.RUnlock()
	if ok {
		return rec.DisplayName
	}
	if name, ok := indexNames[s]; ok {
		return name
	}
	return symbol
}

// Search returns up to limit records whose name or symbol contains query,
// case-insensitively, in table order.
func (d *Directory) Search(query string, limit int) []models.SymbolRecord {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []models.SymbolRecord{}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.SymbolRecord, 0, min(limit, 16))
	for _, rec := range d.records {
		if strings.Contains(strings.ToUpper(rec.DisplayName), q) ||
			strings.Contains(strings.ToUpper(rec.CanonicalSymbol), q) {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// IsKnownOrPlausible accepts anything resolvable, anything carrying a market
// suffix, and bare 6-digit codes.
func (d *Directory) IsKnownOrPlausible(query string) bool {
	q := strings.TrimSpace(query)
	if _, ok := d.ResolveToCanonical(q); ok {
		return true
	}
	return strings.Contains(q, ".") || isSixDigits(q)
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
