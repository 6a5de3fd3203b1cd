// Package ledger maintains the per-supermarket historical price ledger:
// one CSV file per supermarket, one row per product and price type, one
// column per observation date. Rows and date columns are append-only;
// re-recording the same date overwrites that date's cells, so a re-run for
// the same day is idempotent.
//
// Files are written atomically (temp file + rename) and rows are kept
// sorted alphabetically so successive runs produce deterministic, diffable
// output. A read or parse failure for one supermarket is isolated: it is
// reported to the caller and never blocks updates to the other
// supermarkets' ledgers.
package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalabort/Grocefy/internal/models"
)

// PriceType distinguishes the two tracked price series per product.
type PriceType string

const (
	Regular    PriceType = "Regular"
	Membership PriceType = "Membership"
)

const (
	productColumn = "Product"
	filePrefix    = "history_"
	fileSuffix    = ".csv"
)

// RowKey returns the ledger row identity for a product and price type,
// e.g. "Semi Skimmed Milk - Regular".
func RowKey(product string, pt PriceType) string {
	return product + " - " + string(pt)
}

// History is one supermarket's in-memory ledger matrix: row key → date →
// cell value. Dates preserves column order as stored on disk.
type History struct {
	Dates []string
	Rows  map[string]map[string]string
}

// NewHistory returns an empty history matrix.
func NewHistory() *History {
	return &History{Rows: make(map[string]map[string]string)}
}

// EnsureRows guarantees both price-type rows exist for every master
// product, even when no price has been seen yet.
func (h *History) EnsureRows(products []string) {
	for _, p := range products {
		if p == "" {
			continue
		}
		h.ensureRow(RowKey(p, Regular))
		h.ensureRow(RowKey(p, Membership))
	}
}

func (h *History) ensureRow(key string) {
	if _, ok := h.Rows[key]; !ok {
		h.Rows[key] = make(map[string]string)
	}
}

func (h *History) ensureDate(date string) {
	for _, d := range h.Dates {
		if d == date {
			return
		}
	}
	h.Dates = append(h.Dates, date)
}

// Record upserts the given observations' prices under the date column and
// returns the number of cells written. Only rows already present are
// touched, so products outside the master list never grow ad-hoc rows.
// Existing rows and date columns are never removed.
func (h *History) Record(date string, observations []models.PriceObservation) int {
	h.ensureDate(date)
	updates := 0
	for i := range observations {
		o := &observations[i]
		if !o.Found || o.Product == "" {
			continue
		}
		if o.RegularPrice != nil && h.setCell(RowKey(o.Product, Regular), date, o.RegularPrice.Plain()) {
			updates++
		}
		if o.MembershipPrice != nil && h.setCell(RowKey(o.Product, Membership), date, o.MembershipPrice.Plain()) {
			updates++
		}
	}
	return updates
}

func (h *History) setCell(key, date, value string) bool {
	row, ok := h.Rows[key]
	if !ok {
		return false
	}
	row[date] = value
	return true
}

// Get returns the cell value for a row key and date, or "" when absent.
func (h *History) Get(key, date string) string {
	return h.Rows[key][date]
}

// SortedKeys returns the row keys in alphabetical order.
func (h *History) SortedKeys() []string {
	keys := make([]string, 0, len(h.Rows))
	for key := range h.Rows {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Store owns all reads and writes of the per-supermarket ledger files under
// a single directory.
type Store struct {
	dir             string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// NewStore creates a ledger store rooted at dir. Zero permissions fall back
// to 0644/0755.
func NewStore(dir string, filePermissions, dirPermissions os.FileMode) *Store {
	if filePermissions == 0 {
		filePermissions = 0o644
	}
	if dirPermissions == 0 {
		dirPermissions = 0o755
	}
	return &Store{
		dir:             dir,
		filePermissions: filePermissions,
		dirPermissions:  dirPermissions,
	}
}

// Path returns the ledger file path for a supermarket.
func (s *Store) Path(supermarket string) string {
	return filepath.Join(s.dir, filePrefix+supermarket+fileSuffix)
}

// Supermarkets lists every supermarket with a ledger file, sorted.
func (s *Store) Supermarkets() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger files: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		name := strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), fileSuffix)
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads one supermarket's history. A missing file yields an empty
// history; a malformed file yields an error the caller is expected to
// isolate to that supermarket.
func (s *Store) Load(supermarket string) (*History, error) {
	f, err := os.Open(s.Path(supermarket))
	if os.IsNotExist(err) {
		return NewHistory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger for %s: %w", supermarket, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger for %s: %w", supermarket, err)
	}

	h := NewHistory()
	if len(records) == 0 {
		return h, nil
	}

	header := records[0]
	if len(header) == 0 || header[0] != productColumn {
		return nil, fmt.Errorf("ledger for %s has unexpected header %v", supermarket, header)
	}
	h.Dates = append(h.Dates, header[1:]...)

	for _, rec := range records[1:] {
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		row := make(map[string]string)
		for i, date := range h.Dates {
			if i+1 < len(rec) && rec[i+1] != "" {
				row[date] = rec[i+1]
			}
		}
		h.Rows[rec[0]] = row
	}
	return h, nil
}

// Save persists one supermarket's history atomically, rows sorted by key.
func (s *Store) Save(supermarket string, h *History) error {
	if err := os.MkdirAll(s.dir, s.dirPermissions); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(h.Dates)+1)
	header = append(header, productColumn)
	header = append(header, h.Dates...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to encode ledger header: %w", err)
	}

	for _, key := range h.SortedKeys() {
		rec := make([]string, 0, len(h.Dates)+1)
		rec = append(rec, key)
		for _, date := range h.Dates {
			rec = append(rec, h.Rows[key][date])
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to encode ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	// Write to a temporary file first, then rename (atomic write).
	path := s.Path(supermarket)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, buf.Bytes(), s.filePermissions); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}
	return nil
}

// UpdateError reports a per-supermarket failure during Update. These are
// isolated: the remaining supermarkets are still updated.
type UpdateError struct {
	Supermarket string
	Err         error
}

func (e UpdateError) Error() string {
	return fmt.Sprintf("ledger update failed for %s: %v", e.Supermarket, e.Err)
}

// Update records a run's observations under the given date (YYYY-MM-DD),
// one ledger file per supermarket seen in the observations. masterProducts
// guarantees every shopping-list product keeps both price-type rows even
// before any price is seen. Per-supermarket failures are collected and
// returned; a corrupt ledger is skipped for the run rather than overwritten.
func (s *Store) Update(date string, masterProducts []string, observations []models.PriceObservation) []UpdateError {
	byMarket := make(map[string][]models.PriceObservation)
	var markets []string
	for _, o := range observations {
		if o.Supermarket == "" {
			continue
		}
		if _, ok := byMarket[o.Supermarket]; !ok {
			markets = append(markets, o.Supermarket)
		}
		byMarket[o.Supermarket] = append(byMarket[o.Supermarket], o)
	}

	var errs []UpdateError
	for _, market := range markets {
		if err := s.updateOne(date, market, masterProducts, byMarket[market]); err != nil {
			errs = append(errs, UpdateError{Supermarket: market, Err: err})
		}
	}
	return errs
}

func (s *Store) updateOne(date, supermarket string, masterProducts []string, observations []models.PriceObservation) error {
	h, err := s.Load(supermarket)
	if err != nil {
		return err
	}
	h.EnsureRows(masterProducts)
	h.Record(date, observations)
	return s.Save(supermarket, h)
}
