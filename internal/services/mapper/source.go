package mapper

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
)

// Source yields raw rows for the tables a profile names.
type Source interface {
	Fetch(ctx context.Context, t Table) ([]Row, error)
	// FetchByKeys returns the rows of t whose t.Key column is one of keys.
	FetchByKeys(ctx context.Context, t Table, keys []string) ([]Row, error)
}

const defaultInBatch = 500

// SQLSource runs profile queries through sqlx. Queries use '?' bind vars;
// they are rebound for the driver and "IN (?)" is expanded per batch.
type SQLSource struct {
	db        *sqlx.DB
	batchSize int
	log       *zap.Logger
}

func NewSQLSource(db *sqlx.DB, log *zap.Logger) *SQLSource {
	return &SQLSource{db: db, batchSize: defaultInBatch, log: logger.OrNop(log)}
}

func (s *SQLSource) Fetch(ctx context.Context, t Table) ([]Row, error) {
	if t.Query == "" {
		return nil, fmt.Errorf("table %q: no query", t.Key)
	}
	return s.query(ctx, s.db.Rebind(t.Query))
}

func (s *SQLSource) FetchByKeys(ctx context.Context, t Table, keys []string) ([]Row, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if t.Query == "" {
		return nil, fmt.Errorf("table %q: no query", t.Key)
	}

	var out []Row
	if t.PerRecord {
		q := s.db.Rebind(t.Query)
		for _, k := range keys {
			rows, err := s.query(ctx, q, k)
			if err != nil {
				return nil, fmt.Errorf("%s=%s: %w", t.Key, k, err)
			}
			out = append(out, rows...)
		}
		return out, nil
	}

	for start := 0; start < len(keys); start += s.batchSize {
		end := min(start+s.batchSize, len(keys))
		q, args, err := sqlx.In(t.Query, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("expand IN for %s: %w", t.Key, err)
		}
		rows, err := s.query(ctx, s.db.Rebind(q), args...)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	s.log.Debug("[MAPPER][SQL] fetched by keys", zap.String("key", t.Key), zap.Int("keys", len(keys)), zap.Int("rows", len(out)))
	return out, nil
}

func (s *SQLSource) query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, Row(m))
	}
	return out, rows.Err()
}

// XLSXSource reads one sheet per table; the first row of each sheet holds
// the column names. Key lookups are ordered by the table's OrderBy column.
type XLSXSource struct {
	f      *excelize.File
	sheets map[string][]Row
	log    *zap.Logger
}

func OpenXLSX(path string, log *zap.Logger) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &XLSXSource{f: f, sheets: map[string][]Row{}, log: logger.OrNop(log)}, nil
}

func NewXLSXSource(r io.Reader, log *zap.Logger) (*XLSXSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return &XLSXSource{f: f, sheets: map[string][]Row{}, log: logger.OrNop(log)}, nil
}

func (s *XLSXSource) Close() error { return s.f.Close() }

func (s *XLSXSource) Fetch(_ context.Context, t Table) ([]Row, error) {
	return s.sheet(t.Sheet)
}

func (s *XLSXSource) FetchByKeys(_ context.Context, t Table, keys []string) ([]Row, error) {
	rows, err := s.sheet(t.Sheet)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []Row
	for _, r := range rows {
		if want[r.String(t.Key)] {
			out = append(out, r)
		}
	}
	if t.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := parseFloat(out[i].String(t.OrderBy))
			b, _ := parseFloat(out[j].String(t.OrderBy))
			return a < b
		})
	}
	return out, nil
}

func (s *XLSXSource) sheet(name string) ([]Row, error) {
	if name == "" {
		return nil, fmt.Errorf("xlsx: table has no sheet name")
	}
	if rows, ok := s.sheets[name]; ok {
		return rows, nil
	}

	actual := ""
	for _, sh := range s.f.GetSheetList() {
		if strings.EqualFold(sh, name) {
			actual = sh
			break
		}
	}
	if actual == "" {
		return nil, fmt.Errorf("xlsx: sheet %q not found", name)
	}

	it, err := s.f.Rows(actual)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	if !it.Next() {
		s.sheets[name] = nil
		return nil, it.Error()
	}
	header, err := it.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for it.Next() {
		cols, err := it.Columns()
		if err != nil {
			s.log.Warn("[MAPPER][XLSX] read row", zap.String("sheet", actual), zap.Error(err))
			continue
		}
		if blank(cols) {
			continue
		}
		out = append(out, toRow(header, cols))
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	s.log.Info("[MAPPER][XLSX] sheet loaded", zap.String("sheet", actual), zap.Int("rows", len(out)))
	s.sheets[name] = out
	return out, nil
}

func toRow(header, cols []string) Row {
	m := make(Row, len(header))
	for i, key := range header {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		val := ""
		if i < len(cols) {
			val = cols[i]
		}
		m[key] = strings.TrimSpace(val)
	}
	return m
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
