package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"vehicle_finance/internal/models"
)

// Row is one source record keyed by column name.
type Row map[string]any

// Get looks a column up exactly, then case-insensitively. Postgres folds
// unquoted identifiers to lower case and workbook headers vary.
func (r Row) Get(col string) (any, bool) {
	if v, ok := r[col]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, col) {
			return v, true
		}
	}
	return nil, false
}

func (r Row) String(col string) string {
	v, _ := r.Get(col)
	return asString(v)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(models.DateLayout)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// normalizeAmount strips spaces and digit grouping commas ("1,00,000").
func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	return s
}

func parseFloat(s string) (float64, error) {
	s = normalizeAmount(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}

func parseInt(s string) (int, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02.01.2006 15:04:05",
	"01-02-06",
}

// parseDate accepts the layouts seen in exports and returns YYYY-MM-DD.
// Four-digit-year slash and dash dates are read day-first; "01-02-06" is
// the workbook default cell format and is month-first.
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(models.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date: %q", s)
}
