package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain"
)

const dateOnly = "2006-01-02"

// parseDateRange interpreta from/to como RFC3339 o YYYY-MM-DD. Un "to" de solo fecha incluye el día completo.
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	f, err := parseDateBound(from, false)
	if err != nil {
		return nil, nil, err
	}
	t, err := parseDateBound(to, true)
	if err != nil {
		return nil, nil, err
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return f, t, nil
}

func parseDateBound(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	d, err := time.Parse(dateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return &d, nil
}
