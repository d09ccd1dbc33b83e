package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Number accepts a JSON number or a numeric string. Anything that does not
// parse becomes 0, the way the form inputs always behaved.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		b = []byte(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// InIntRange reports whether n fits an integer column.
func (n Number) InIntRange() bool {
	return n <= math.MaxInt32 && n >= math.MinInt32
}

// Int rounds to the nearest integer, clamped to the int32 range.
func (n Number) Int() int {
	f := math.Round(float64(n))
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

func (n Number) Float() float64 { return float64(n) }

const dateLayout = "2006-01-02"

// Date accepts YYYY-MM-DD or RFC3339. An empty string or null means unset.
type Date struct {
	t *time.Time
}

func NewDate(t time.Time) Date { return Date{t: &t} }

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("날짜 형식이 올바르지 않습니다: %s", b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.t = nil
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.t = &t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("날짜 형식이 올바르지 않습니다: %s", s)
	}
	d.t = &t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(dateLayout))
}

func (d Date) IsZero() bool { return d.t == nil }

// Time returns a copy so callers can hand it to a model.
func (d Date) Time() *time.Time {
	if d.t == nil {
		return nil
	}
	t := *d.t
	return &t
}
