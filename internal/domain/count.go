package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Count is a non-negative tally from the analytics API. Aggregates such as
// COUNT(*) arrive as either JSON numbers or numeric strings, so both are accepted.
type Count int64

// UnmarshalJSON accepts 12, 12.0, "12" and null.
func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		b = []byte(s)
	}
	if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		*c = Count(n)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	*c = Count(d.Round(0).IntPart())
	return nil
}

// Int64 returns the count as int64.
func (c Count) Int64() int64 { return int64(c) }

// Decimal returns the count as a decimal for ratio math.
func (c Count) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(c)) }
