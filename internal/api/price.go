package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a money amount in integer cents. The backend serializes decimal
// prices as JSON strings ("3.50"); older endpoints emit bare numbers. Both
// forms decode into exact cents, so totals never accumulate float error.
type Cents int64

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		parsed, err := ParseCents(unquoted)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", s, err)
	}
	*c = Cents(math.Round(f * 100))
	return nil
}

// ParseCents converts a decimal string such as "3.5" or "12.00" to cents.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	var centsPart int64
	switch len(frac) {
	case 0:
	case 1:
		centsPart, err = strconv.ParseInt(frac, 10, 64)
		centsPart *= 10
	case 2:
		centsPart, err = strconv.ParseInt(frac, 10, 64)
	default:
		centsPart, err = strconv.ParseInt(frac[:2], 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	total := dollars*100 + centsPart
	if negative {
		total = -total
	}
	return Cents(total), nil
}
