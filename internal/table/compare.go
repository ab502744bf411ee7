package table

import (
	"strconv"
	"strings"
)

// Kind is how a column's values are ordered.
type Kind int

const (
	// KindString orders values byte-wise.
	KindString Kind = iota
	// KindNumber orders values numerically.
	KindNumber
)

// ColumnKind is KindNumber when every non-blank value parses as a number,
// KindString otherwise. A column of only blanks is KindString.
func ColumnKind(values []string) Kind {
	seen := false
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := parseNumber(v); !ok {
			return KindString
		}
		seen = true
	}
	if !seen {
		return KindString
	}
	return KindNumber
}

// Compare orders a and b under kind. Blanks sort after every other value.
func Compare(kind Kind, a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	if kind == KindNumber {
		x, _ := parseNumber(a)
		y, _ := parseNumber(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseCount parses an integer cell. Blank is 0. Integral floats such as
// "12.0" are accepted.
func ParseCount(v string) (int64, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, &strconv.NumError{Func: "ParseCount", Num: v, Err: strconv.ErrSyntax}
	}
	return int64(f), nil
}
