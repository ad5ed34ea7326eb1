package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders v for the wire. With a precision it rounds the exact
// binary value to that many decimal digits, ties going to the even digit,
// then drops trailing zeros. Without one it writes the shortest text that
// parses back to v. The result always contains a decimal point or an
// exponent, so integral values read as "24.0", and negative zero is written
// as "0.0". Non-finite values cannot be represented in JSON.
func FormatFloat(v float64, p Precision) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("cannot encode non-finite number %v", v)
	}

	if digits, ok := p.Digits(); ok {
		s := strconv.FormatFloat(v, 'f', digits, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(s, "0")
		}
		return normalise(s), nil
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		// "1e-07" → "1e-7", as encoding/json does.
		if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
		return s, nil
	}
	return normalise(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

func normalise(s string) string {
	s = strings.TrimSuffix(s, ".")
	if strings.TrimLeft(s, "-0.") == "" {
		return "0.0"
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
