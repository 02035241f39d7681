package colmap

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f the way COLMAP's own python tooling does: the shortest decimal that
// round trips, ".0" on integral values, and exponent form below 1e-4 or from 1e16 up.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(f)
	if abs < 1e-4 || abs >= 1e16 {
		// go already pads the exponent to two digits, e.g. 1e-05
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
