package kpi

import (
	"math"
	"strconv"
	"strings"
)

// notApplicable holds the surface forms that mean "this KPI does not apply"
var notApplicable = map[string]bool{
	"":    true,
	"0":   true,
	"0%":  true,
	"-":   true,
	"–":   true,
	"—":   true,
	"н/п": true,
	"н/а": true,
	"n/a": true,
	"na":  true,
	"x":   true,
	"х":   true,
}

// ParseWeight converts a weight cell into a share in [0,1]. "10%" and "10"
// both mean 0.10, "0,25" means 0.25. The second result is false for
// not-applicable and unreadable cells, which weigh zero.
func ParseWeight(cell string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(cell))
	s = strings.ReplaceAll(s, " ", "")
	if notApplicable[s] {
		return 0, false
	}

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if percent || v > 1 {
		v /= 100
	}
	if v <= 0 {
		return 0, false
	}
	if v > 1 {
		v = 1
	}
	return v, true
}

// isWeightCell reports whether cell is blank, a not-applicable marker or a
// number, i.e. something ParseWeight is meant to read.
func isWeightCell(cell string) bool {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(cell), " ", ""))
	if notApplicable[s] {
		return true
	}
	s = strings.ReplaceAll(strings.TrimSuffix(s, "%"), ",", ".")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
