package ocr

import (
	"strconv"
	"strings"
)

// NumericValue is the parsed form of a token that looks like a number.
// Value is already scaled by any K/M/B magnitude suffix.
type NumericValue struct {
	Value       float64
	HasCurrency bool
	HasDecimal  bool
	HasPercent  bool
	Magnitude   byte
}

var magnitudeScale = map[byte]float64{'K': 1e3, 'M': 1e6, 'B': 1e9}

// ParseNumeric classifies a cleaned token as a number, recording the
// surface signals ($ prefix, decimal point, % suffix, magnitude suffix)
// the pickers score on. Returns false for anything that is not a number.
func ParseNumeric(text string) (NumericValue, bool) {
	var v NumericValue
	s := strings.TrimSpace(text)
	if s == "" {
		return v, false
	}

	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "$") {
		v.HasCurrency = true
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasSuffix(s, "%") {
		v.HasPercent = true
		s = s[:len(s)-1]
	}
	if s != "" {
		last := s[len(s)-1]
		if up := byte(strings.ToUpper(string(last))[0]); magnitudeScale[up] != 0 {
			v.Magnitude = up
			s = s[:len(s)-1]
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "." {
		return NumericValue{}, false
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NumericValue{}, false
	}

	v.HasDecimal = strings.Contains(s, ".")
	if scale, ok := magnitudeScale[v.Magnitude]; ok {
		val *= scale
	}
	if neg {
		val = -val
	}
	v.Value = val
	return v, true
}

// NumericCandidates filters a token stream down to the tokens that parse
// as numbers, preserving token order.
func NumericCandidates(tokens []TokenCandidate) []NumericCandidate {
	out := make([]NumericCandidate, 0, len(tokens))
	for _, t := range tokens {
		nv, ok := ParseNumeric(t.Text)
		if !ok {
			continue
		}
		out = append(out, NumericCandidate{
			TokenCandidate: t,
			Value:          nv.Value,
			HasCurrency:    nv.HasCurrency,
			HasDecimal:     nv.HasDecimal,
			HasPercent:     nv.HasPercent,
			Magnitude:      nv.Magnitude,
		})
	}
	return out
}
