package ocr

import "testing"

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in       string
		want     float64
		currency bool
		decimal  bool
		percent  bool
		mag      byte
		ok       bool
	}{
		{"12", 12, false, false, false, 0, true},
		{"$182.50", 182.50, true, true, false, 0, true},
		{"$2,190.00", 2190, true, true, false, 0, true},
		{"1.2%", 1.2, false, true, true, 0, true},
		{"-0.5", -0.5, false, true, false, 0, true},
		{"+3", 3, false, false, false, 0, true},
		{"$1.2K", 1200, true, true, false, 'K', true},
		{"3.4M", 3.4e6, false, true, false, 'M', true},
		{"2B", 2e9, false, false, false, 'B', true},
		{"AAPL", 0, false, false, false, 0, false},
		{"", 0, false, false, false, 0, false},
		{"$", 0, false, false, false, 0, false},
		{"1/19", 0, false, false, false, 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseNumeric(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseNumeric(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Value != tc.want {
			t.Errorf("ParseNumeric(%q) value = %v, want %v", tc.in, got.Value, tc.want)
		}
		if got.HasCurrency != tc.currency || got.HasDecimal != tc.decimal || got.HasPercent != tc.percent {
			t.Errorf("ParseNumeric(%q) flags = %v/%v/%v, want %v/%v/%v",
				tc.in, got.HasCurrency, got.HasDecimal, got.HasPercent, tc.currency, tc.decimal, tc.percent)
		}
		if got.Magnitude != tc.mag {
			t.Errorf("ParseNumeric(%q) magnitude = %c, want %c", tc.in, got.Magnitude, tc.mag)
		}
	}
}

func TestNumericCandidates_PreservesOrder(t *testing.T) {
	tokens := TokenizeParagraph(para(0.9, "AAPL", "12", "$182.50", "up", "1.2%"))
	cands := NumericCandidates(tokens)
	if len(cands) != 3 {
		t.Fatalf("Expected 3 numeric candidates, got %d", len(cands))
	}
	if cands[0].Index != 1 || cands[1].Index != 2 || cands[2].Index != 4 {
		t.Errorf("Expected indexes [1 2 4], got [%d %d %d]", cands[0].Index, cands[1].Index, cands[2].Index)
	}
}
