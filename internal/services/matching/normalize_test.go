package matching

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0971234567", "971234567"},
		{"+260971234567", "971234567"},
		{"260971234567", "971234567"},
		{"+260 97 123 4567", "971234567"},
		{"097-123-4567", "971234567"},
		{"971234567", "971234567"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	for _, raw := range []string{"+260971234567", "0971234567", "0211 234567", "971234567"} {
		once := NormalizePhone(raw)
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Jane   Mwale ", "jane mwale"},
		{"José Bánda", "jose banda"},
		{"JOHN BANDA", "john banda"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
