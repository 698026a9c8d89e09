package core

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestParseModifiedDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{"2024/3/1", "2024-03-01"},
		{"2024年3月1日", "2024-03-01"},
		{"Mar 1, 2024", "2024-03-01"},
		{"3/1/2024", "2024-03-01"},
		{"01.03.2024", "2024-01-03"},
		{"20240301", "2024-03-01"},
		{"=\"2024-03-01\"", "2024-03-01"},
		{"3/1/24", "2024-03-01"},
		{"", "unknown"},
		{"someday", "unknown"},
		{"2024-13-01", "unknown"},
	}
	for _, tt := range tests {
		if got := ParseModifiedDate(tt.in).String(); got != tt.want {
			t.Errorf("ParseModifiedDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseModifiedDate_TwoDigitPivot(t *testing.T) {
	d := ParseModifiedDate("1/2/69")
	if !d.Known {
		t.Fatal("expected known date")
	}
	if d.Time.Year() != 1969 {
		t.Errorf("year = %d, want 1969", d.Time.Year())
	}

	// Years more than TwoDigitYearPivot ahead fall back a century.
	future := (time.Now().Year() + TwoDigitYearPivot + 1) % 100
	if future <= 68 {
		d = ParseModifiedDate("1/2/" + twoDigits(future))
		if !d.Known || d.Time.Year() > time.Now().Year()+TwoDigitYearPivot {
			t.Errorf("pivot not applied: %v", d.Time)
		}
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestParsePackURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/base.zip", "https://example.com/base.zip"},
		{"  http://example.com/a  ", "http://example.com/a"},
		{"example.com/a.zip", ""},
		{"ftp://example.com/a.zip", ""},
		{"https://", ""},
		{"", ""},
	}
	for _, tt := range tests {
		u := ParsePackURL(tt.in)
		got := ""
		if u != nil {
			got = u.String()
		}
		if got != tt.want {
			t.Errorf("ParsePackURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitDependencies(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"base", []string{"base"}},
		{"base, extras ,core", []string{"base", "extras", "core"}},
		{"a,,b,", []string{"a", "b"}},
		{"基本パック、拡張パック", []string{"基本パック", "拡張パック"}},
		{"x，y", []string{"x", "y"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitDependencies(tt.in)); diff != "" {
			t.Errorf("SplitDependencies(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestURLBaseName(t *testing.T) {
	tests := map[string]string{
		"https://example.com/packs/base%20pack.zip": "base pack.zip",
		"https://example.com/":                      "",
		"https://example.com":                       "",
		"https://example.com/a/b/c.zip?x=1":         "c.zip",
	}
	for in, want := range tests {
		if got := URLBaseName(ParsePackURL(in)); got != want {
			t.Errorf("URLBaseName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := URLBaseName(nil); got != "" {
		t.Errorf("URLBaseName(nil) = %q", got)
	}
}

func TestCleanCell(t *testing.T) {
	tests := map[string]string{
		`  hello `:   "hello",
		`="00123"`:   "00123",
		`=SUM`:       "SUM",
		`"quoted"`:   "quoted",
		`'single'`:   "single",
		``:           "",
		`" spaced "`: "spaced",
	}
	for in, want := range tests {
		if got := CleanCell(in); got != want {
			t.Errorf("CleanCell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPgConversions(t *testing.T) {
	if ToPgText("  ").Valid {
		t.Error("ToPgText(blank) should be invalid")
	}
	if v := ToPgText(" x "); !v.Valid || v.String != "x" {
		t.Errorf("ToPgText(x) = %+v", v)
	}

	if ToPgDate(Unknown).Valid {
		t.Error("ToPgDate(Unknown) should be invalid")
	}
	d := ParseModifiedDate("2024-03-01")
	if back := FromPgDate(ToPgDate(d)); back != d {
		t.Errorf("date round trip = %v, want %v", back, d)
	}

	if ToPgUUID(uuid.Nil).Valid {
		t.Error("ToPgUUID(Nil) should be invalid")
	}
	id := uuid.New()
	if v := ToPgUUID(id); !v.Valid || uuid.UUID(v.Bytes) != id {
		t.Errorf("ToPgUUID() = %+v", v)
	}
}
