package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	if err != nil {
		t.Fatal(err)
	}
	if d != (Date{Year: 2024, Month: time.January, Day: 31}) {
		t.Errorf("got %+v", d)
	}
	if d.String() != "2024-01-31" {
		t.Errorf("String = %s", d.String())
	}
	if d.Compact() != "20240131" {
		t.Errorf("Compact = %s", d.Compact())
	}

	if _, err := ParseDate("31/01/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := MustParseDate("2024-02-28")
	if got := d.AddDays(1); got.String() != "2024-02-29" {
		t.Errorf("leap day: got %s", got)
	}
	if got := d.AddDays(2); got.String() != "2024-03-01" {
		t.Errorf("month roll: got %s", got)
	}
	if got := d.AddDays(-28); got.String() != "2024-01-31" {
		t.Errorf("backwards: got %s", got)
	}
	if got := d.FirstOfMonth(); got.String() != "2024-02-01" {
		t.Errorf("FirstOfMonth: got %s", got)
	}
}

func TestDateCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-01-02", -1},
		{"2024-02-01", "2024-01-31", 1},
		{"2023-12-31", "2024-01-01", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := MustParseDate(tt.a).Compare(MustParseDate(tt.b)); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Jan 1 is already Jan 2 in IST.
	ts := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := DateOf(ts.In(loc)); got.String() != "2024-01-02" {
		t.Errorf("got %s, want 2024-01-02", got)
	}
}

func TestDaysBetween(t *testing.T) {
	days := DaysBetween(MustParseDate("2024-01-30"), MustParseDate("2024-02-02"))
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	if days[0].String() != "2024-01-30" || days[3].String() != "2024-02-02" {
		t.Errorf("unexpected range %v", days)
	}
	if got := DaysBetween(MustParseDate("2024-02-02"), MustParseDate("2024-01-30")); len(got) != 0 {
		t.Errorf("reversed range should be empty, got %v", got)
	}
}

func TestDateCodecs(t *testing.T) {
	type wrapper struct {
		On Date `json:"on"`
	}
	data, err := json.Marshal(wrapper{On: MustParseDate("2024-01-01")})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"on":"2024-01-01"}` {
		t.Errorf("marshal: %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"on":"2024-03-05"}`), &w); err != nil {
		t.Fatal(err)
	}
	if w.On.String() != "2024-03-05" {
		t.Errorf("unmarshal: %s", w.On)
	}

	v, err := MustParseDate("2024-01-01").Value()
	if err != nil || v != "2024-01-01" {
		t.Errorf("Value = %v, %v", v, err)
	}
	if v, _ := (Date{}).Value(); v != nil {
		t.Errorf("zero Value = %v, want nil", v)
	}

	var d Date
	if err := d.Scan(time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-06-07" {
		t.Errorf("Scan time: %v %s", err, d)
	}
	if err := d.Scan([]byte("2024-06-08")); err != nil || d.String() != "2024-06-08" {
		t.Errorf("Scan bytes: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
