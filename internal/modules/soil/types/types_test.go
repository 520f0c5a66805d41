package types

import (
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"Monday", time.Monday},
		{"monday", time.Monday},
		{"  SATURDAY ", time.Saturday},
		{"Sunday", time.Sunday},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if err != nil {
				t.Fatalf("ParseWeekday(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseWeekday(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWeekday_invalid(t *testing.T) {
	for _, in := range []string{"", "Mon", "Funday", "0"} {
		if _, err := ParseWeekday(in); err == nil {
			t.Errorf("ParseWeekday(%q) error = nil; want error", in)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity(" Humidity ")
	if err != nil {
		t.Fatalf("ParseQuantity: %v", err)
	}
	if q != Humidity {
		t.Errorf("ParseQuantity = %q; want %q", q, Humidity)
	}
	if _, err := ParseQuantity("pressure"); err == nil {
		t.Error("ParseQuantity(pressure) error = nil; want error")
	}
}

func TestHourly_Series(t *testing.T) {
	var h Hourly
	h.PH[3] = 6.5
	s, ok := h.Series(PH)
	if !ok {
		t.Fatal("Series(PH) not found")
	}
	if s[3] != 6.5 {
		t.Errorf("Series(PH)[3] = %v; want 6.5", s[3])
	}
	if _, ok := h.Series("pressure"); ok {
		t.Error("Series(pressure) ok = true; want false")
	}
}

func TestWeekdays_order(t *testing.T) {
	days := Weekdays()
	if len(days) != 7 {
		t.Fatalf("len(Weekdays()) = %d; want 7", len(days))
	}
	if days[0] != time.Sunday || days[6] != time.Saturday {
		t.Errorf("Weekdays() = %v; want Sunday..Saturday", days)
	}
}
