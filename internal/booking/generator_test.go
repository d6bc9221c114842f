package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testWindow() AvailabilityWindow {
	return AvailabilityWindow{
		ID:                 uuid.New(),
		ClinicID:           uuid.New(),
		DoctorID:           uuid.New(),
		ServiceID:          "general-checkup",
		Date:               "2026-02-10",
		StartTime:          "09:00",
		EndTime:            "11:00",
		MaxPatientsPerSlot: 1,
	}
}

func TestGenerateSlots(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		start     string
		end       string
		interval  int
		capacity  int
		wantTimes []string
	}{
		{
			name:      "two hour window hourly",
			start:     "09:00",
			end:       "11:00",
			capacity:  1,
			wantTimes: []string{"09:00", "10:00"},
		},
		{
			name:      "window shorter than interval yields nothing",
			start:     "09:00",
			end:       "09:30",
			capacity:  1,
			wantTimes: nil,
		},
		{
			name:      "half hour interval",
			start:     "09:00",
			end:       "10:30",
			interval:  30,
			capacity:  2,
			wantTimes: []string{"09:00", "09:30", "10:00"},
		},
		{
			name:      "boundary slot at end time excluded",
			start:     "09:00",
			end:       "10:00",
			capacity:  1,
			wantTimes: []string{"09:00"},
		},
		{
			name:      "crosses noon without rollover",
			start:     "11:30",
			end:       "14:30",
			interval:  90,
			capacity:  1,
			wantTimes: []string{"11:30", "13:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testWindow()
			w.StartTime = tt.start
			w.EndTime = tt.end
			w.SlotInterval = tt.interval
			w.MaxPatientsPerSlot = tt.capacity

			slots, err := GenerateSlots(&w, now)
			if err != nil {
				t.Fatalf("GenerateSlots: %v", err)
			}
			if len(slots) != len(tt.wantTimes) {
				t.Fatalf("got %d slots, want %d", len(slots), len(tt.wantTimes))
			}
			for i, s := range slots {
				if s.Time != tt.wantTimes[i] {
					t.Errorf("slot %d time = %s, want %s", i, s.Time, tt.wantTimes[i])
				}
				if s.Capacity != tt.capacity {
					t.Errorf("slot %d capacity = %d, want %d", i, s.Capacity, tt.capacity)
				}
				if s.Booked != 0 {
					t.Errorf("slot %d booked = %d, want 0", i, s.Booked)
				}
				if s.Index != i {
					t.Errorf("slot %d index = %d", i, s.Index)
				}
				if want := SlotID(w.ID, i); s.ID != want {
					t.Errorf("slot %d id = %s, want %s", i, s.ID, want)
				}
			}
		})
	}
}

func TestGenerateSlotsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AvailabilityWindow)
	}{
		{"end before start", func(w *AvailabilityWindow) { w.StartTime = "11:00"; w.EndTime = "09:00" }},
		{"end equals start", func(w *AvailabilityWindow) { w.EndTime = w.StartTime }},
		{"bad start format", func(w *AvailabilityWindow) { w.StartTime = "9am" }},
		{"bad end format", func(w *AvailabilityWindow) { w.EndTime = "25:00" }},
		{"minute out of range", func(w *AvailabilityWindow) { w.StartTime = "09:75" }},
		{"zero capacity", func(w *AvailabilityWindow) { w.MaxPatientsPerSlot = 0 }},
		{"negative capacity", func(w *AvailabilityWindow) { w.MaxPatientsPerSlot = -2 }},
		{"bad date", func(w *AvailabilityWindow) { w.Date = "10/02/2026" }},
		{"negative interval", func(w *AvailabilityWindow) { w.SlotInterval = -15 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testWindow()
			tt.mutate(&w)

			_, err := GenerateSlots(&w, time.Now())
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestGenerateSlotsCountProperty(t *testing.T) {
	// floor((end-start)/interval) slots, each exactly interval apart,
	// none at or after end.
	cases := []struct {
		start, end string
		interval   int
		want       int
	}{
		{"08:00", "18:00", 60, 10},
		{"08:15", "12:00", 45, 5},
		{"00:00", "23:59", 60, 23},
		{"09:00", "09:59", 60, 0},
		{"09:00", "10:01", 60, 1},
	}

	for _, c := range cases {
		w := testWindow()
		w.StartTime = c.start
		w.EndTime = c.end
		w.SlotInterval = c.interval

		slots, err := GenerateSlots(&w, time.Now())
		if err != nil {
			t.Fatalf("%s-%s/%d: %v", c.start, c.end, c.interval, err)
		}
		if len(slots) != c.want {
			t.Errorf("%s-%s/%d: got %d slots, want %d", c.start, c.end, c.interval, len(slots), c.want)
		}

		end, _ := parseClock(c.end)
		for i, s := range slots {
			min, err := parseClock(s.Time)
			if err != nil {
				t.Fatalf("bad generated time %q: %v", s.Time, err)
			}
			if min >= end {
				t.Errorf("slot %s at or after end %s", s.Time, c.end)
			}
			if i > 0 {
				prev, _ := parseClock(slots[i-1].Time)
				if min-prev != c.interval {
					t.Errorf("slots %d-%d spaced %d minutes, want %d", i-1, i, min-prev, c.interval)
				}
			}
		}
	}
}

func TestParseClock(t *testing.T) {
	if _, err := parseClock("24:00"); err == nil {
		t.Error("24:00 accepted")
	}
	if _, err := parseClock("9:00"); err == nil {
		t.Error("unpadded hour accepted")
	}
	min, err := parseClock("23:59")
	if err != nil || min != 23*60+59 {
		t.Errorf("parseClock(23:59) = %d, %v", min, err)
	}
	if formatClock(601) != "10:01" {
		t.Errorf("formatClock(601) = %s", formatClock(601))
	}
}
