package scheduling

import (
	"sync"
	"time"
)

// DateFormat is the wire format for slot dates.
const DateFormat = "2006-01-02"

// AvailabilityConfig controls how the rolling slot window is generated.
type AvailabilityConfig struct {
	WindowDays   int
	SlotCapacity int
	// Hours lists the bookable times of a business day, "HH:MM".
	Hours []string
	// Now is injected by tests; defaults to time.Now.
	Now func() time.Time
}

var defaultHours = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// AvailabilityStore tracks remaining capacity per (date, time) slot. All
// mutations happen under a single store-wide mutex so a reserve is an
// indivisible check-and-decrement.
type AvailabilityStore struct {
	mu    sync.Mutex
	slots map[string]map[string]int
	dates []string // sorted, weekdays only
}

// NewAvailabilityStore populates slots for every weekday in
// [now+1, now+WindowDays]. Weekend dates are not present at all.
func NewAvailabilityStore(cfg AvailabilityConfig) *AvailabilityStore {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.SlotCapacity <= 0 {
		cfg.SlotCapacity = 1
	}
	if len(cfg.Hours) == 0 {
		cfg.Hours = defaultHours
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	s := &AvailabilityStore{
		slots: make(map[string]map[string]int),
	}

	today := now()
	for i := 1; i <= cfg.WindowDays; i++ {
		day := today.AddDate(0, 0, i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		date := day.Format(DateFormat)
		times := make(map[string]int, len(cfg.Hours))
		for _, hour := range cfg.Hours {
			times[hour] = cfg.SlotCapacity
		}
		s.slots[date] = times
		s.dates = append(s.dates, date)
	}

	return s
}

// AvailableSlots returns a copy of the time→capacity map for a date. Unknown
// dates yield an empty map.
func (s *AvailabilityStore) AvailableSlots(date string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	times, ok := s.slots[date]
	if !ok {
		return map[string]int{}
	}
	out := make(map[string]int, len(times))
	for hour, capacity := range times {
		out[hour] = capacity
	}
	return out
}

// HasDate reports whether the date is inside the bookable window.
func (s *AvailabilityStore) HasDate(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[date]
	return ok
}

// Reserve decrements the capacity of (date, time) by one. It returns false
// without mutating anything when the date or time is unknown or the slot is
// exhausted.
func (s *AvailabilityStore) Reserve(date, hour string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	times, ok := s.slots[date]
	if !ok {
		return false
	}
	capacity, ok := times[hour]
	if !ok || capacity <= 0 {
		return false
	}
	times[hour] = capacity - 1
	return true
}

// Release increments the capacity of (date, time) by one. Unknown dates or
// times are ignored; callers must only release slots they reserved.
func (s *AvailabilityStore) Release(date, hour string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	times, ok := s.slots[date]
	if !ok {
		return
	}
	if _, ok := times[hour]; !ok {
		return
	}
	times[hour]++
}

// EarliestDate returns the first bookable date in the window, or "" when the
// window is empty.
func (s *AvailabilityStore) EarliestDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dates) == 0 {
		return ""
	}
	return s.dates[0]
}

// Dates returns the bookable dates in ascending order.
func (s *AvailabilityStore) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.dates))
	copy(out, s.dates)
	return out
}
