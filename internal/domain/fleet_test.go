package domain

import "testing"

func TestFleetValidate(t *testing.T) {
	base := Fleet{
		Vehicles:       2,
		Capacity:       100,
		WorkStart:      8 * Hour,
		WorkEnd:        17 * Hour,
		LunchStart:     12 * Hour,
		LunchEnd:       13 * Hour,
		ServicePerDesi: 2,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(f *Fleet)
	}{
		{"no vehicles", func(f *Fleet) { f.Vehicles = 0 }},
		{"zero capacity", func(f *Fleet) { f.Capacity = 0 }},
		{"inverted shift", func(f *Fleet) { f.WorkEnd = f.WorkStart }},
		{"inverted lunch", func(f *Fleet) { f.LunchEnd = f.LunchStart - 1 }},
		{"negative service", func(f *Fleet) { f.ServicePerDesi = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			if err := f.Validate(); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}

func TestFleetServiceSeconds(t *testing.T) {
	f := Fleet{ServicePerDesi: 2}
	if got := f.ServiceSeconds(12.7); got != 25 {
		t.Fatalf("service = %d, want 25", got)
	}
	if f.HasLunch() {
		t.Fatalf("fleet without lunch reports a lunch break")
	}
}

func TestWarehouseOrderUsedDesi(t *testing.T) {
	used := 7.5
	o := WarehouseOrder{TotalDesi: 10, TotalUsedDesi: &used}
	if got := o.UsedDesi(); got != 7.5 {
		t.Fatalf("used desi = %v, want 7.5", got)
	}

	zero := 0.0
	o.TotalUsedDesi = &zero
	if got := o.UsedDesi(); got != 0 {
		t.Fatalf("zero used desi = %v, want 0 (total desi must not be substituted)", got)
	}

	o.TotalUsedDesi = nil
	if got := o.UsedDesi(); got != 0 {
		t.Fatalf("missing used desi = %v, want 0", got)
	}

	if got := o.Coordinates().String(); got != "0,0" {
		t.Fatalf("coordinates = %q, want %q", got, "0,0")
	}
}

func TestCoordinatesString(t *testing.T) {
	c := Coordinates{Lat: 41.0082, Lon: 28.9784}
	if got := c.String(); got != "41.0082,28.9784" {
		t.Fatalf("coordinates = %q", got)
	}
	if err := (Coordinates{Lat: 91}).Validate(); err == nil {
		t.Fatalf("expected latitude range error")
	}
}
