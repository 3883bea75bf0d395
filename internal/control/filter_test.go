package control

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestFilter_Smooth(t *testing.T) {
	f := DefaultFilter()

	tests := []struct {
		name string
		prev float64
		raw  float64
		want float64
	}{
		{"seed toward max", 50, 100, 55},
		{"seed toward min", 50, 0, 45},
		{"equal reading keeps value", 42, 42, 42},
		{"from zero", 0, 100, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Smooth(tt.prev, tt.raw)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Smooth(%v, %v) = %v, want %v", tt.prev, tt.raw, got, tt.want)
			}
		})
	}
}

func TestFilter_StrictlyBetween(t *testing.T) {
	f := DefaultFilter()
	for s := 0.0; s <= 100; s += 12.5 {
		for r := 0.0; r <= 100; r += 7 {
			got := f.Smooth(s, r)
			if s == r {
				if got != s {
					t.Errorf("Smooth(%v, %v) = %v, want unchanged", s, r, got)
				}
				continue
			}
			lo, hi := math.Min(s, r), math.Max(s, r)
			if got <= lo || got >= hi {
				t.Errorf("Smooth(%v, %v) = %v, not strictly between", s, r, got)
			}
		}
	}
}

func TestFilter_SeedIsFixedPoint(t *testing.T) {
	f := DefaultFilter()
	st := NewState(InitialValue)
	for i := 0; i < 1000; i++ {
		st, _ = f.Update(st, Volume, InitialValue)
	}
	if st.Get(Volume).Value != InitialValue {
		t.Errorf("expected %v after repeated seed readings, got %v", InitialValue, st.Get(Volume).Value)
	}
}

func TestFilter_Update(t *testing.T) {
	f := DefaultFilter()

	t.Run("only the target channel changes", func(t *testing.T) {
		st := NewState(InitialValue)
		next, v := f.Update(st, Volume, 100)

		if math.Abs(v-55) > epsilon {
			t.Errorf("expected 55, got %v", v)
		}
		if next.Get(Brightness).Value != InitialValue {
			t.Errorf("brightness changed to %v", next.Get(Brightness).Value)
		}
		if st.Get(Volume).Value != InitialValue {
			t.Error("input state was mutated")
		}
	})

	t.Run("stays within hull of readings", func(t *testing.T) {
		st := NewState(InitialValue)
		readings := []float64{100, 0, 100, 30, 80, 0, 0, 100}
		lo, hi := InitialValue, InitialValue
		for _, r := range readings {
			lo, hi = math.Min(lo, r), math.Max(hi, r)
			var v float64
			st, v = f.Update(st, Brightness, r)
			if v < lo || v > hi {
				t.Fatalf("value %v outside [%v,%v]", v, lo, hi)
			}
		}
	})
}

func TestNewFilter(t *testing.T) {
	tests := []struct {
		alpha   float64
		wantErr bool
	}{
		{0.1, false},
		{1, false},
		{0, true},
		{-0.5, true},
		{1.5, true},
	}
	for _, tt := range tests {
		_, err := NewFilter(tt.alpha)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewFilter(%v) error = %v, wantErr %v", tt.alpha, err, tt.wantErr)
		}
	}

	f, _ := NewFilter(0.25)
	if f.Alpha() != 0.25 {
		t.Errorf("expected alpha 0.25, got %v", f.Alpha())
	}
}

func TestChannel(t *testing.T) {
	t.Run("names", func(t *testing.T) {
		if Volume.String() != "volume" || Brightness.String() != "brightness" {
			t.Errorf("unexpected names %q %q", Volume, Brightness)
		}
		if Channel(7).Valid() {
			t.Error("channel 7 should be invalid")
		}
	})

	t.Run("parse", func(t *testing.T) {
		ch, err := ParseChannel("Brightness")
		if err != nil || ch != Brightness {
			t.Errorf("ParseChannel = %v, %v", ch, err)
		}
		if _, err := ParseChannel("contrast"); err == nil {
			t.Error("expected error for unknown channel")
		}
	})

	t.Run("all channels", func(t *testing.T) {
		if len(Channels()) != ChannelCount {
			t.Errorf("expected %d channels, got %d", ChannelCount, len(Channels()))
		}
	})
}
