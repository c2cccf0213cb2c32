package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/motorstart/model"
)

func TestFullLoadCurrentReturnsTableValuesExactly(t *testing.T) {
	for voltage, byHP := range fullLoadCurrentTable {
		for hp, want := range byHP {
			got, err := FullLoadCurrent(hp, voltage, 3)
			if err != nil {
				t.Fatalf("FullLoadCurrent(%v hp, %v V): %v", hp, voltage, err)
			}
			if got.Amperes != want {
				t.Fatalf("FullLoadCurrent(%v hp, %v V) = %v, want %v", hp, voltage, got.Amperes, want)
			}
			if got.Source != model.SourceTabulated {
				t.Fatalf("FullLoadCurrent(%v hp, %v V) source = %q, want tabulated", hp, voltage, got.Source)
			}
			if got.AssumedEfficiency != 0 || got.AssumedPowerFactor != 0 {
				t.Fatalf("tabulated value should carry no assumptions, got %+v", got)
			}
		}
	}
}

func TestFullLoadCurrentKnownValues(t *testing.T) {
	cases := []struct {
		hp, voltage, want float64
	}{
		{10, 460, 14},
		{50, 460, 65},
		{100, 230, 248},
		{5, 575, 6.1},
	}
	for _, tc := range cases {
		got, err := FullLoadCurrent(tc.hp, tc.voltage, 3)
		if err != nil {
			t.Fatalf("FullLoadCurrent: %v", err)
		}
		if got.Amperes != tc.want {
			t.Errorf("FullLoadCurrent(%v hp, %v V) = %v, want %v", tc.hp, tc.voltage, got.Amperes, tc.want)
		}
	}
}

func TestFullLoadCurrentFallback(t *testing.T) {
	// 480 V is not a tabulated column.
	got, err := FullLoadCurrent(10, 480, 3)
	if err != nil {
		t.Fatalf("FullLoadCurrent: %v", err)
	}
	want := 10 * 746 / (math.Sqrt(3) * 480 * 0.90 * 0.85)
	if math.Abs(got.Amperes-want) > 1e-9 {
		t.Fatalf("fallback = %v, want %v", got.Amperes, want)
	}
	if !got.Estimated() || got.AssumedEfficiency != 0.90 || got.AssumedPowerFactor != 0.85 {
		t.Fatalf("fallback should be tagged as estimate with assumptions, got %+v", got)
	}

	// Single-phase never hits the table, even at a tabulated voltage.
	single, err := FullLoadCurrent(2, 230, 1)
	if err != nil {
		t.Fatalf("FullLoadCurrent single-phase: %v", err)
	}
	wantSingle := 2 * 746 / (230 * 0.90 * 0.85)
	if math.Abs(single.Amperes-wantSingle) > 1e-9 || !single.Estimated() {
		t.Fatalf("single-phase = %+v, want estimate of %v", single, wantSingle)
	}

	// An untabulated hp at a tabulated voltage also falls back.
	odd, err := FullLoadCurrent(12, 460, 3)
	if err != nil {
		t.Fatalf("FullLoadCurrent: %v", err)
	}
	if !odd.Estimated() {
		t.Fatalf("12 hp at 460 V should be estimated, got %+v", odd)
	}
}

func TestFullLoadCurrentFallbackMonotonicInHP(t *testing.T) {
	for _, phases := range []int{1, 3} {
		prev := 0.0
		for hp := 0.25; hp <= 600; hp += 0.75 {
			got, err := FullLoadCurrent(hp, 480, phases)
			if err != nil {
				t.Fatalf("FullLoadCurrent: %v", err)
			}
			if got.Amperes <= prev {
				t.Fatalf("phases=%d: FLC(%v hp) = %v not greater than previous %v", phases, hp, got.Amperes, prev)
			}
			prev = got.Amperes
		}
	}
}

func TestFullLoadCurrentRejectsInvalidRating(t *testing.T) {
	cases := []struct {
		name   string
		hp, v  float64
		phases int
	}{
		{"zero hp", 0, 460, 3},
		{"negative hp", -5, 460, 3},
		{"zero voltage", 10, 0, 3},
		{"two phases", 10, 460, 2},
		{"NaN hp", math.NaN(), 460, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FullLoadCurrent(tc.hp, tc.v, tc.phases)
			if !errors.Is(err, ErrInvalidMotorSpecification) {
				t.Fatalf("err = %v, want ErrInvalidMotorSpecification", err)
			}
		})
	}
}

func TestLockedRotorCurrentFromCodeLetter(t *testing.T) {
	m := model.MotorSpecification{Horsepower: 50, Voltage: 460, Phases: 3, Code: "G"}
	got, err := LockedRotorCurrent(m)
	if err != nil {
		t.Fatalf("LockedRotorCurrent: %v", err)
	}
	want := 50 * 6.3 * 1000 / (math.Sqrt(3) * 460)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("LRC = %v, want %v", got, want)
	}

	m.Phases = 1
	single, err := LockedRotorCurrent(m)
	if err != nil {
		t.Fatalf("LockedRotorCurrent single-phase: %v", err)
	}
	if wantSingle := 50 * 6.3 * 1000 / 460.0; math.Abs(single-wantSingle) > 1e-9 {
		t.Fatalf("single-phase LRC = %v, want %v", single, wantSingle)
	}
}

func TestLockedRotorCurrentScalesLinearlyWithHP(t *testing.T) {
	for _, code := range model.CodeLetters {
		base := model.MotorSpecification{Horsepower: 25, Voltage: 460, Phases: 3, Code: code}
		double := base
		double.Horsepower = 50

		a, err := LockedRotorCurrent(base)
		if err != nil {
			t.Fatalf("LockedRotorCurrent(%s): %v", code, err)
		}
		b, err := LockedRotorCurrent(double)
		if err != nil {
			t.Fatalf("LockedRotorCurrent(%s): %v", code, err)
		}
		if math.Abs(b-2*a) > 1e-9*b {
			t.Fatalf("code %s: LRC(50hp)=%v, want 2×LRC(25hp)=%v", code, b, 2*a)
		}
	}
}

func TestLockedRotorCurrentUnknownLetterDefaultsToG(t *testing.T) {
	g := model.MotorSpecification{Horsepower: 20, Voltage: 230, Phases: 3, Code: "G"}
	want, err := LockedRotorCurrent(g)
	if err != nil {
		t.Fatalf("LockedRotorCurrent: %v", err)
	}
	for _, code := range []model.CodeLetter{"", "Q", "Z", "g"} {
		m := g
		m.Code = code
		got, err := LockedRotorCurrent(m)
		if err != nil {
			t.Fatalf("LockedRotorCurrent(%q): %v", code, err)
		}
		if got != want {
			t.Errorf("code %q: LRC = %v, want letter-G value %v", code, got, want)
		}
	}
}

func TestCodeLetterTableEndpoints(t *testing.T) {
	if m, ok := CodeLetterMultiplier("A"); !ok || m != 3.15 {
		t.Fatalf("A = %v (ok=%v), want 3.15", m, ok)
	}
	if m, ok := CodeLetterMultiplier("V"); !ok || m != 25.0 {
		t.Fatalf("V = %v (ok=%v), want 25.0", m, ok)
	}
	if m, ok := CodeLetterMultiplier("X"); ok || m != 6.3 {
		t.Fatalf("unknown = %v (ok=%v), want 6.3 default", m, ok)
	}
	prev := 0.0
	for _, c := range model.CodeLetters {
		m, ok := CodeLetterMultiplier(c)
		if !ok {
			t.Fatalf("letter %s missing from table", c)
		}
		if m <= prev {
			t.Fatalf("letter %s multiplier %v not increasing", c, m)
		}
		prev = m
	}
}
