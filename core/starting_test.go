package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/motorstart/model"
)

const (
	testLRC = 395.35942346680895
	testFLC = 65.0
)

func TestStarDeltaIsExactlyOneThird(t *testing.T) {
	for _, lrc := range []float64{1, 7.25, testLRC, 1234.5678} {
		p, err := AnalyzeStartingMethod(model.StartingMethod{Type: model.MethodStarDelta}, lrc, testFLC)
		if err != nil {
			t.Fatalf("AnalyzeStartingMethod: %v", err)
		}
		if p.Current != lrc/3 {
			t.Fatalf("star-delta current = %v, want exactly %v", p.Current, lrc/3)
		}
		if p.TorquePercent != 50 {
			t.Fatalf("star-delta torque = %v, want exactly 50", p.TorquePercent)
		}
	}
}

func TestAutotransformerSquareLaw(t *testing.T) {
	// Default tap is 80%.
	p, err := AnalyzeStartingMethod(model.StartingMethod{Type: model.MethodAutotransformer}, testLRC, testFLC)
	if err != nil {
		t.Fatalf("AnalyzeStartingMethod: %v", err)
	}
	if p.Current != testLRC*0.64 {
		t.Fatalf("autotransformer current = %v, want %v", p.Current, testLRC*0.64)
	}
	if p.TorquePercent != 96 {
		t.Fatalf("autotransformer torque = %v, want 96", p.TorquePercent)
	}

	explicit, err := AnalyzeStartingMethod(model.StartingMethod{
		Type:     model.MethodAutotransformer,
		Settings: model.StartingSettings{TapPercent: model.Percent(80)},
	}, testLRC, testFLC)
	if err != nil {
		t.Fatalf("AnalyzeStartingMethod: %v", err)
	}
	if explicit != p {
		t.Fatalf("explicit 80%% tap = %+v, want default %+v", explicit, p)
	}

	// 65% tap: 0.4225 of locked-rotor current and torque.
	p65, err := AnalyzeStartingMethod(model.StartingMethod{
		Type:     model.MethodAutotransformer,
		Settings: model.StartingSettings{TapPercent: model.Percent(65)},
	}, 100, testFLC)
	if err != nil {
		t.Fatalf("AnalyzeStartingMethod: %v", err)
	}
	if math.Abs(p65.Current-42.25) > 1e-12 || math.Abs(p65.TorquePercent-150*0.4225) > 1e-12 {
		t.Fatalf("65%% tap = %+v, want current 42.25 torque %v", p65, 150*0.4225)
	}
}

func TestStartingMethodTable(t *testing.T) {
	cases := []struct {
		method      model.StartingMethod
		wantCurrent float64
		wantTorque  float64
	}{
		{model.StartingMethod{Type: model.MethodAcrossTheLine}, testLRC, 150},
		{model.StartingMethod{Type: model.MethodSoftStarter}, testLRC * 0.3, 150 * 0.09},
		{model.StartingMethod{
			Type:     model.MethodSoftStarter,
			Settings: model.StartingSettings{InitialVoltagePercent: model.Percent(50), RampTimeSeconds: 10},
		}, testLRC * 0.5, 150 * 0.25},
		{model.StartingMethod{Type: model.MethodVFD}, testFLC * 1.1, 150},
		{model.StartingMethod{Type: model.MethodResistor, Settings: model.StartingSettings{ResistanceSteps: 3}}, testLRC * 0.65, 150 * 0.65},
		{model.StartingMethod{Type: model.MethodPartWinding}, testLRC * 0.65, 75},
		{model.StartingMethod{Type: model.MethodReducedVoltage}, testLRC * 0.64, 150 * 0.64},
	}
	for _, tc := range cases {
		t.Run(string(tc.method.Type), func(t *testing.T) {
			p, err := AnalyzeStartingMethod(tc.method, testLRC, testFLC)
			if err != nil {
				t.Fatalf("AnalyzeStartingMethod: %v", err)
			}
			if math.Abs(p.Current-tc.wantCurrent) > 1e-9 {
				t.Errorf("current = %v, want %v", p.Current, tc.wantCurrent)
			}
			if math.Abs(p.TorquePercent-tc.wantTorque) > 1e-9 {
				t.Errorf("torque = %v, want %v", p.TorquePercent, tc.wantTorque)
			}
		})
	}
}

func TestEveryMethodHasCalculator(t *testing.T) {
	for _, mt := range model.StartingMethodTypes {
		if _, err := CalculatorFor(mt); err != nil {
			t.Fatalf("CalculatorFor(%s): %v", mt, err)
		}
	}
	if len(startingCalculators) != len(model.StartingMethodTypes) {
		t.Fatalf("dispatch table has %d entries, want %d", len(startingCalculators), len(model.StartingMethodTypes))
	}
}

func TestStartingMethodCurrentNeverExceedsAcrossTheLine(t *testing.T) {
	for _, mt := range model.StartingMethodTypes {
		p, err := AnalyzeStartingMethod(model.StartingMethod{Type: mt}, testLRC, testFLC)
		if err != nil {
			t.Fatalf("%s: %v", mt, err)
		}
		if p.Current > testLRC || p.Current < 0 {
			t.Errorf("%s: current %v outside [0, LRC]", mt, p.Current)
		}
		if p.TorquePercent <= 0 || p.TorquePercent > 150 {
			t.Errorf("%s: torque %v outside (0, 150]", mt, p.TorquePercent)
		}
	}
}

func TestInvalidStartingSettings(t *testing.T) {
	cases := []struct {
		name   string
		method model.StartingMethod
		want   error
	}{
		{"zero tap", model.StartingMethod{Type: model.MethodAutotransformer, Settings: model.StartingSettings{TapPercent: model.Percent(0)}}, ErrInvalidStartingSettings},
		{"tap over 100", model.StartingMethod{Type: model.MethodAutotransformer, Settings: model.StartingSettings{TapPercent: model.Percent(101)}}, ErrInvalidStartingSettings},
		{"negative initial voltage", model.StartingMethod{Type: model.MethodSoftStarter, Settings: model.StartingSettings{InitialVoltagePercent: model.Percent(-10)}}, ErrInvalidStartingSettings},
		{"negative ramp", model.StartingMethod{Type: model.MethodSoftStarter, Settings: model.StartingSettings{RampTimeSeconds: -1}}, ErrInvalidStartingSettings},
		{"negative steps", model.StartingMethod{Type: model.MethodResistor, Settings: model.StartingSettings{ResistanceSteps: -2}}, ErrInvalidStartingSettings},
		{"unknown method", model.StartingMethod{Type: "magic"}, ErrUnknownStartingMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AnalyzeStartingMethod(tc.method, testLRC, testFLC)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStartingMethodRejectsNonFiniteCurrents(t *testing.T) {
	_, err := AnalyzeStartingMethod(model.StartingMethod{Type: model.MethodAcrossTheLine}, math.Inf(1), testFLC)
	var calcErr *CalculationError
	if !errors.As(err, &calcErr) || !errors.Is(err, ErrCalculation) {
		t.Fatalf("err = %v, want CalculationError", err)
	}
}
