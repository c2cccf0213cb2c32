package core

import "github.com/signalsfoundry/motorstart/model"

// Reference tables. They are package-level, built once at init and never
// written afterwards, so concurrent readers need no locking. Nothing in the
// package exports a mutator for them.

// fullLoadCurrentTable is NEC Table 430.250: full-load current in amperes
// for three-phase induction motors, keyed by nominal voltage then hp.
var fullLoadCurrentTable = map[float64]map[float64]float64{
	208: {
		0.5: 2.4, 0.75: 3.5, 1: 4.6, 1.5: 6.6, 2: 7.5, 3: 10.6, 5: 16.7,
		7.5: 24.2, 10: 30.8, 15: 46.2, 20: 59.4, 25: 74.8, 30: 88, 40: 114,
		50: 143, 60: 169, 75: 211, 100: 273, 125: 343, 150: 396, 200: 528,
	},
	230: {
		0.5: 2.2, 0.75: 3.2, 1: 4.2, 1.5: 6.0, 2: 6.8, 3: 9.6, 5: 15.2,
		7.5: 22, 10: 28, 15: 42, 20: 54, 25: 68, 30: 80, 40: 104,
		50: 130, 60: 154, 75: 192, 100: 248, 125: 312, 150: 360, 200: 480,
	},
	460: {
		0.5: 1.1, 0.75: 1.6, 1: 2.1, 1.5: 3.0, 2: 3.4, 3: 4.8, 5: 7.6,
		7.5: 11, 10: 14, 15: 21, 20: 27, 25: 34, 30: 40, 40: 52,
		50: 65, 60: 77, 75: 96, 100: 124, 125: 156, 150: 180, 200: 240,
		250: 302, 300: 361, 350: 414, 400: 477, 450: 515, 500: 590,
	},
	575: {
		0.5: 0.9, 0.75: 1.3, 1: 1.7, 1.5: 2.4, 2: 2.7, 3: 3.9, 5: 6.1,
		7.5: 9, 10: 11, 15: 17, 20: 22, 25: 27, 30: 32, 40: 41,
		50: 52, 60: 62, 75: 77, 100: 99, 125: 125, 150: 144, 200: 192,
		250: 242, 300: 289, 350: 336, 400: 382, 450: 412, 500: 472,
	},
}

// lockedRotorKVAPerHP maps each NEMA code letter to the upper bound of its
// locked-rotor kVA/hp band (NEMA MG 1-10.37.2).
var lockedRotorKVAPerHP = map[model.CodeLetter]float64{
	"A": 3.15, "B": 3.55, "C": 4.0, "D": 4.5, "E": 5.0,
	"F": 5.6, "G": 6.3, "H": 7.1, "J": 8.0, "K": 9.0,
	"L": 10.0, "M": 11.2, "N": 12.5, "P": 14.0, "R": 16.0,
	"S": 18.0, "T": 20.0, "U": 22.4, "V": 25.0,
}

// defaultCodeLetter is used when the nameplate letter is missing or unknown.
const defaultCodeLetter model.CodeLetter = "G"

// InertiaTable selects which WK² per hp table drives acceleration time.
// The two source tables disagree on pump inertia; both are kept verbatim
// until the values are confirmed against the NEMA/NGMA reference.
type InertiaTable string

const (
	// InertiaAcceleration is the table the acceleration prose assumes:
	// pumps share the fan constant.
	InertiaAcceleration InertiaTable = "acceleration"
	// InertiaReference is the load table as listed, with pump at 20.
	InertiaReference InertiaTable = "reference"
)

// loadInertiaConstants is WK² (lb·ft²) per hp of the driven load.
var loadInertiaConstants = map[InertiaTable]map[model.LoadType]float64{
	InertiaAcceleration: {
		model.LoadFan:        30,
		model.LoadPump:       30,
		model.LoadCompressor: 50,
		model.LoadConveyor:   100,
		model.LoadCrusher:    200,
	},
	InertiaReference: {
		model.LoadFan:        30,
		model.LoadPump:       20,
		model.LoadCompressor: 50,
		model.LoadConveyor:   100,
		model.LoadCrusher:    200,
	},
}

// loadTorqueCurves gives each load's torque-speed characteristic.
var loadTorqueCurves = map[model.LoadType]model.TorqueCurve{
	model.LoadFan:        model.CurveQuadratic,
	model.LoadPump:       model.CurveQuadratic,
	model.LoadCompressor: model.CurveConstant,
	model.LoadConveyor:   model.CurveLinear,
	model.LoadCrusher:    model.CurveConstant,
}

// accelerationTorqueFactor is the fraction of starting torque left over to
// accelerate the load, averaged across the speed range.
var accelerationTorqueFactor = map[model.TorqueCurve]float64{
	model.CurveQuadratic: 0.75,
	model.CurveLinear:    0.5,
	model.CurveConstant:  0.3,
}

// standardSizes is the ascending ladder of standard overcurrent device
// ratings in amperes (NEC 240.6(A)), also used for overload ratings.
var standardSizes = []float64{
	15, 20, 25, 30, 35, 40, 45, 50, 60, 70, 80, 90, 100, 110, 125, 150,
	175, 200, 225, 250, 300, 350, 400, 450, 500, 600, 700, 800, 900, 1000,
	1200, 1600, 2000, 2500,
}

// standardCapacitorSizes is the ascending list of stock low-voltage power
// factor correction capacitors in kVAR.
var standardCapacitorSizes = []float64{
	2.5, 5, 7.5, 10, 12.5, 15, 20, 25, 30, 35, 40, 45, 50,
}

// conductorEntry is one row of the copper ampacity table.
type conductorEntry struct {
	Size     string
	Ampacity float64
}

// conductorAmpacities is NEC Table 310.16, copper, 75 °C column, ascending.
var conductorAmpacities = []conductorEntry{
	{"14", 20},
	{"12", 25},
	{"10", 35},
	{"8", 50},
	{"6", 65},
	{"4", 85},
	{"3", 100},
	{"2", 115},
	{"1", 130},
	{"1/0", 150},
	{"2/0", 175},
	{"3/0", 200},
	{"4/0", 230},
	{"250", 255},
	{"300", 285},
	{"350", 310},
	{"400", 335},
	{"500", 380},
}

// TabulatedVoltages returns the voltages present in the FLC table in
// ascending order.
func TabulatedVoltages() []float64 { return []float64{208, 230, 460, 575} }

// TabulatedFullLoadCurrent reports the NEC table value for a three-phase
// motor, if present.
func TabulatedFullLoadCurrent(voltage, hp float64) (float64, bool) {
	byHP, ok := fullLoadCurrentTable[voltage]
	if !ok {
		return 0, false
	}
	amps, ok := byHP[hp]
	return amps, ok
}

// CodeLetterMultiplier returns the locked-rotor kVA/hp for a code letter and
// whether the letter was recognised. Unknown letters get letter G.
func CodeLetterMultiplier(code model.CodeLetter) (float64, bool) {
	if m, ok := lockedRotorKVAPerHP[code]; ok {
		return m, true
	}
	return lockedRotorKVAPerHP[defaultCodeLetter], false
}

// StandardSizes returns a copy of the standard device ladder.
func StandardSizes() []float64 {
	return append([]float64(nil), standardSizes...)
}
