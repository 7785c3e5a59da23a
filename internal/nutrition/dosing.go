package nutrition

import (
	"math"

	"github.com/saadjs/nutricu/internal/model"
)

// CalculationWeight is the dosing weight. It is derived from height, weight
// and gender on every call; stored derived fields on p are ignored.
func CalculationWeight(p model.Patient) float64 {
	bmi := BMI(p.WeightKg, p.HeightCm)
	if bmi >= ObesityBMI {
		return AdjustedWeight(p.WeightKg, IdealWeight(p.HeightCm, p.Gender))
	}
	return p.WeightKg
}

// ComputeDerived returns p with BMI, ideal, adjusted and calculation weight
// recomputed from its biometrics.
func ComputeDerived(p model.Patient) model.Patient {
	p.BMI = BMI(p.WeightKg, p.HeightCm)
	p.IdealWeight = IdealWeight(p.HeightCm, p.Gender)
	p.AdjustedWeight = AdjustedWeight(p.WeightKg, p.IdealWeight)
	p.CalculationWeight = CalculationWeight(p)
	return p
}

// DerivedStale reports whether the stored derived fields of p disagree with a
// fresh computation.
func DerivedStale(p model.Patient) bool {
	fresh := ComputeDerived(p)
	return !sameNumber(p.BMI, fresh.BMI) ||
		!sameNumber(p.IdealWeight, fresh.IdealWeight) ||
		!sameNumber(p.AdjustedWeight, fresh.AdjustedWeight) ||
		!sameNumber(p.CalculationWeight, fresh.CalculationWeight)
}

func sameNumber(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
