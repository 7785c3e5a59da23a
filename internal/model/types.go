package model

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Patient derived fields (BMI through CalculationWeight) are always filled by
// nutrition.ComputeDerived and never entered by hand.
type Patient struct {
	ID                string    `json:"id" yaml:"id"`
	Gender            Gender    `json:"gender" yaml:"gender"`
	HeightCm          float64   `json:"height" yaml:"height"`
	WeightKg          float64   `json:"weight" yaml:"weight"`
	AgeYears          int       `json:"age" yaml:"age"`
	HasDiabetes       bool      `json:"has_diabetes" yaml:"has_diabetes"`
	HasKidneyFailure  bool      `json:"has_kidney_failure" yaml:"has_kidney_failure"`
	HasRefeedingRisk  bool      `json:"has_refeeding_risk" yaml:"has_refeeding_risk"`
	BMI               float64   `json:"bmi,omitempty" yaml:"bmi,omitempty"`
	IdealWeight       float64   `json:"ideal_weight,omitempty" yaml:"ideal_weight,omitempty"`
	AdjustedWeight    float64   `json:"adjusted_weight,omitempty" yaml:"adjusted_weight,omitempty"`
	CalculationWeight float64   `json:"calculation_weight,omitempty" yaml:"calculation_weight,omitempty"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

type Mixture struct {
	ID                int64   `json:"id" yaml:"id"`
	Name              string  `json:"name" yaml:"name"`
	NameNorm          string  `json:"-" yaml:"-"`
	CaloriesPer1000ml float64 `json:"calories_per_1000ml" yaml:"calories_per_1000ml"`
	ProteinPer1000ml  float64 `json:"protein_per_1000ml" yaml:"protein_per_1000ml"`
	IsDiabetic        bool    `json:"is_diabetic" yaml:"is_diabetic"`
	IsSemiElemental   bool    `json:"is_semi_elemental" yaml:"is_semi_elemental"`
	IsDefault         bool    `json:"is_default" yaml:"is_default"`
}
