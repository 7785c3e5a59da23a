package nutrition

import "github.com/saadjs/nutricu/internal/model"

const (
	ColorError   = "#FF5252"
	ColorWarning = "#FFC107"
	ColorSuccess = "#4CAF50"
	ColorOrange  = "#FF9800"
)

// BMI category keys double as localization keys.
const (
	CategorySevereDeficit = "severeDef"
	CategoryDeficit       = "deficit"
	CategoryNormal        = "normal"
	CategoryOverweight    = "overweight"
	CategoryObesity1      = "obesity1"
	CategoryObesity2      = "obesity2"
	CategoryObesity3      = "obesity3"
)

// ObesityBMI is the BMI from which dosing switches to adjusted weight.
const ObesityBMI = 30

type BMICategory struct {
	Category string
	Color    string
}

// BMI is weight over height in metres squared, one decimal. A zero height
// yields +Inf or NaN; callers validate height before getting here.
func BMI(weightKg, heightCm float64) float64 {
	m := heightCm / 100
	return Round1(weightKg / (m * m))
}

func BMICategoryOf(bmi float64) BMICategory {
	switch {
	case bmi < 16:
		return BMICategory{Category: CategorySevereDeficit, Color: ColorError}
	case bmi < 18.5:
		return BMICategory{Category: CategoryDeficit, Color: ColorOrange}
	case bmi < 25:
		return BMICategory{Category: CategoryNormal, Color: ColorSuccess}
	case bmi < 30:
		return BMICategory{Category: CategoryOverweight, Color: ColorOrange}
	case bmi < 35:
		return BMICategory{Category: CategoryObesity1, Color: ColorError}
	case bmi < 40:
		return BMICategory{Category: CategoryObesity2, Color: ColorError}
	default:
		return BMICategory{Category: CategoryObesity3, Color: ColorError}
	}
}

// IdealWeight uses the Devine formula. Very short statures give small or
// negative values; no floor is applied.
func IdealWeight(heightCm float64, gender model.Gender) float64 {
	base := 45.5
	if gender == model.GenderMale {
		base = 50
	}
	// The explicit conversions keep the multiply and add from being fused.
	return Round1(base + float64(0.91*(heightCm-152.4)))
}

func AdjustedWeight(actualKg, idealKg float64) float64 {
	return Round1(float64(0.4*(actualKg-idealKg)) + idealKg)
}
