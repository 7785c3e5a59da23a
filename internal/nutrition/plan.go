package nutrition

import "github.com/saadjs/nutricu/internal/model"

const PlanDays = 7

const (
	kidneyFailureProteinFactor = 0.8
	dialysisProteinFactor      = 1.2
)

type rampStep struct {
	day           int
	caloriesPerKg float64
	proteinPerKg  float64
}

// Standard ICU refeeding ramp.
var ramp = [PlanDays]rampStep{
	{day: 1, caloriesPerKg: 5, proteinPerKg: 0.325},
	{day: 2, caloriesPerKg: 10, proteinPerKg: 0.65},
	{day: 3, caloriesPerKg: 15, proteinPerKg: 0.975},
	{day: 4, caloriesPerKg: 20, proteinPerKg: 1.3},
	{day: 5, caloriesPerKg: 25, proteinPerKg: 1.3},
	{day: 6, caloriesPerKg: 25, proteinPerKg: 1.4},
	{day: 7, caloriesPerKg: 30, proteinPerKg: 1.5},
}

// Day holds one day's targets. The kidney fields are set only for patients
// with kidney failure and both derive from the base Protein.
type Day struct {
	Day                      int      `json:"day"`
	Calories                 int      `json:"calories"`
	Protein                  float64  `json:"protein"`
	ProteinWithKidneyFailure *float64 `json:"protein_with_kidney_failure,omitempty"`
	ProteinWithDialysis      *float64 `json:"protein_with_dialysis,omitempty"`
}

type Plan struct {
	Days []Day `json:"days"`
}

// BuildPlan computes the 7-day ramp from the patient's dosing weight.
func BuildPlan(p model.Patient) Plan {
	weight := CalculationWeight(p)
	days := make([]Day, 0, PlanDays)
	for _, step := range ramp {
		protein := Round1(step.proteinPerKg * weight)
		d := Day{
			Day:      step.day,
			Calories: int(RoundInt(step.caloriesPerKg * weight)),
			Protein:  protein,
		}
		if p.HasKidneyFailure {
			kidney := Round1(protein * kidneyFailureProteinFactor)
			dialysis := Round1(protein * dialysisProteinFactor)
			d.ProteinWithKidneyFailure = &kidney
			d.ProteinWithDialysis = &dialysis
		}
		days = append(days, d)
	}
	return Plan{Days: days}
}

func (p Plan) Day(n int) (Day, bool) {
	for _, d := range p.Days {
		if d.Day == n {
			return d, true
		}
	}
	return Day{}, false
}

// TargetProtein is the protein goal used for deviation: the kidney-failure
// value when the patient has kidney failure and it is present, else base.
func TargetProtein(p model.Patient, d Day) float64 {
	if p.HasKidneyFailure && d.ProteinWithKidneyFailure != nil {
		return *d.ProteinWithKidneyFailure
	}
	return d.Protein
}
