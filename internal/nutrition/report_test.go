package nutrition_test

import (
	"strings"
	"testing"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
)

func keyLocalizer(key string) string {
	return key
}

func TestFormatPlanReportSnapshot(t *testing.T) {
	t.Parallel()
	p := nutrition.ComputeDerived(basePatient())
	p.HasRefeedingRisk = true

	got := nutrition.FormatPlanReport(p, nutrition.BuildPlan(p), keyLocalizer)
	want := `patientID: icu-7
gender: male
age: 54 years
height: 170 cm
actualWeight: 70 kg
bmi: 24.2 kgm2 (normal)
idealWeight: 66 kg
adjustedWeight: 67.6 kg
calculationWeight: 70 kg
diabetes: no
kidneyFailure: no
refeedingRisk: yes

nutritionPlan:
day 1: 350 kcal, 22.8 g proteinAmount
day 2: 700 kcal, 45.5 g proteinAmount
day 3: 1050 kcal, 68.3 g proteinAmount
day 4: 1400 kcal, 91 g proteinAmount
day 5: 1750 kcal, 91 g proteinAmount
day 6: 1750 kcal, 98 g proteinAmount
day 7: 2100 kcal, 105 g proteinAmount

refeedingWarning
refeedingInstructions
`
	if got != want {
		t.Fatalf("unexpected plan report:\n%s", got)
	}
}

func TestFormatPlanReportKidneyDialysisLines(t *testing.T) {
	t.Parallel()
	p := basePatient()
	p.HasKidneyFailure = true
	p = nutrition.ComputeDerived(p)

	got := nutrition.FormatPlanReport(p, nutrition.BuildPlan(p), keyLocalizer)
	if !strings.Contains(got, "day 7: 2100 kcal, 84 g proteinAmount\n  ifDialysis: 126 g proteinAmount\n") {
		t.Fatalf("expected kidney target and dialysis line for day 7, got:\n%s", got)
	}
	if strings.Count(got, "ifDialysis") != nutrition.PlanDays {
		t.Fatalf("expected one dialysis line per day")
	}
}

func TestFormatPlanReportSkipsUndefinedDerivedFields(t *testing.T) {
	t.Parallel()
	p := basePatient()
	got := nutrition.FormatPlanReport(p, nutrition.BuildPlan(p), keyLocalizer)
	for _, key := range []string{"bmi:", "idealWeight:", "adjustedWeight:", "calculationWeight:"} {
		if strings.Contains(got, key) {
			t.Fatalf("expected %s omitted when not computed", key)
		}
	}
}

func reportMixtures() []model.Mixture {
	return []model.Mixture{
		highEnergyMixture(),
		{ID: 5, Name: "Peptamen Intense", CaloriesPer1000ml: 1000, ProteinPer1000ml: 93, IsSemiElemental: true},
	}
}

func TestFormatCalculationReportAllMixturesWithoutSelection(t *testing.T) {
	t.Parallel()
	p := nutrition.ComputeDerived(basePatient())
	got := nutrition.FormatCalculationReport(p, nutrition.BuildPlan(p), reportMixtures(), nutrition.NewSession(), keyLocalizer)

	if n := strings.Count(got, "  * "); n != 2*nutrition.PlanDays {
		t.Fatalf("expected %d mixture subsections, got %d:\n%s", 2*nutrition.PlanDays, n, got)
	}
	wantDay1 := `day 1:
- requirement: 350 kcal, 22.8 g proteinAmount
  * Fresubin HP 2 kcal:
    - volume: 175 ml
    - energy: 350 kcal (matchesNorm)
    - protein: 17.5 g (23.2% belowNorm)
  * Peptamen Intense:
    - volume: 350 ml
    - energy: 350 kcal (matchesNorm)
    - protein: 32.5 g (42.5% aboveNorm)

`
	if !strings.Contains(got, wantDay1) {
		t.Fatalf("expected day 1 block:\n%s\ngot:\n%s", wantDay1, got)
	}
	if strings.Contains(got, "refeedingWarning") || strings.Contains(got, "kidneyWarning") {
		t.Fatalf("expected no advisories without flags")
	}
}

func TestFormatCalculationReportSelectedMixtureOnly(t *testing.T) {
	t.Parallel()
	p := nutrition.ComputeDerived(basePatient())
	p.HasRefeedingRisk = true
	p.HasKidneyFailure = true
	plan := nutrition.BuildPlan(p)
	day1, _ := plan.Day(1)

	s := nutrition.NewSession()
	s.ToggleExport(1, 5)
	s.Adjust(p, day1, reportMixtures()[1], -nutrition.StepML)

	got := nutrition.FormatCalculationReport(p, plan, reportMixtures(), s, keyLocalizer)
	day1Block := got[strings.Index(got, "day 1:"):strings.Index(got, "day 2:")]
	if strings.Count(day1Block, "  * ") != 1 || !strings.Contains(day1Block, "Peptamen Intense") {
		t.Fatalf("expected only the selected mixture on day 1, got:\n%s", day1Block)
	}
	if !strings.Contains(day1Block, "- volume: 340 ml") {
		t.Fatalf("expected adjusted volume in report, got:\n%s", day1Block)
	}
	day2Block := got[strings.Index(got, "day 2:"):strings.Index(got, "day 3:")]
	if strings.Count(day2Block, "  * ") != 2 {
		t.Fatalf("expected all mixtures on unselected day 2, got:\n%s", day2Block)
	}
	if !strings.HasSuffix(got, "\nrefeedingWarning\nrefeedingInstructions\n\nkidneyWarning\nkidneyInstructions\n") {
		t.Fatalf("expected refeeding then kidney advisories at the end, got:\n%s", got)
	}
}

func TestFormatCalculationReportSkipsUnresolvedSelection(t *testing.T) {
	t.Parallel()
	p := nutrition.ComputeDerived(basePatient())
	s := nutrition.NewSession()
	s.ToggleExport(3, 99)

	got := nutrition.FormatCalculationReport(p, nutrition.BuildPlan(p), reportMixtures(), s, keyLocalizer)
	if strings.Contains(got, "day 3:") {
		t.Fatalf("expected day with unresolved selection skipped, got:\n%s", got)
	}
	if !strings.Contains(got, "day 4:") {
		t.Fatalf("expected remaining days present")
	}
}

func TestFormatCalculationReportDeterministic(t *testing.T) {
	t.Parallel()
	p := nutrition.ComputeDerived(basePatient())
	plan := nutrition.BuildPlan(p)
	s := nutrition.NewSession()
	s.ToggleExport(2, 2)
	a := nutrition.FormatCalculationReport(p, plan, reportMixtures(), s, keyLocalizer)
	b := nutrition.FormatCalculationReport(p, plan, reportMixtures(), s, keyLocalizer)
	if a != b {
		t.Fatalf("expected identical report text for identical input")
	}
}

func TestFormatDeviation(t *testing.T) {
	t.Parallel()
	if got := nutrition.FormatDeviation(-23.2, keyLocalizer); got != "23.2% belowNorm" {
		t.Fatalf("unexpected negative deviation text %q", got)
	}
	if got := nutrition.FormatDeviation(8.6, keyLocalizer); got != "8.6% aboveNorm" {
		t.Fatalf("unexpected positive deviation text %q", got)
	}
	if got := nutrition.FormatDeviation(0, keyLocalizer); got != "matchesNorm" {
		t.Fatalf("unexpected zero deviation text %q", got)
	}
}
