package nutrition

import (
	"math"
	"strconv"
	"strings"

	"github.com/saadjs/nutricu/internal/model"
)

// Localizer maps a message key to display text in the active language.
type Localizer func(key string) string

// FormatDeviation renders a signed deviation as "N% below norm",
// "N% above norm" or "matches norm".
func FormatDeviation(pct float64, t Localizer) string {
	switch {
	case pct < 0:
		return FormatNumber(math.Abs(pct)) + "% " + t("belowNorm")
	case pct > 0:
		return FormatNumber(pct) + "% " + t("aboveNorm")
	default:
		return t("matchesNorm")
	}
}

// FormatCalculationReport renders the plan together with the volumes in
// effect for each day. A day with an export selection lists only that
// mixture; other days list every mixture in mixtures. A selection naming a
// mixture missing from mixtures drops that day from the report.
func FormatCalculationReport(p model.Patient, plan Plan, mixtures []model.Mixture, s *Session, t Localizer) string {
	var b strings.Builder
	writePatientHeader(&b, p, t)
	b.WriteString("\n")

	b.WriteString(t("nutritionPlan") + ":\n")
	for _, d := range plan.Days {
		considered := mixtures
		if id, ok := s.ExportSelection(d.Day); ok {
			m, found := findMixture(mixtures, id)
			if !found {
				continue
			}
			considered = []model.Mixture{m}
		}

		b.WriteString(t("day") + " " + strconv.Itoa(d.Day) + ":\n")
		b.WriteString("- " + t("requirement") + ": " + strconv.Itoa(d.Calories) + " " + t("kcal") + ", " +
			FormatNumber(TargetProtein(p, d)) + " " + t("g") + " " + t("proteinAmount") + "\n")
		for _, m := range considered {
			res := s.Reconcile(p, d, m)
			b.WriteString("  * " + m.Name + ":\n")
			b.WriteString("    - " + t("volume") + ": " + strconv.Itoa(res.Volume) + " " + t("ml") + "\n")
			b.WriteString("    - " + t("energy") + ": " + strconv.Itoa(res.DeliveredCalories) + " " + t("kcal") +
				" (" + FormatDeviation(res.CalorieDeviation, t) + ")\n")
			b.WriteString("    - " + t("protein") + ": " + FormatNumber(res.DeliveredProtein) + " " + t("g") +
				" (" + FormatDeviation(res.ProteinDeviation, t) + ")\n")
		}
		b.WriteString("\n")
	}

	if p.HasRefeedingRisk {
		b.WriteString(t("refeedingWarning") + "\n")
		b.WriteString(t("refeedingInstructions") + "\n")
	}
	if p.HasKidneyFailure {
		b.WriteString("\n" + t("kidneyWarning") + "\n")
		b.WriteString(t("kidneyInstructions") + "\n")
	}
	return b.String()
}

// FormatPlanReport renders the patient and the bare 7-day targets without any
// mixture.
func FormatPlanReport(p model.Patient, plan Plan, t Localizer) string {
	var b strings.Builder
	writePatientHeader(&b, p, t)
	b.WriteString("\n")

	b.WriteString(t("nutritionPlan") + ":\n")
	for _, d := range plan.Days {
		b.WriteString(t("day") + " " + strconv.Itoa(d.Day) + ": " + strconv.Itoa(d.Calories) + " " + t("kcal") + ", " +
			FormatNumber(TargetProtein(p, d)) + " " + t("g") + " " + t("proteinAmount") + "\n")
		if p.HasKidneyFailure && d.ProteinWithDialysis != nil {
			b.WriteString("  " + t("ifDialysis") + ": " + FormatNumber(*d.ProteinWithDialysis) + " " + t("g") + " " + t("proteinAmount") + "\n")
		}
	}

	if p.HasRefeedingRisk {
		b.WriteString("\n" + t("refeedingWarning") + "\n")
		b.WriteString(t("refeedingInstructions") + "\n")
	}
	return b.String()
}

func writePatientHeader(b *strings.Builder, p model.Patient, t Localizer) {
	gender := t("female")
	if p.Gender == model.GenderMale {
		gender = t("male")
	}
	b.WriteString(t("patientID") + ": " + p.ID + "\n")
	b.WriteString(t("gender") + ": " + gender + "\n")
	b.WriteString(t("age") + ": " + strconv.Itoa(p.AgeYears) + " " + t("years") + "\n")
	b.WriteString(t("height") + ": " + FormatNumber(p.HeightCm) + " " + t("cm") + "\n")
	b.WriteString(t("actualWeight") + ": " + FormatNumber(p.WeightKg) + " " + t("kg") + "\n")

	if defined(p.BMI) {
		b.WriteString(t("bmi") + ": " + FormatNumber(p.BMI) + " " + t("kgm2") + " (" + t(BMICategoryOf(p.BMI).Category) + ")\n")
	}
	if defined(p.IdealWeight) {
		b.WriteString(t("idealWeight") + ": " + FormatNumber(p.IdealWeight) + " " + t("kg") + "\n")
	}
	if defined(p.AdjustedWeight) {
		b.WriteString(t("adjustedWeight") + ": " + FormatNumber(p.AdjustedWeight) + " " + t("kg") + "\n")
	}
	if defined(p.CalculationWeight) {
		b.WriteString(t("calculationWeight") + ": " + FormatNumber(p.CalculationWeight) + " " + t("kg") + "\n")
	}

	b.WriteString(t("diabetes") + ": " + yesNo(p.HasDiabetes, t) + "\n")
	b.WriteString(t("kidneyFailure") + ": " + yesNo(p.HasKidneyFailure, t) + "\n")
	b.WriteString(t("refeedingRisk") + ": " + yesNo(p.HasRefeedingRisk, t) + "\n")
}

// A derived value of 0 or NaN counts as not computed.
func defined(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

func yesNo(v bool, t Localizer) string {
	if v {
		return t("yes")
	}
	return t("no")
}

func findMixture(mixtures []model.Mixture, id int64) (model.Mixture, bool) {
	for _, m := range mixtures {
		if m.ID == id {
			return m, true
		}
	}
	return model.Mixture{}, false
}
