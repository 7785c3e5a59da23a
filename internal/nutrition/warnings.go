package nutrition

import "github.com/saadjs/nutricu/internal/model"

// Warning keys double as localization keys.
const (
	WarningDiabeticMixture      = "diabeticWarning"
	WarningSemiElementalMixture = "semiElementalWarning"
)

// SelectionWarnings flags mixture choices that need a clinician's attention:
// non-diabetic formulas for a diabetic patient, and any semi-elemental formula.
func SelectionWarnings(p model.Patient, mixtures []model.Mixture) []string {
	var diabetic, semiElemental bool
	for _, m := range mixtures {
		if p.HasDiabetes && !m.IsDiabetic {
			diabetic = true
		}
		if m.IsSemiElemental {
			semiElemental = true
		}
	}
	warnings := make([]string, 0, 2)
	if diabetic {
		warnings = append(warnings, WarningDiabeticMixture)
	}
	if semiElemental {
		warnings = append(warnings, WarningSemiElementalMixture)
	}
	return warnings
}
