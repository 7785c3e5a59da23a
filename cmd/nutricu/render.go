package nutricu

import (
	"fmt"
	"io"
	"strconv"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
)

func severityKey(s nutrition.Severity) string {
	switch s {
	case nutrition.SeverityWithinNorm:
		return "withinNorm"
	case nutrition.SeverityModerate:
		return "moderateDeviation"
	default:
		return "severeDeviation"
	}
}

// renderDay prints the requirement of one day and the volume in effect for
// every mixture. The selected mixture is marked with "*" and overridden
// volumes with "!".
func renderDay(w io.Writer, p model.Patient, d nutrition.Day, mixtures []model.Mixture, s *nutrition.Session, t nutrition.Localizer) {
	fmt.Fprintf(w, "%s %d: %s %d %s, %s %s %s\n",
		t("day"), d.Day, t("requirement"), d.Calories, t("kcal"),
		nutrition.FormatNumber(nutrition.TargetProtein(p, d)), t("g"), t("proteinAmount"))

	selected, hasSelection := s.ExportSelection(d.Day)
	for _, m := range mixtures {
		res := s.Reconcile(p, d, m)
		mark := " "
		if hasSelection && selected == m.ID {
			mark = "*"
		}
		volume := strconv.Itoa(res.Volume)
		if res.Overridden {
			volume += "!"
		}
		fmt.Fprintf(w, "  %s %d\t%s\t%s %s\t%d %s (%s, %s)\t%s %s (%s, %s)\n",
			mark, m.ID, m.Name,
			volume, t("ml"),
			res.DeliveredCalories, t("kcal"), nutrition.FormatDeviation(res.CalorieDeviation, t), t(severityKey(res.CalorieSeverity())),
			nutrition.FormatNumber(res.DeliveredProtein), t("g"), nutrition.FormatDeviation(res.ProteinDeviation, t), t(severityKey(res.ProteinSeverity())),
		)
	}
}

func renderTable(w io.Writer, p model.Patient, plan nutrition.Plan, mixtures []model.Mixture, s *nutrition.Session, t nutrition.Localizer) {
	for i, d := range plan.Days {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderDay(w, p, d, mixtures, s, t)
	}
}

func renderWarnings(w io.Writer, p model.Patient, mixtures []model.Mixture, t nutrition.Localizer) {
	for _, key := range nutrition.SelectionWarnings(p, mixtures) {
		fmt.Fprintf(w, "! %s\n", t(key))
	}
}
