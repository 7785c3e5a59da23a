package nutrition

import (
	"math"

	"github.com/saadjs/nutricu/internal/model"
)

// StepML is the volume change of one +/- adjustment.
const StepML = 10

type Severity string

const (
	SeverityWithinNorm Severity = "within_norm"
	SeverityModerate   Severity = "moderate"
	SeveritySevere     Severity = "severe"
)

const (
	withinNormDeviation = 7
	moderateDeviation   = 15
)

// Color is the display color of the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityWithinNorm:
		return ColorSuccess
	case SeverityModerate:
		return ColorWarning
	default:
		return ColorError
	}
}

// ClassifyDeviation buckets a signed deviation percentage by magnitude.
// Boundaries are inclusive: 7 is within norm, 15 is moderate.
func ClassifyDeviation(pct float64) Severity {
	abs := math.Abs(pct)
	switch {
	case abs <= withinNormDeviation:
		return SeverityWithinNorm
	case abs <= moderateDeviation:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

type VolumeResult struct {
	Day               int     `json:"day"`
	MixtureID         int64   `json:"mixture_id"`
	Volume            int     `json:"volume_ml"`
	Overridden        bool    `json:"overridden"`
	DeliveredCalories int     `json:"delivered_calories"`
	DeliveredProtein  float64 `json:"delivered_protein"`
	TargetCalories    int     `json:"target_calories"`
	TargetProtein     float64 `json:"target_protein"`
	CalorieDeviation  float64 `json:"calorie_deviation_pct"`
	ProteinDeviation  float64 `json:"protein_deviation_pct"`
}

func (r VolumeResult) CalorieSeverity() Severity {
	return ClassifyDeviation(r.CalorieDeviation)
}

func (r VolumeResult) ProteinSeverity() Severity {
	return ClassifyDeviation(r.ProteinDeviation)
}

func caloriesPerMl(m model.Mixture) float64 {
	return m.CaloriesPer1000ml / 1000
}

func proteinPerMl(m model.Mixture) float64 {
	return m.ProteinPer1000ml / 1000
}

// BaselineVolume is the volume in mL that meets the day's calorie target.
func BaselineVolume(d Day, m model.Mixture) int {
	v := RoundInt(float64(d.Calories) / caloriesPerMl(m))
	return clampVolume(v)
}

// ReconcileVolume computes the volume in effect for one day and mixture and
// what it delivers. A non-nil override replaces the baseline; stepDelta is
// added to whichever applies and the result never goes below 0 mL.
func ReconcileVolume(p model.Patient, d Day, m model.Mixture, override *int, stepDelta int) VolumeResult {
	volume := BaselineVolume(d, m)
	if override != nil {
		volume = *override
	}
	volume = clampVolume(float64(volume + stepDelta))

	deliveredCalories := int(RoundInt(float64(volume) * caloriesPerMl(m)))
	deliveredProtein := Round1(float64(volume) * proteinPerMl(m))
	targetProtein := TargetProtein(p, d)

	return VolumeResult{
		Day:               d.Day,
		MixtureID:         m.ID,
		Volume:            volume,
		Overridden:        override != nil,
		DeliveredCalories: deliveredCalories,
		DeliveredProtein:  deliveredProtein,
		TargetCalories:    d.Calories,
		TargetProtein:     targetProtein,
		CalorieDeviation:  Deviation(float64(deliveredCalories), float64(d.Calories)),
		ProteinDeviation:  Deviation(deliveredProtein, targetProtein),
	}
}

// Deviation is the signed percentage by which delivered misses target,
// one decimal: negative under, positive over, 0 exact.
func Deviation(delivered, target float64) float64 {
	return Round1(float64(delivered/target*100) - 100)
}

func clampVolume(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
