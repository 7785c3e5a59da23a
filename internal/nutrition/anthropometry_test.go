package nutrition_test

import (
	"math"
	"testing"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/nutrition"
)

func TestRound1MatchesDecimalRounding(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   float64
		want float64
	}{
		{22.75, 22.8},
		{0.325 * 70, 22.8},
		{0.15, 0.1},
		{0.25, 0.3},
		{1.05, 1.1},
		{-23.2456, -23.2},
		{-0.25, -0.3},
		{105, 105},
		{0, 0},
	}
	for _, tc := range cases {
		if got := nutrition.Round1(tc.in); got != tc.want {
			t.Fatalf("Round1(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
	if got := nutrition.Round1(math.Inf(1)); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf to pass through, got %v", got)
	}
	if got := nutrition.Round1(math.NaN()); !math.IsNaN(got) {
		t.Fatalf("expected NaN to pass through, got %v", got)
	}
}

func TestRoundIntHalfUp(t *testing.T) {
	t.Parallel()
	cases := map[float64]float64{2.5: 3, 2.4999: 2, 350: 350, 174.5: 175, 0.5: 1, -2.5: -2}
	for in, want := range cases {
		if got := nutrition.RoundInt(in); got != want {
			t.Fatalf("RoundInt(%v): expected %v, got %v", in, want, got)
		}
	}
}

func TestBMIFormula(t *testing.T) {
	t.Parallel()
	for _, w := range []float64{40, 55.5, 70, 88.8, 120, 180} {
		for _, h := range []float64{140, 155, 170, 182.5, 201} {
			m := h / 100
			want := nutrition.Round1(w / (m * m))
			if got := nutrition.BMI(w, h); got != want {
				t.Fatalf("BMI(%v, %v): expected %v, got %v", w, h, want, got)
			}
		}
	}
	if got := nutrition.BMI(70, 170); got != 24.2 {
		t.Fatalf("expected BMI 24.2, got %v", got)
	}
}

func TestBMIZeroHeightIsNotGuarded(t *testing.T) {
	t.Parallel()
	if got := nutrition.BMI(70, 0); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf for zero height, got %v", got)
	}
	if got := nutrition.BMI(0, 0); !math.IsNaN(got) {
		t.Fatalf("expected NaN for zero weight and height, got %v", got)
	}
}

func TestBMICategoryBoundaries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		bmi  float64
		want string
	}{
		{15.9, nutrition.CategorySevereDeficit},
		{16.0, nutrition.CategoryDeficit},
		{18.4, nutrition.CategoryDeficit},
		{18.5, nutrition.CategoryNormal},
		{24.9, nutrition.CategoryNormal},
		{25.0, nutrition.CategoryOverweight},
		{29.9, nutrition.CategoryOverweight},
		{30.0, nutrition.CategoryObesity1},
		{34.9, nutrition.CategoryObesity1},
		{35.0, nutrition.CategoryObesity2},
		{39.9, nutrition.CategoryObesity2},
		{40.0, nutrition.CategoryObesity3},
	}
	for _, tc := range cases {
		if got := nutrition.BMICategoryOf(tc.bmi).Category; got != tc.want {
			t.Fatalf("BMICategoryOf(%v): expected %s, got %s", tc.bmi, tc.want, got)
		}
	}
	if c := nutrition.BMICategoryOf(22).Color; c != nutrition.ColorSuccess {
		t.Fatalf("expected normal BMI colored success, got %s", c)
	}
	if c := nutrition.BMICategoryOf(27).Color; c != nutrition.ColorOrange {
		t.Fatalf("expected overweight BMI colored orange, got %s", c)
	}
}

func TestIdealAndAdjustedWeight(t *testing.T) {
	t.Parallel()
	if got := nutrition.IdealWeight(170, model.GenderMale); got != 66 {
		t.Fatalf("expected male ideal weight 66, got %v", got)
	}
	if got := nutrition.IdealWeight(170, model.GenderFemale); got != 61.5 {
		t.Fatalf("expected female ideal weight 61.5, got %v", got)
	}
	if got := nutrition.IdealWeight(80, model.GenderFemale); got >= 0 {
		t.Fatalf("expected unclamped negative ideal weight for 80cm, got %v", got)
	}
	if got := nutrition.AdjustedWeight(120, 66); got != 87.6 {
		t.Fatalf("expected adjusted weight 87.6, got %v", got)
	}
}
