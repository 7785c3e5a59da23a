package service_test

import (
	"strings"
	"testing"

	"github.com/saadjs/nutricu/internal/model"
	"github.com/saadjs/nutricu/internal/service"
)

func TestAddPatientStoresDerivedFields(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	p, err := service.AddPatient(sqldb, adultMale("icu-7"))
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}
	if p.BMI != 24.2 || p.IdealWeight != 66 || p.CalculationWeight != 70 {
		t.Fatalf("unexpected derived fields: %+v", p)
	}

	got, err := service.GetPatient(sqldb, "icu-7")
	if err != nil {
		t.Fatalf("get patient: %v", err)
	}
	if got.Gender != model.GenderMale || got.AgeYears != 54 || got.AdjustedWeight != 67.6 {
		t.Fatalf("unexpected stored patient: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps stored")
	}
}

func TestAddPatientRejectsDuplicateID(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if _, err := service.AddPatient(sqldb, adultMale("icu-7")); err != nil {
		t.Fatalf("add patient: %v", err)
	}
	_, err := service.AddPatient(sqldb, adultMale(" icu-7 "))
	if err == nil || err.Error() != `patient with id "icu-7" already exists` {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestAddPatientValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	cases := map[string]func(*service.PatientInput){
		"patient id is required":        func(in *service.PatientInput) { in.ID = "  " },
		"gender must be male or female": func(in *service.PatientInput) { in.Gender = "other" },
		"height must be > 0":            func(in *service.PatientInput) { in.HeightCm = 0 },
		"weight must be > 0":            func(in *service.PatientInput) { in.WeightKg = -3 },
		"age must be > 0":               func(in *service.PatientInput) { in.AgeYears = 0 },
	}
	for want, mutate := range cases {
		in := adultMale("p")
		mutate(&in)
		if _, err := service.AddPatient(sqldb, in); err == nil || err.Error() != want {
			t.Fatalf("expected %q, got %v", want, err)
		}
	}
}

func TestUpdatePatientRecomputesAndKeepsID(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	created, err := service.AddPatient(sqldb, adultMale("icu-7"))
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}
	in := adultMale("ignored")
	in.WeightKg = 86.7
	in.HasKidneyFailure = true
	updated, err := service.UpdatePatient(sqldb, "icu-7", in)
	if err != nil {
		t.Fatalf("update patient: %v", err)
	}
	if updated.ID != "icu-7" {
		t.Fatalf("expected id unchanged, got %q", updated.ID)
	}
	if updated.BMI != 30 || updated.CalculationWeight != 74.3 {
		t.Fatalf("expected recomputed obese dosing weight, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at preserved")
	}
	if exists, _ := service.PatientExists(sqldb, "ignored"); exists {
		t.Fatalf("expected no patient created under the input id")
	}

	if _, err := service.UpdatePatient(sqldb, "missing", in); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListPatientsNewestFirstAndDelete(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := service.AddPatient(sqldb, adultMale(id)); err != nil {
			t.Fatalf("add patient %s: %v", id, err)
		}
	}
	list, err := service.ListPatients(sqldb)
	if err != nil {
		t.Fatalf("list patients: %v", err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("expected newest first, got %v", patientIDs(list))
	}

	if err := service.DeletePatient(sqldb, "b"); err != nil {
		t.Fatalf("delete patient: %v", err)
	}
	if err := service.DeletePatient(sqldb, "b"); err == nil {
		t.Fatalf("expected error deleting missing patient")
	}
	if exists, err := service.PatientExists(sqldb, "b"); err != nil || exists {
		t.Fatalf("expected patient b gone, exists=%t err=%v", exists, err)
	}
}

func patientIDs(list []model.Patient) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}
