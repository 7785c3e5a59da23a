package tests

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCLIRejectsInvalidPatient(t *testing.T) {
	binPath := buildNutricuBinary(t)
	dbPath := filepath.Join(t.TempDir(), "nutricu.db")
	initDB(t, binPath, dbPath)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"patient", "add", "--id", "p1", "--gender", "male", "--height", "0", "--weight", "70", "--age", "50"}, "height must be > 0"},
		{[]string{"patient", "add", "--id", "p1", "--gender", "other", "--height", "170", "--weight", "70", "--age", "50"}, "gender must be male or female"},
		{[]string{"patient", "add", "--gender", "male", "--height", "170", "--weight", "70", "--age", "50"}, "patient id is required"},
	}
	for _, tc := range cases {
		_, stderr, exit := runNutricu(t, binPath, dbPath, tc.args...)
		if exit == 0 {
			t.Fatalf("expected %v to fail", tc.args)
		}
		if !strings.Contains(stderr, tc.want) {
			t.Fatalf("expected %q in stderr, got: %s", tc.want, stderr)
		}
	}
}

func TestCLIRejectsDuplicatePatientAndMixture(t *testing.T) {
	binPath := buildNutricuBinary(t)
	dbPath := filepath.Join(t.TempDir(), "nutricu.db")
	initDB(t, binPath, dbPath)

	add := []string{"patient", "add", "--id", "p1", "--gender", "female", "--height", "160", "--weight", "60", "--age", "40"}
	mustRun(t, binPath, dbPath, add...)
	_, stderr, exit := runNutricu(t, binPath, dbPath, add...)
	if exit == 0 || !strings.Contains(stderr, `patient with id "p1" already exists`) {
		t.Fatalf("expected duplicate patient rejected, exit=%d stderr=%s", exit, stderr)
	}

	_, stderr, exit = runNutricu(t, binPath, dbPath, "mixture", "add", "--name", "ПЕПТАМЕН ИНТЕНС", "--calories", "1000", "--protein", "90")
	if exit == 0 || !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected case-insensitive duplicate mixture rejected, exit=%d stderr=%s", exit, stderr)
	}
	_, stderr, exit = runNutricu(t, binPath, dbPath, "mixture", "add", "--name", "Water", "--calories", "0", "--protein", "0")
	if exit == 0 || !strings.Contains(stderr, "must be > 0") {
		t.Fatalf("expected zero density rejected, exit=%d stderr=%s", exit, stderr)
	}
}

func TestCLICalcInputErrors(t *testing.T) {
	binPath := buildNutricuBinary(t)
	dbPath := filepath.Join(t.TempDir(), "nutricu.db")
	initDB(t, binPath, dbPath)
	mustRun(t, binPath, dbPath, "patient", "add", "--id", "p1", "--gender", "male", "--height", "170", "--weight", "70", "--age", "54")

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "missing", "--mixture", "2"}, `patient "missing" not found`},
		{[]string{"calc", "p1", "--mixture", "99"}, "no known mixtures"},
		{[]string{"calc", "p1", "--mixture", "2", "--set", "8:2=100"}, "invalid day"},
		{[]string{"calc", "p1", "--mixture", "2", "--set", "1:5=100"}, "mixture 5 is not part of this calculation"},
		{[]string{"calc", "p1", "--mixture", "2", "--set", "1:2=-5"}, "volume must be >= 0"},
		{[]string{"calc", "p1"}, `required flag(s) "mixture" not set`},
	}
	for _, tc := range cases {
		_, stderr, exit := runNutricu(t, binPath, dbPath, tc.args...)
		if exit == 0 {
			t.Fatalf("expected %v to fail", tc.args)
		}
		if !strings.Contains(stderr, tc.want) {
			t.Fatalf("expected %q in stderr for %v, got: %s", tc.want, tc.args, stderr)
		}
	}
}

func TestCLIRejectsUnsupportedLanguage(t *testing.T) {
	binPath := buildNutricuBinary(t)
	dbPath := filepath.Join(t.TempDir(), "nutricu.db")

	_, stderr, exit := runNutricu(t, binPath, dbPath, "--lang", "de", "init")
	if exit == 0 || !strings.Contains(stderr, `unsupported language "de"`) {
		t.Fatalf("expected unsupported language rejected, exit=%d stderr=%s", exit, stderr)
	}
}

func TestCLIRestoreRequiresForce(t *testing.T) {
	binPath := buildNutricuBinary(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nutricu.db")
	initDB(t, binPath, dbPath)

	backup := filepath.Join(dir, "snap.db")
	mustRun(t, binPath, dbPath, "backup", "create", "--out", backup)
	if out := mustRun(t, binPath, dbPath, "backup", "verify", "--file", backup); !strings.Contains(out, "is valid") {
		t.Fatalf("expected backup verified, got: %s", out)
	}
	_, stderr, exit := runNutricu(t, binPath, dbPath, "backup", "restore", "--file", backup)
	if exit == 0 || !strings.Contains(stderr, "--force") {
		t.Fatalf("expected restore without --force refused, exit=%d stderr=%s", exit, stderr)
	}
}
