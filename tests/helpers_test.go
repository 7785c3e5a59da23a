package tests

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func buildNutricuBinary(t *testing.T) string {
	t.Helper()
	repoRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}
	binPath := filepath.Join(t.TempDir(), "nutricu")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build nutricu binary: %v\n%s", err, string(out))
	}
	return binPath
}

func runNutricu(t *testing.T, binPath, dbPath string, args ...string) (string, string, int) {
	t.Helper()
	return runNutricuInput(t, binPath, dbPath, "", args...)
}

func runNutricuInput(t *testing.T, binPath, dbPath, stdin string, args ...string) (string, string, int) {
	t.Helper()
	allArgs := append([]string{"--db", dbPath}, args...)
	cmd := exec.Command(binPath, allArgs...)
	cmd.Env = append(cmd.Environ(), "NUTRICU_LANG=", "NUTRICU_LOG_LEVEL=")
	cmd.Stdin = strings.NewReader(stdin)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), 0
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("run nutricu command: %v", err)
	}
	return stdout.String(), stderr.String(), exitErr.ExitCode()
}

func initDB(t *testing.T, binPath, dbPath string) {
	t.Helper()
	_, stderr, exit := runNutricu(t, binPath, dbPath, "init")
	if exit != 0 {
		t.Fatalf("init db failed: exit=%d stderr=%s", exit, stderr)
	}
}

func mustRun(t *testing.T, binPath, dbPath string, args ...string) string {
	t.Helper()
	stdout, stderr, exit := runNutricu(t, binPath, dbPath, args...)
	if exit != 0 {
		t.Fatalf("%v failed: exit=%d stderr=%s", args, exit, stderr)
	}
	return stdout
}
