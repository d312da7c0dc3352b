package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunListExportDelete(t *testing.T) {
	dir := t.TempDir()
	figure := filepath.Join(dir, "energy.png")

	out, err := execute(t, "run", "pendulum",
		"--data", dir,
		"--steps", "20",
		"--integrators", "rk4,midpoint",
		"--figure", figure,
		"--no-ascii",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if got := strings.Count(out, "run id:"); got != 2 {
		t.Fatalf("expected 2 saved runs, got %d:\n%s", got, out)
	}
	if _, err := os.Stat(figure); err != nil {
		t.Fatalf("figure not written: %v", err)
	}

	out, err = execute(t, "list", "--data", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pendulum") || !strings.Contains(out, "midpoint") {
		t.Fatalf("list output missing runs:\n%s", out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	id := strings.Fields(lines[1])[0]

	exported := filepath.Join(dir, "run.json")
	if _, err := execute(t, "export", id, "--data", dir, "-o", exported); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	var data struct {
		Model  string      `json:"model"`
		Steps  int         `json:"steps"`
		States [][]float64 `json:"states"`
		Energy []float64   `json:"energy"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	got := []int{data.Steps, len(data.States), len(data.Energy)}
	if diff := cmp.Diff([]int{20, 21, 21}, got); diff != "" {
		t.Errorf("exported sizes (-want +got):\n%s", diff)
	}
	if data.Model != "pendulum" {
		t.Errorf("model = %q", data.Model)
	}

	out, err = execute(t, "show", id, "--data", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "integrator:") || !strings.Contains(out, "energy_drift") {
		t.Errorf("show output incomplete:\n%s", out)
	}

	if _, err := execute(t, "delete", id, "--data", dir, "-q"); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "list", "--data", dir)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(strings.Split(strings.TrimSpace(out), "\n")); n != 2 {
		t.Errorf("expected one run left, got %d lines:\n%s", n-1, out)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]string{
		"unknown model":      {"run", "nosuch", "--no-store", "--figure", ""},
		"unknown preset":     {"run", "pendulum", "--preset", "nosuch"},
		"negative dt":        {"run", "pendulum", "--dt", "-0.1", "--no-store"},
		"unknown solver":     {"run", "--solver", "bisection", "--no-store"},
		"bad param":          {"run", "pendulum", "--param", "length=abc", "--no-store"},
		"param on ur5":       {"run", "ur5", "--param", "mass=2", "--no-store"},
		"preset with config": {"run", "--preset", "rest", "--config", filepath.Join(dir, "x.yaml")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := execute(t, append(args, "--data", dir)...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestListings(t *testing.T) {
	out, err := execute(t, "models")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ur5", "pendulum", "implicit_euler", "semi-implicit Euler"} {
		if !strings.Contains(out, want) {
			t.Errorf("models output missing %q", want)
		}
	}

	out, err = execute(t, "presets", "stiff")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("stiff: fixed_point, newton", strings.TrimSpace(out)); diff != "" {
		t.Errorf("presets (-want +got):\n%s", diff)
	}

	out, err = execute(t, "list", "--data", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "no runs found" {
		t.Errorf("list on empty catalog: %q", out)
	}
}
