package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/energyconsortium/energydash-go/pkg/energydash"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--width", "200", "--height", "120"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "energydash dev\n" {
		t.Errorf("output = %q", out)
	}
}

func TestList(t *testing.T) {
	out, err := run(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 21 {
		t.Fatalf("lines = %d, want header + 20 panels", len(lines))
	}
	if !strings.HasPrefix(lines[0], "PAGE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(out, "2014,2015,2016") {
		t.Error("map variants not listed")
	}

	out, err = run(t, "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var pages []models.PageSpec
	if err := json.Unmarshal([]byte(out), &pages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pages) != 4 {
		t.Errorf("pages = %d", len(pages))
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"png", []string{"export", "energy-growth", "--out", dir}, "energy_chart.png"},
		{"xlsx", []string{"export", "crude-oil", "-f", "xlsx", "--out", dir}, "Crude_Oil.xlsx"},
		{"variant", []string{"export", "renewable-map", "--variant", "2015", "-f", "xlsx", "--out", dir}, "renewable_potential_2015.xlsx"},
		{"report", []string{"report", "production", "--out", dir}, "production.pdf"},
		{"archive", []string{"archive", "home", "--out", dir}, "home.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			path := filepath.Join(dir, tt.want)
			if strings.TrimSpace(out) != path {
				t.Errorf("output = %q, want %q", out, path)
			}
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				t.Errorf("stat %s: %v", path, err)
			}
		})
	}
}

func TestExportErrors(t *testing.T) {
	tests := [][]string{
		{"export", "nope"},
		{"export", "crude-oil", "--format", "gif"},
		{"export", "crude-oil", "--format", "pdf"},
		{"export", "renewable-map", "--variant", "1999"},
		{"report", "nowhere"},
		{"export"},
		{"--theme", "sepia", "list"},
	}
	for _, args := range tests {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "export", "refinery-utilisation", "-f", "xlsx", "--out", dir); err != nil {
		t.Fatal(err)
	}
	book := filepath.Join(dir, "ChartD_Data.xlsx")

	out, err := run(t, "inspect", book)
	if err != nil {
		t.Fatal(err)
	}
	var wb models.WorkbookData
	if err := json.Unmarshal([]byte(out), &wb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wb.Sheets["ChartData"].Rows) != 12 {
		t.Errorf("rows = %d", len(wb.Sheets["ChartData"].Rows))
	}

	areas := filepath.Join(dir, "areas")
	if _, err := run(t, "inspect", book, "--pretty", "--print-areas-dir", areas); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(areas, "ChartData_area1.json"))
	if err != nil {
		t.Fatal(err)
	}
	var view models.PrintAreaView
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatal(err)
	}
	if view.Area != (models.PrintArea{R1: 1, C1: 1, R2: 12, C2: 3}) || len(view.Rows) != 12 {
		t.Errorf("view = %+v", view.Area)
	}

	if _, err := run(t, "inspect", book, "--mode", "heavy"); err == nil {
		t.Error("invalid mode accepted")
	}
	if _, err := run(t, "inspect", filepath.Join(dir, "missing.xlsx")); !errors.Is(err, energydash.ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestExportNoMount(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "export", "energy-growth", "--no-mount", "--out", dir)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("output = %q, want nothing", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "energy_chart.png")); !os.IsNotExist(err) {
		t.Errorf("stat = %v, want no file", err)
	}

	if _, err := run(t, "--strict", "export", "energy-growth", "--no-mount", "--out", dir); !errors.Is(err, energydash.ErrNoChartHandle) {
		t.Errorf("strict err = %v, want ErrNoChartHandle", err)
	}
}
