package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/KaramelBytes/housedash/internal/catalog"
	"github.com/KaramelBytes/housedash/internal/dataset"
)

// runCmd executes the root command with args and returns what it printed.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset bound variables and Changed state that persist across invocations
	cfgFile, debug, dataPath = "", false, ""
	descOutputPath, descJSON = "", false
	rndCategorical, rndComparison, rndX, rndY = "", "", "", ""
	rndFormat, rndOutputPath, rndWidth, rndHeight = "svg", "", 0, 0
	serveAddr = ""
	unchange := func(fl *pflag.Flag) { fl.Changed = false }
	rootCmd.PersistentFlags().VisitAll(unchange)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(unchange)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// isolate points HOME at a temp dir and writes a small housing CSV into it.
func isolate(t *testing.T) (home, csv string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	var b strings.Builder
	b.WriteString("Id,MSSubClass,Neighborhood,Alley,GrLivArea,SalePrice\n")
	hoods := []string{"NAmes", "CollgCr", "OldTown", "Edwards"}
	for i := 0; i < 24; i++ {
		alley := "NA"
		if i%4 == 0 {
			alley = "Grvl"
		}
		fmt.Fprintf(&b, "%d,%d,%s,%s,%d,%d\n", i+1, 20+40*(i%2), hoods[i%4], alley, 900+25*i, 120000+2500*i)
	}
	csv = filepath.Join(home, "train.csv")
	if err := os.WriteFile(csv, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return home, csv
}

func TestCLI_DescribeMarkdownAndJSON(t *testing.T) {
	_, csv := isolate(t)

	out, err := runCmd(t, "describe", csv)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	for _, want := range []string{"[DATASET SUMMARY]", "[DROPPED COLUMNS]", "Alley", "[FEATURE CATALOG]", "MSSubClass"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q", want)
		}
	}

	outPath := filepath.Join(t.TempDir(), "profile.json")
	if _, err := runCmd(t, "describe", csv, "--json", "-o", outPath); err != nil {
		t.Fatalf("describe --json: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if !strings.Contains(string(b), `"kind": "categorical"`) || !strings.Contains(string(b), `"target": "SalePrice"`) {
		t.Fatalf("unexpected profile json: %s", b)
	}
}

func TestCLI_RenderCharts(t *testing.T) {
	home, csv := isolate(t)

	out, err := runCmd(t, "--data", csv, "render", "count")
	if err != nil {
		t.Fatalf("render count: %v", err)
	}
	if !strings.Contains(out, "<svg") {
		t.Fatalf("expected svg on stdout, got %.80q", out)
	}

	pngPath := filepath.Join(home, "charts", "hist.png")
	if _, err := runCmd(t, "--data", csv, "render", "histogram", "-f", "png", "-o", pngPath, "--width", "320", "--height", "200"); err != nil {
		t.Fatalf("render histogram: %v", err)
	}
	b, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}

	out, err = runCmd(t, "--data", csv, "render", "comparison", "--comparison", "MSSubClass", "-f", "json")
	if err != nil {
		t.Fatalf("render comparison json: %v", err)
	}
	if !strings.Contains(out, `"kind": "stacked_bar"`) || !strings.Contains(out, "Count of Neighborhood by MSSubClass") {
		t.Fatalf("unexpected spec: %s", out)
	}
}

func TestCLI_RenderRejectsBadInput(t *testing.T) {
	_, csv := isolate(t)

	_, err := runCmd(t, "--data", csv, "render", "scatter", "--x", "Neighborhood")
	var nf *catalog.ColumnNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ColumnNotFoundError, got %v", err)
	}
	if _, err := runCmd(t, "--data", csv, "render", "pie"); err == nil {
		t.Fatalf("expected error for unknown chart")
	}
	_, err = runCmd(t, "--data", filepath.Join(t.TempDir(), "missing.csv"), "render", "count")
	var le *dataset.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home, _ := isolate(t)

	if _, err := runCmd(t, "config", "set", "histogram_bins", "30"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".housedash", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "histogram_bins: 30") {
		t.Fatalf("config show missing new value:\n%s", out)
	}
	if _, err := runCmd(t, "config", "set", "histogram_bins", "-1"); err == nil {
		t.Fatalf("expected validation error")
	}
}
