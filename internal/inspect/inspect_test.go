package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/funjit/internal/signature"
)

// writeSampleModule creates a self-contained module for the package
// loader to chew on.
func writeSampleModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	gomod := "module sample\n\ngo 1.25\n"
	src := `package sample

import "context"

func Scale(x float64, factor float64) float64 { return x * factor }

func Fetch(ctx context.Context, id int64) (string, error) { return "", nil }

func DivMod(a int64, b int64) (int64, int64) { return a / b, a % b }

func Each(xs []float64, f func(float64) float64) []float64 { return xs }

func Log(msg string) {}

func Apply(f any, x float64) float64 { return x }

func Generic[T any](v T) T { return v }

func Sum(xs ...int64) int64 { return 0 }

func Merge(m map[string]int64) int64 { return 0 }

func internal(x int64) int64 { return x }
`
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sample.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func inspectSample(t *testing.T) *Report {
	t.Helper()
	report, err := Inspect([]string{"."}, WithDir(writeSampleModule(t)))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	return report
}

func findFunction(t *testing.T, report *Report, name string) Function {
	t.Helper()
	for _, f := range report.Functions {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not in report", name)
	return Function{}
}

func TestInspectFindsExportedFunctions(t *testing.T) {
	report := inspectSample(t)

	if len(report.Functions) != 6 {
		names := make([]string, 0, len(report.Functions))
		for _, f := range report.Functions {
			names = append(names, f.Name)
		}
		t.Fatalf("found %d functions %v, want 6", len(report.Functions), names)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("skipped %d functions %v, want 3", len(report.Skipped), report.Skipped)
	}
}

func TestInspectParamNames(t *testing.T) {
	report := inspectSample(t)

	scale := findFunction(t, report, "Scale")
	if scale.Decl.NumParams() != 2 {
		t.Fatalf("Scale has %d params, want 2", scale.Decl.NumParams())
	}
	if got := scale.Decl.ParamAt(0).Name; got != "x" {
		t.Errorf("Scale param 0 = %q, want x", got)
	}
	if got := scale.Decl.ParamAt(1).Name; got != "factor" {
		t.Errorf("Scale param 1 = %q, want factor", got)
	}
}

func TestInspectContextAndErrorConventions(t *testing.T) {
	report := inspectSample(t)

	fetch := findFunction(t, report, "Fetch")
	if fetch.Decl.NumParams() != 1 {
		t.Fatalf("Fetch has %d params, want 1 (context dropped)", fetch.Decl.NumParams())
	}
	if got := fetch.Decl.ParamAt(0).Name; got != "id" {
		t.Errorf("Fetch param 0 = %q, want id", got)
	}
	if _, ok := fetch.Decl.Return(); !ok {
		t.Error("Fetch return annotation missing (error result should be stripped)")
	}
}

func TestInspectSkipReasons(t *testing.T) {
	report := inspectSample(t)

	reasons := make(map[string]string, len(report.Skipped))
	for _, s := range report.Skipped {
		reasons[s.Name] = s.Reason
	}

	if r := reasons["Generic"]; !strings.Contains(r, "generic") {
		t.Errorf("Generic skip reason = %q", r)
	}
	if r := reasons["Sum"]; !strings.Contains(r, "variadic") {
		t.Errorf("Sum skip reason = %q", r)
	}
	if r := reasons["Merge"]; !strings.Contains(r, "m") || !strings.Contains(r, "map[string]int64") {
		t.Errorf("Merge skip reason = %q", r)
	}
}

func TestReportBuild(t *testing.T) {
	report := inspectSample(t)
	resolved := report.Build(signature.DefaultBuilder())

	want := map[string]string{
		"Scale":  "float64(float64, float64)",
		"Fetch":  "string(int64)",
		"DivMod": "(int64, int64)(int64, int64)",
		"Each":   "[]float64([]float64, float64(float64))",
		"Log":    "void(string)",
	}
	got := make(map[string]string, len(resolved))
	for _, r := range resolved {
		if r.Err != nil {
			continue
		}
		got[r.Name] = r.Sig.String()
	}
	for name, sig := range want {
		if got[name] != sig {
			t.Errorf("%s = %q, want %q", name, got[name], sig)
		}
	}
}

func TestReportBuildNamesMissingParam(t *testing.T) {
	report := inspectSample(t)
	resolved := report.Build(signature.DefaultBuilder())

	for _, r := range resolved {
		if r.Name != "Apply" {
			continue
		}
		var missing *signature.MissingAnnotationError
		if !errors.As(r.Err, &missing) {
			t.Fatalf("Apply error = %v, want MissingAnnotationError", r.Err)
		}
		// The real parameter name from source, not a positional label.
		if missing.Name != "f" {
			t.Errorf("missing annotation name = %q, want f", missing.Name)
		}
		return
	}
	t.Fatal("Apply not in report")
}

func TestInspectBadPattern(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module empty\n\ngo 1.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect([]string{"./nope"}, WithDir(dir)); err == nil {
		t.Error("Inspect(missing package) error = nil, want failure")
	}
}
