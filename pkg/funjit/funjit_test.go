package funjit

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func axpy(a float64, x float64, y float64) float64 { return a*x + y }

func addIF(x int64, y float64) float64 { return float64(x) + y }

func TestBuildMatchesHandBuilt(t *testing.T) {
	sig, err := Build(axpy)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := NewSignature(Float64, Float64, Float64, Float64)
	if !sig.Equal(want) {
		t.Errorf("Build() = %s, want %s", sig, want)
	}
}

func TestResolveIdempotent(t *testing.T) {
	got, err := Resolve(Float64, DefaultMapping())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !Equal(got, Float64) {
		t.Errorf("Resolve(float64) = %s, want float64", got)
	}
}

func TestDefaultMappingTable(t *testing.T) {
	m := DefaultMapping()
	tests := []struct {
		key  any
		want Type
	}{
		{nil, Void},
		{int(0), Int64},
		{float64(0), Float64},
		{false, Boolean},
	}
	for _, tt := range tests {
		got, err := Resolve(reflectOrNil(tt.key), m)
		if err != nil {
			t.Fatalf("Resolve(%v) error = %v", tt.key, err)
		}
		if !Equal(got, tt.want) {
			t.Errorf("Resolve(%v) = %s, want %s", tt.key, got, tt.want)
		}
	}
}

// reflectOrNil turns a sample value into its reflect.Type annotation,
// keeping nil as the void annotation.
func reflectOrNil(v any) any {
	if v == nil {
		return nil
	}
	return reflect.TypeOf(v)
}

func TestMissingArgPolicies(t *testing.T) {
	partial := func(x int64, y any) float64 { return 0 }

	_, err := Build(partial)
	var missing *MissingAnnotationError
	if !errors.As(err, &missing) {
		t.Fatalf("Build() error = %v, want MissingAnnotationError", err)
	}
	if missing.Name != "arg1" {
		t.Errorf("missing annotation name = %q, want arg1", missing.Name)
	}

	m := NewManager(WithOnMissingArg(reflect.TypeOf(int(0))))
	sig, err := m.Build(partial)
	if err != nil {
		t.Fatalf("Build() with fallback error = %v", err)
	}
	want := NewSignature(Float64, Int64, Int64)
	if !sig.Equal(want) {
		t.Errorf("Build() = %s, want %s", sig, want)
	}
}

func TestMissingReturnPolicy(t *testing.T) {
	partial := func(x int64) any { return nil }

	_, err := Build(partial)
	var missing *MissingAnnotationError
	if !errors.As(err, &missing) {
		t.Fatalf("Build() error = %v, want MissingAnnotationError", err)
	}
	if missing.Name != ReturnParam {
		t.Errorf("missing annotation name = %q, want %q", missing.Name, ReturnParam)
	}

	m := NewManager(WithOnMissingRet(reflect.TypeOf(float64(0))))
	sig, err := m.Build(partial)
	if err != nil {
		t.Fatalf("Build() with fallback error = %v", err)
	}
	if !Equal(sig.Return(), Float64) {
		t.Errorf("return = %s, want float64", sig.Return())
	}
}

func TestUnknownAnnotationMentionsValue(t *testing.T) {
	d := NewDecl("fun2",
		[]Param{NewParam("x", Int64), NewParam("y", 888)},
		Float64)

	_, err := Build(d)
	var unknown *UnknownAnnotationError
	if !errors.As(err, &unknown) {
		t.Fatalf("Build() error = %v, want UnknownAnnotationError", err)
	}
	if !strings.Contains(err.Error(), "888") {
		t.Errorf("error %q does not mention the annotation value", err)
	}
}

func TestCustomMappingAlias(t *testing.T) {
	m := NewManager(WithMapping(DefaultMapping().Merge(Mapping{"a": Float64})))
	d := NewDecl("fun3",
		[]Param{NewParam("x", "a"), NewParam("y", "a")},
		"a")

	sig, err := m.Build(d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := sig.String(); got != "float64(float64, float64)" {
		t.Errorf("Build() = %q, want float64(float64, float64)", got)
	}
}

func TestForwardReferenceMirroring(t *testing.T) {
	fun1a := func(x int64, y float64) float64 { return y }
	d1, err := Describe(fun1a, WithParamNames("x", "y"))
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	d2 := NewDecl("fun1b",
		[]Param{
			NewParam("x", Int64),
			NewParam("y", Arg(d1, "y")),
		},
		Ret(d1))

	sig1, err := Build(d1)
	if err != nil {
		t.Fatalf("Build(fun1a) error = %v", err)
	}
	sig2, err := Build(d2)
	if err != nil {
		t.Fatalf("Build(fun1b) error = %v", err)
	}
	if !sig1.Equal(sig2) {
		t.Errorf("mirrored signature %s differs from original %s", sig2, sig1)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	m := NewManager()
	if err := m.RegisterNamed("op", addIF); err != nil {
		t.Fatalf("RegisterNamed() error = %v", err)
	}

	direct, err := m.Build(addIF)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got, err := m.CompileRegistered("op", addIF)
	if err != nil {
		t.Fatalf("CompileRegistered() error = %v", err)
	}
	if !got.(*Compiled).Signature().Equal(direct) {
		t.Errorf("registry compile = %s, direct build = %s",
			got.(*Compiled).Signature(), direct)
	}

	err = m.RegisterNamed("op", addIF)
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("duplicate RegisterNamed() error = %v, want DuplicateNameError", err)
	}
	if err := m.RegisterNamed("op", addIF, WithOverwrite()); err != nil {
		t.Errorf("RegisterNamed(WithOverwrite) error = %v", err)
	}
}

func TestDisabledReturnsOriginal(t *testing.T) {
	got, err := Compile(addIF, WithDisabled(true))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(addIF).Pointer() {
		t.Error("disabled Compile() did not return the original function")
	}

	jitted, err := Jit(addIF, WithDisabled(true))
	if err != nil {
		t.Fatalf("Jit() error = %v", err)
	}
	if reflect.ValueOf(jitted).Pointer() != reflect.ValueOf(addIF).Pointer() {
		t.Error("disabled Jit() did not return the original function")
	}
}

func TestCompileProducesCompiled(t *testing.T) {
	got, err := Compile(addIF)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	c, ok := got.(*Compiled)
	if !ok {
		t.Fatalf("Compile() = %T, want *Compiled", got)
	}
	want := NewSignature(Float64, Int64, Float64)
	if !c.Signature().Equal(want) {
		t.Errorf("Signature() = %s, want %s", c.Signature(), want)
	}

	out, err := c.Call(int64(2), 0.5)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != 2.5 {
		t.Errorf("Call() = %v, want 2.5", out)
	}
}

func TestJitKeepsType(t *testing.T) {
	double := MustJit(func(x float64) float64 { return 2 * x })
	if got := double(21); got != 42 {
		t.Errorf("double(21) = %v, want 42", got)
	}
}

func TestJitBuildError(t *testing.T) {
	if _, err := Jit(func(x any) float64 { return 0 }); err == nil {
		t.Error("Jit(unannotated) error = nil, want failure")
	}
}
