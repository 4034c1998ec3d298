package native

import (
	"reflect"
	"testing"
)

func TestScalarNames(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Void, "void"},
		{Boolean, "boolean"},
		{Int8, "int8"},
		{Int16, "int16"},
		{Int32, "int32"},
		{Int64, "int64"},
		{Uint8, "uint8"},
		{Uint16, "uint16"},
		{Uint32, "uint32"},
		{Uint64, "uint64"},
		{Float32, "float32"},
		{Float64, "float64"},
		{Complex64, "complex64"},
		{Complex128, "complex128"},
		{String, "string"},
	}

	for _, tt := range tests {
		if got := tt.typ.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompositeNames(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"array", ArrayOf(Float64), "[]float64"},
		{"nested array", ArrayOf(ArrayOf(Int64)), "[][]int64"},
		{"tuple", TupleOf(Int64, Float64), "(int64, float64)"},
		{"empty tuple", TupleOf(), "()"},
		{"function", FunctionOf(NewSignature(Float64, Int64)), "float64(int64)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		typ  Type
		want Kind
	}{
		{Void, KindVoid},
		{Boolean, KindBool},
		{Int32, KindInt},
		{Uint64, KindUint},
		{Float64, KindFloat},
		{Complex128, KindComplex},
		{String, KindString},
		{ArrayOf(Float64), KindArray},
		{TupleOf(Int64), KindTuple},
		{FunctionOf(NewSignature(Void)), KindFunction},
	}

	for _, tt := range tests {
		if got := tt.typ.Kind(); got != tt.want {
			t.Errorf("%s Kind() = %s, want %s", tt.typ.Name(), got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same scalar", Int64, Int64, true},
		{"different scalar", Int64, Int32, false},
		{"different kind", Int64, Float64, false},
		{"array same", ArrayOf(Float64), ArrayOf(Float64), true},
		{"array different elem", ArrayOf(Float64), ArrayOf(Int64), false},
		{"array vs scalar", ArrayOf(Float64), Float64, false},
		{"tuple same", TupleOf(Int64, Float64), TupleOf(Int64, Float64), true},
		{"tuple order", TupleOf(Int64, Float64), TupleOf(Float64, Int64), false},
		{"tuple arity", TupleOf(Int64), TupleOf(Int64, Int64), false},
		{
			"function same",
			FunctionOf(NewSignature(Float64, Int64)),
			FunctionOf(NewSignature(Float64, Int64)),
			true,
		},
		{
			"function different return",
			FunctionOf(NewSignature(Float64, Int64)),
			FunctionOf(NewSignature(Int64, Int64)),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"scalar", Float64, true},
		{"array", ArrayOf(Float64), true},
		{"function", FunctionOf(NewSignature(Void)), true},
		{"signature is not a type", NewSignature(Float64, Int64), false},
		{"int", 888, false},
		{"string", "float64", false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsType(tt.v); got != tt.want {
				t.Errorf("IsType(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestTypeByName(t *testing.T) {
	tests := []struct {
		name string
		want Type
		ok   bool
	}{
		{"int64", Int64, true},
		{"float64", Float64, true},
		{"boolean", Boolean, true},
		{"void", Void, true},
		{"[]float64", ArrayOf(Float64), true},
		{"[][]int8", ArrayOf(ArrayOf(Int8)), true},
		{"float", nil, false},
		{"[]unknown", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TypeByName(tt.name)
			if ok != tt.ok {
				t.Fatalf("TypeByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if ok && !Equal(got, tt.want) {
				t.Errorf("TypeByName(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestTypeByNameRoundTrip(t *testing.T) {
	for _, name := range TypeNames() {
		typ, ok := TypeByName(name)
		if !ok {
			t.Fatalf("TypeByName(%q) not found", name)
		}
		if typ.Name() != name {
			t.Errorf("TypeByName(%q).Name() = %q", name, typ.Name())
		}
	}
}

func TestGoEquivalent(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want reflect.Type
		ok   bool
	}{
		{"int64", Int64, reflect.TypeOf(int64(0)), true},
		{"boolean", Boolean, reflect.TypeOf(false), true},
		{"string", String, reflect.TypeOf(""), true},
		{"array", ArrayOf(Float64), reflect.TypeOf([]float64(nil)), true},
		{
			"function",
			FunctionOf(NewSignature(Float64, Int64, Float64)),
			reflect.TypeOf(func(int64, float64) float64 { return 0 }),
			true,
		},
		{
			"void function",
			FunctionOf(NewSignature(Void, Int64)),
			reflect.TypeOf(func(int64) {}),
			true,
		},
		{"void", Void, nil, false},
		{"tuple", TupleOf(Int64, Float64), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GoEquivalent(tt.typ)
			if ok != tt.ok {
				t.Fatalf("GoEquivalent(%s) ok = %v, want %v", tt.typ, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("GoEquivalent(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func FuzzTypeByName(f *testing.F) {
	for _, seed := range []string{"int64", "[]float64", "[][]void", "float", "[]", "[[]]int8"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, name string) {
		typ, ok := TypeByName(name)
		if !ok {
			return
		}
		if typ.Name() != name {
			t.Errorf("TypeByName(%q).Name() = %q", name, typ.Name())
		}
	})
}
