package native

import "testing"

func TestSignatureAccessors(t *testing.T) {
	sig := NewSignature(Float64, Int64, Boolean)

	if got := sig.NumParams(); got != 2 {
		t.Fatalf("NumParams() = %d, want 2", got)
	}
	if !Equal(sig.Param(0), Int64) || !Equal(sig.Param(1), Boolean) {
		t.Errorf("Param order = (%s, %s), want (int64, boolean)", sig.Param(0), sig.Param(1))
	}
	if !Equal(sig.Return(), Float64) {
		t.Errorf("Return() = %s, want float64", sig.Return())
	}
}

func TestSignatureImmutable(t *testing.T) {
	params := []Type{Int64, Float64}
	sig := NewSignature(Float64, params...)

	params[0] = Boolean
	if !Equal(sig.Param(0), Int64) {
		t.Errorf("signature changed after mutating constructor slice: %s", sig)
	}

	cp := sig.Params()
	cp[1] = Boolean
	if !Equal(sig.Param(1), Float64) {
		t.Errorf("signature changed after mutating Params() copy: %s", sig)
	}
}

func TestSignatureEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Signature
		want bool
	}{
		{
			"same",
			NewSignature(Float64, Int64, Float64),
			NewSignature(Float64, Int64, Float64),
			true,
		},
		{
			"different return",
			NewSignature(Float64, Int64),
			NewSignature(Int64, Int64),
			false,
		},
		{
			"different arity",
			NewSignature(Float64, Int64),
			NewSignature(Float64, Int64, Int64),
			false,
		},
		{
			"different param order",
			NewSignature(Void, Int64, Float64),
			NewSignature(Void, Float64, Int64),
			false,
		},
		{
			"no params",
			NewSignature(Void),
			NewSignature(Void),
			true,
		},
		{
			"nested function param",
			NewSignature(Float64, FunctionOf(NewSignature(Float64, Int64))),
			NewSignature(Float64, FunctionOf(NewSignature(Float64, Int64))),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSignatureString(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want string
	}{
		{"binary", NewSignature(Float64, Int64, Float64), "float64(int64, float64)"},
		{"niladic", NewSignature(Int64), "int64()"},
		{"void return", NewSignature(Void, Int64), "void(int64)"},
		{"array param", NewSignature(Float64, ArrayOf(Float64)), "float64([]float64)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSignature(t *testing.T) {
	if !IsSignature(NewSignature(Float64, Int64)) {
		t.Error("IsSignature(signature) = false, want true")
	}
	if IsSignature(Float64) {
		t.Error("IsSignature(type) = true, want false")
	}
	if IsSignature(nil) {
		t.Error("IsSignature(nil) = true, want false")
	}
	if IsSignature(FunctionOf(NewSignature(Void))) {
		t.Error("IsSignature(function type) = true, want false")
	}
}

func TestSignatureIsZero(t *testing.T) {
	var zero Signature
	if !zero.IsZero() {
		t.Error("zero value IsZero() = false, want true")
	}
	if NewSignature(Void).IsZero() {
		t.Error("built signature IsZero() = true, want false")
	}
}
