package value

import (
	"math"
	"testing"
)

func TestEqualsIsReflexiveExceptNaN(t *testing.T) {
	cases := []Value{Null(), Bool(true), Bool(false), Number(0), Number(-3.5), String(""), String("hi")}
	for _, v := range cases {
		if !v.Equals(v) {
			t.Errorf("%v.Equals(itself) = false, want true", v)
		}
	}
	nan := Number(math.NaN())
	if nan.Equals(nan) {
		t.Error("NaN.Equals(NaN) = true, want false")
	}
}

func TestEqualsIsStrictByKind(t *testing.T) {
	if Number(0).Equals(Bool(false)) {
		t.Error("0 should not equal false across kinds")
	}
	if String("3").Equals(Number(3)) {
		t.Error(`"3" should not equal 3 across kinds`)
	}
	if Null().Equals(Bool(false)) {
		t.Error("null should not equal false")
	}
}

func TestStructuralEqualsTreatsNaNAsSelfEqual(t *testing.T) {
	nan := Number(math.NaN())
	if !nan.StructuralEquals(nan) {
		t.Error("StructuralEquals(NaN, NaN) = false, want true (table-key semantics)")
	}
	if nan.Equals(nan) {
		t.Error("Equals(NaN, NaN) should remain false even though StructuralEquals treats NaN as self-equal")
	}
}

func TestStructuralHashConsistentWithStructuralEquals(t *testing.T) {
	a := Number(math.NaN())
	b := Number(math.NaN())
	if !a.StructuralEquals(b) {
		t.Fatal("precondition failed: two NaNs should be structurally equal")
	}
	if a.StructuralHash() != b.StructuralHash() {
		t.Error("two structurally-equal NaNs hashed differently")
	}

	x, y := Number(42), Number(42)
	if !x.StructuralEquals(y) || x.StructuralHash() != y.StructuralHash() {
		t.Error("equal numbers must hash identically")
	}

	s1, s2 := String("same"), String("same")
	if s1.StructuralHash() != s2.StructuralHash() {
		t.Error("equal strings must hash identically")
	}
}

func TestToBooleanTruthTable(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"negative zero", Number(math.Copysign(0, -1)), false},
		{"positive number", Number(1), true},
		{"negative number", Number(-1), true},
		{"NaN", Number(math.NaN()), false},
		{"empty string is truthy", String(""), true},
		{"non-empty string", String("x"), true},
		{"list", FromList(NewList(nil)), true},
		{"table", FromTable(NewTable()), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.ToBoolean(); got != c.want {
				t.Errorf("ToBoolean(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestToNumberOnlyNumberPassesThrough(t *testing.T) {
	if Number(3.5).ToNumber() != 3.5 {
		t.Error("Number(3.5).ToNumber() should be 3.5")
	}
	nonNumbers := []Value{Null(), Bool(true), String("3"), FromList(NewList(nil))}
	for _, v := range nonNumbers {
		if !math.IsNaN(v.ToNumber()) {
			t.Errorf("%v.ToNumber() = %v, want NaN", v.Kind(), v.ToNumber())
		}
	}
}

func TestNullIsZeroValue(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Error("zero-initialized Value should be Null")
	}
	if v != Null() {
		t.Error("zero-initialized Value should equal Null()")
	}
}

// TestPropertyIsNeverObservedDirectly: member access on a Table holding a
// Property must invoke the getter (or fall back to the plain value), and
// writes must route through the setter; the Property itself stays hidden.
func TestPropertyIsNeverObservedDirectly(t *testing.T) {
	t1 := NewTable()
	reads := 0
	t1.SetRawStr("computed", FromProperty(&Property{
		Get: func(receiver Value) Value {
			reads++
			return Number(42)
		},
	}))
	got := FromTable(t1).Get("computed")
	if got.IsProperty() {
		t.Fatal("Get returned the Property itself; it must be unwrapped")
	}
	if got.AsNumber() != 42 || reads != 1 {
		t.Fatalf("computed = %v (reads=%d), want 42 via one getter call", got, reads)
	}

	t2 := NewTable()
	t2.SetRawStr("plain", FromProperty(&Property{Value: String("fallback")}))
	if got := FromTable(t2).Get("plain"); got.AsString() != "fallback" {
		t.Fatalf("getterless Property yielded %v, want its plain value", got)
	}

	t3 := NewTable()
	var stored Value
	t3.SetRawStr("guarded", FromProperty(&Property{
		Set: func(receiver, v Value) bool {
			stored = v
			return true
		},
	}))
	FromTable(t3).Set("guarded", Number(7))
	if stored.AsNumber() != 7 {
		t.Fatalf("setter saw %v, want 7", stored)
	}
	if raw, _ := t3.RawStr("guarded"); !raw.IsProperty() {
		t.Fatal("assignment through a Property setter must not overwrite the Property entry")
	}
}

// TestPropertyWithoutSetterIsSilentNoOp: writing through a setterless
// Property neither faults nor replaces the Property entry.
func TestPropertyWithoutSetterIsSilentNoOp(t *testing.T) {
	tbl := NewTable()
	tbl.SetRawStr("ro", FromProperty(&Property{Value: Number(1)}))
	FromTable(tbl).Set("ro", Number(2))
	if got := FromTable(tbl).Get("ro"); got.AsNumber() != 1 {
		t.Fatalf("read-only property now reads %v, want 1", got)
	}
}
