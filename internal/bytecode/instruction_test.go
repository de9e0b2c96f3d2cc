package bytecode

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		op    OpCode
		param int
		value int
	}{
		{OpPushNull, 0, 0},
		{OpLoadLocal, 0, 5},
		{OpCall, 3, 0},
		{OpJump, 0, -1},
		{OpLoadClosure, 2, 100000},
		{OpStoreGlobal, 0, valueMax},
		{OpStoreGlobal, 0, valueMin},
	}
	for _, c := range cases {
		instr := Encode(c.op, c.param, c.value)
		if got := instr.Op(); got != c.op {
			t.Errorf("Encode(%v,%d,%d).Op() = %v, want %v", c.op, c.param, c.value, got, c.op)
		}
		if got := instr.Param(); got != c.param {
			t.Errorf("Encode(%v,%d,%d).Param() = %d, want %d", c.op, c.param, c.value, got, c.param)
		}
		if got := instr.Value(); got != c.value {
			t.Errorf("Encode(%v,%d,%d).Value() = %d, want %d", c.op, c.param, c.value, got, c.value)
		}
	}
}

// TestEncodeClampsParamToFieldWidth checks that an
// out-of-range param operand is clamped into [0, 15] rather than corrupting
// adjacent fields.
func TestEncodeClampsParamToFieldWidth(t *testing.T) {
	if got := Encode(OpCall, -1, 0).Param(); got != 0 {
		t.Errorf("negative param clamped to %d, want 0", got)
	}
	if got := Encode(OpCall, paramMax+5, 0).Param(); got != paramMax {
		t.Errorf("oversized param clamped to %d, want %d", got, paramMax)
	}
}

// TestEncodeClampsValueToFieldWidth checks the other half of the range
// invariant: the 22-bit signed value field saturates rather than
// wrapping when handed an operand outside [-2^21, 2^21-1].
func TestEncodeClampsValueToFieldWidth(t *testing.T) {
	if got := Encode(OpJump, 0, valueMax+1000).Value(); got != valueMax {
		t.Errorf("oversized value clamped to %d, want %d", got, valueMax)
	}
	if got := Encode(OpJump, 0, valueMin-1000).Value(); got != valueMin {
		t.Errorf("undersized value clamped to %d, want %d", got, valueMin)
	}
}

func TestEncodeFieldsDoNotBleedIntoEachOther(t *testing.T) {
	// A large param must never perturb a negative value's sign-extension,
	// and vice versa; each field is independently packed and decoded.
	instr := Encode(OpCallMethod, paramMax, -1)
	if instr.Param() != paramMax {
		t.Errorf("Param() = %d, want %d", instr.Param(), paramMax)
	}
	if instr.Value() != -1 {
		t.Errorf("Value() = %d, want -1", instr.Value())
	}
	if instr.Op() != OpCallMethod {
		t.Errorf("Op() = %v, want %v", instr.Op(), OpCallMethod)
	}
}

func TestOpCodeStringNamesEveryDefinedOpcode(t *testing.T) {
	for op := OpCode(0); op < opCodeCount; op++ {
		if op.String() == "" {
			t.Errorf("opcode %d has no name in opNames", op)
		}
	}
}

func TestOpCodeStringOutOfRange(t *testing.T) {
	if got := opCodeCount.String(); got == "" {
		t.Error("an out-of-range OpCode should still render something, not panic or empty")
	}
}
