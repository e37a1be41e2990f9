package symx_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/symflow/symx"
)

// diffExpr returns a human-readable diff of two expression trees.
func diffExpr(want, got *symx.Expr) string {
	return cmp.Diff(want, got, cmp.AllowUnexported(symx.Expr{}))
}

// mustPanic fails the test unless fn panics.
func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}

func TestOp_String(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if s := symx.Add.String(); s != "add" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Meta", func(t *testing.T) {
		if s := symx.WhenOp.String(); s != "when" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		if s := symx.Op(1000).String(); s != "Op<1000>" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestOp_Predicates(t *testing.T) {
	if !symx.Ult.IsCompare() || symx.Sub.IsCompare() {
		t.Fatal("IsCompare misclassifies")
	}
	if !symx.Add.IsCommutative() || symx.Sub.IsCommutative() {
		t.Fatal("IsCommutative misclassifies")
	}
	if !symx.Not.IsUnary() || symx.And.IsUnary() {
		t.Fatal("IsUnary misclassifies")
	}
	if !symx.Cast.IsCast() || symx.Add.IsCast() {
		t.Fatal("IsCast misclassifies")
	}
	if symx.WhenOp.IsExpr() || !symx.WhenOp.IsMeta() {
		t.Fatal("meta operator misclassified")
	}
}

func TestNewConstant(t *testing.T) {
	t.Run("Masked", func(t *testing.T) {
		e := symx.NewConstant(0x1FF, 8)
		if e.Value != 0xFF {
			t.Fatalf("unexpected value: %#x", e.Value)
		}
	})
	t.Run("KnownBits", func(t *testing.T) {
		e := symx.NewConstant(0xF0, 8)
		if e.KnownOne() != 0xF0 {
			t.Fatalf("unexpected known-one: %#x", e.KnownOne())
		} else if e.KnownZero() != 0x0F {
			t.Fatalf("unexpected known-zero: %#x", e.KnownZero())
		} else if e.UnknownMask() != 0 {
			t.Fatalf("unexpected unknown mask: %#x", e.UnknownMask())
		}
	})
	t.Run("ConstValue", func(t *testing.T) {
		if v, ok := symx.NewConstant(42, 64).ConstValue(); !ok || v != 42 {
			t.Fatalf("unexpected const value: %d, %v", v, ok)
		}
	})
	t.Run("FullWidth", func(t *testing.T) {
		e := symx.NewConstant(^uint64(0), 64)
		if e.Value != ^uint64(0) || e.UnknownMask() != 0 {
			t.Fatalf("unexpected 64-bit constant: %s", e)
		}
	})
	t.Run("InvalidWidth", func(t *testing.T) {
		mustPanic(t, func() { symx.NewConstant(0, 65) })
	})
}

func TestNewVariable(t *testing.T) {
	e := symx.NewVariable("a", 8)
	if !e.IsVariable() || e.IsConstant() {
		t.Fatal("misclassified variable")
	}
	if e.UnknownMask() != 0xFF {
		t.Fatalf("unexpected unknown mask: %#x", e.UnknownMask())
	}
	if e.Complexity() != 1 {
		t.Fatalf("unexpected complexity: %f", e.Complexity())
	}
	if _, ok := e.ConstValue(); ok {
		t.Fatal("variable should not have a constant value")
	}
	mustPanic(t, func() { symx.NewVariable("", 8) })
}

func TestNewUnary(t *testing.T) {
	t.Run("FoldNot", func(t *testing.T) {
		if diff := diffExpr(symx.NewConstant(0x0F, 8), symx.NewUnary(symx.Not, symx.NewConstant(0xF0, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldNeg", func(t *testing.T) {
		if diff := diffExpr(symx.NewConstant(0xFF, 8), symx.NewUnary(symx.Neg, symx.NewConstant(1, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SymbolicNotKnownBits", func(t *testing.T) {
		// ~(a & 0xF0): the low nibble of the operand is known zero, so the
		// low nibble of the complement is known one.
		inner := symx.NewBinary(symx.And, symx.NewVariable("a", 8), symx.NewConstant(0xF0, 8))
		e := symx.NewUnary(symx.Not, inner)
		if e.KnownOne() != 0x0F {
			t.Fatalf("unexpected known-one: %#x", e.KnownOne())
		}
	})
	t.Run("NotUnaryOp", func(t *testing.T) {
		mustPanic(t, func() { symx.NewUnary(symx.Add, symx.NewConstant(0, 8)) })
	})
}

func TestNewBinary(t *testing.T) {
	t.Run("FoldAdd", func(t *testing.T) {
		if diff := diffExpr(symx.NewConstant(10, 8), symx.NewBinary(symx.Add, symx.NewConstant(6, 8), symx.NewConstant(4, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldAddWraps", func(t *testing.T) {
		if diff := diffExpr(symx.NewConstant(4, 8), symx.NewBinary(symx.Add, symx.NewConstant(250, 8), symx.NewConstant(10, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldSDiv", func(t *testing.T) {
		// -8 / 2 == -4 at 8 bits.
		if diff := diffExpr(symx.NewConstant(0xFC, 8), symx.NewBinary(symx.SDiv, symx.NewConstant(0xF8, 8), symx.NewConstant(2, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldAShr", func(t *testing.T) {
		// 0x80 >> 4 arithmetic keeps the sign bits.
		if diff := diffExpr(symx.NewConstant(0xF8, 8), symx.NewBinary(symx.AShr, symx.NewConstant(0x80, 8), symx.NewConstant(4, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldShlOverflow", func(t *testing.T) {
		if diff := diffExpr(symx.NewConstant(0, 8), symx.NewBinary(symx.Shl, symx.NewConstant(1, 8), symx.NewConstant(8, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldSlt", func(t *testing.T) {
		// -1 < 1 signed.
		if diff := diffExpr(symx.NewBool(true), symx.NewBinary(symx.Slt, symx.NewConstant(0xFF, 8), symx.NewConstant(1, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FoldUlt", func(t *testing.T) {
		// 0xFF is large unsigned.
		if diff := diffExpr(symx.NewBool(false), symx.NewBinary(symx.Ult, symx.NewConstant(0xFF, 8), symx.NewConstant(1, 8))); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DivByZeroNotFolded", func(t *testing.T) {
		e := symx.NewBinary(symx.UDiv, symx.NewConstant(1, 8), symx.NewConstant(0, 8))
		if e.IsConstant() {
			t.Fatal("division by zero must not fold")
		}
	})
	t.Run("CompareWidth", func(t *testing.T) {
		e := symx.NewBinary(symx.Eq, symx.NewVariable("a", 32), symx.NewVariable("b", 32))
		if e.Width != symx.WidthBool {
			t.Fatalf("unexpected width: %d", e.Width)
		}
	})
	t.Run("WidthMismatch", func(t *testing.T) {
		mustPanic(t, func() {
			symx.NewBinary(symx.Add, symx.NewVariable("a", 8), symx.NewVariable("b", 16))
		})
	})
	t.Run("ShiftWidthMayDiffer", func(t *testing.T) {
		e := symx.NewBinary(symx.Shl, symx.NewVariable("a", 64), symx.NewVariable("n", 8))
		if e.Width != 64 {
			t.Fatalf("unexpected width: %d", e.Width)
		}
	})
}

func TestKnownBitPropagation(t *testing.T) {
	a := symx.NewVariable("a", 8)
	t.Run("And", func(t *testing.T) {
		e := symx.NewBinary(symx.And, a, symx.NewConstant(0x0F, 8))
		if e.KnownZero() != 0xF0 {
			t.Fatalf("unexpected known-zero: %#x", e.KnownZero())
		} else if e.KnownOne() != 0 {
			t.Fatalf("unexpected known-one: %#x", e.KnownOne())
		}
	})
	t.Run("Or", func(t *testing.T) {
		e := symx.NewBinary(symx.Or, a, symx.NewConstant(0xF0, 8))
		if e.KnownOne() != 0xF0 {
			t.Fatalf("unexpected known-one: %#x", e.KnownOne())
		}
	})
	t.Run("Shl", func(t *testing.T) {
		e := symx.NewBinary(symx.Shl, a, symx.NewConstant(4, 8))
		if e.KnownZero() != 0x0F {
			t.Fatalf("unexpected known-zero: %#x", e.KnownZero())
		}
	})
	t.Run("LShr", func(t *testing.T) {
		e := symx.NewBinary(symx.LShr, a, symx.NewConstant(4, 8))
		if e.KnownZero() != 0xF0 {
			t.Fatalf("unexpected known-zero: %#x", e.KnownZero())
		}
	})
	t.Run("ComposedConstValue", func(t *testing.T) {
		// a & 0 is fully known even though it is not a constant leaf.
		e := symx.NewBinary(symx.And, a, symx.NewConstant(0, 8))
		if v, ok := e.ConstValue(); !ok || v != 0 {
			t.Fatalf("unexpected const value: %d, %v", v, ok)
		}
	})
}

func TestExpr_Resize(t *testing.T) {
	t.Run("SameWidthNop", func(t *testing.T) {
		e := symx.NewVariable("a", 32).Detach()
		e.Resize(32, false)
		if diff := diffExpr(symx.NewVariable("a", 32), e); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConstantZeroExtend", func(t *testing.T) {
		e := symx.NewConstant(0x80, 8)
		e.Resize(16, false)
		if diff := diffExpr(symx.NewConstant(0x80, 16), e); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConstantSignExtend", func(t *testing.T) {
		e := symx.NewConstant(0x80, 8)
		e.Resize(16, true)
		if diff := diffExpr(symx.NewConstant(0xFF80, 16), e); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConstantTruncate", func(t *testing.T) {
		e := symx.NewConstant(0x1234, 16)
		e.Resize(8, false)
		if diff := diffExpr(symx.NewConstant(0x34, 8), e); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SymbolicWrapsInCast", func(t *testing.T) {
		e := symx.NewVariable("a", 8).Detach()
		e.Resize(16, false)
		if e.Op != symx.UCast || e.Width != 16 {
			t.Fatalf("unexpected node: %s", e)
		}
		if e.KnownZero() != 0xFF00 {
			t.Fatalf("extended bits should be known zero: %#x", e.KnownZero())
		}
		if diff := diffExpr(symx.NewVariable("a", 8), e.LHS); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SymbolicSignedCast", func(t *testing.T) {
		e := symx.NewVariable("a", 8).Detach()
		e.Resize(16, true)
		if e.Op != symx.Cast || e.Width != 16 {
			t.Fatalf("unexpected node: %s", e)
		}
		// Sign bit unknown, so the extension bits stay unknown.
		if e.UnknownMask() != 0xFFFF {
			t.Fatalf("unexpected unknown mask: %#x", e.UnknownMask())
		}
	})
}

func TestExpr_Detach(t *testing.T) {
	orig := symx.NewVariable("a", 8)
	clone := orig.Detach()
	clone.Resize(16, false)
	if orig.Width != 8 {
		t.Fatal("detached mutation leaked into the original")
	}
}

func TestExpr_Complexity(t *testing.T) {
	a := symx.NewVariable("a", 8)
	sum := symx.NewBinary(symx.Add, a, symx.NewConstant(0, 8))
	if sum.Complexity() != 2 {
		t.Fatalf("unexpected complexity: %f", sum.Complexity())
	}
	if a.Complexity() >= sum.Complexity() {
		t.Fatal("wrapping must increase complexity")
	}
}

func TestCompareExpr(t *testing.T) {
	a1 := symx.NewBinary(symx.Add, symx.NewVariable("a", 8), symx.NewConstant(1, 8))
	a2 := symx.NewBinary(symx.Add, symx.NewVariable("a", 8), symx.NewConstant(1, 8))
	b := symx.NewBinary(symx.Add, symx.NewVariable("b", 8), symx.NewConstant(1, 8))

	if symx.CompareExpr(a1, a2) != 0 {
		t.Fatal("structurally equal trees must compare equal")
	}
	if symx.CompareExpr(a1, b) == 0 {
		t.Fatal("different trees must not compare equal")
	}
	if symx.CompareExpr(nil, a1) != -1 || symx.CompareExpr(a1, nil) != 1 {
		t.Fatal("nil ordering")
	}
}

func TestExpr_String(t *testing.T) {
	e := symx.NewBinary(symx.Add, symx.NewVariable("a", 32), symx.NewConstant(1, 32))
	if s := e.String(); s != "(add a:32 (const 1 32))" {
		t.Fatalf("unexpected string: %s", s)
	}
}
