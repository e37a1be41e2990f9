package symx

import (
	"fmt"
	"math"
)

// Op identifies an expression or directive operator.
type Op int

const (
	// Nop marks a leaf: a constant value or a named variable.
	Nop Op = iota

	// Unary operators. Only the RHS child is set.
	Neg
	Not

	// Binary operators.
	Add
	Sub
	Mul
	UDiv
	SDiv
	URem
	SRem
	And
	Or
	Xor
	Shl
	LShr
	AShr

	// Resize operators. LHS is the value, RHS the target width.
	Cast  // sign-extending
	UCast // zero-extending

	// Comparison operators. Result width is always 1.
	Eq
	Ne
	Ult
	Ule
	Ugt
	Uge
	Slt
	Sle
	Sgt
	Sge

	opExprMax // boundary: operators below occur in concrete expressions

	// Meta-operators. Valid only in directive trees.
	MustSimplifyOp
	TrySimplifyOp
	EitherOp
	WhenOp
	MaskUnknownOp
	MaskOneOp
	MaskZeroOp
	UnreachableOp
	WarnOp
)

var opNames = [...]string{
	Nop:            "nop",
	Neg:            "neg",
	Not:            "not",
	Add:            "add",
	Sub:            "sub",
	Mul:            "mul",
	UDiv:           "udiv",
	SDiv:           "sdiv",
	URem:           "urem",
	SRem:           "srem",
	And:            "and",
	Or:             "or",
	Xor:            "xor",
	Shl:            "shl",
	LShr:           "lshr",
	AShr:           "ashr",
	Cast:           "cast",
	UCast:          "ucast",
	Eq:             "eq",
	Ne:             "ne",
	Ult:            "ult",
	Ule:            "ule",
	Ugt:            "ugt",
	Uge:            "uge",
	Slt:            "slt",
	Sle:            "sle",
	Sgt:            "sgt",
	Sge:            "sge",
	MustSimplifyOp: "simplify!",
	TrySimplifyOp:  "simplify",
	EitherOp:       "or-else",
	WhenOp:         "when",
	MaskUnknownOp:  "mask-unknown",
	MaskOneOp:      "mask-one",
	MaskZeroOp:     "mask-zero",
	UnreachableOp:  "unreachable",
	WarnOp:         "warn",
}

// String returns the string representation of the operator.
func (op Op) String() string {
	if op >= 0 && op < Op(len(opNames)) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Op<%d>", op)
}

// IsExpr returns true if op may occur in a concrete expression.
func (op Op) IsExpr() bool { return op < opExprMax }

// IsMeta returns true if op is a directive meta-operator.
func (op Op) IsMeta() bool { return op > opExprMax }

// IsUnary returns true if op takes a single (right-hand) operand.
func (op Op) IsUnary() bool { return op == Neg || op == Not }

// IsBinary returns true if op takes two operands.
func (op Op) IsBinary() bool {
	return (op >= Add && op <= AShr) || op.IsCompare()
}

// IsCast returns true if op resizes its left operand to the width given by
// its right operand.
func (op Op) IsCast() bool { return op == Cast || op == UCast }

// IsCompare returns true if op is a comparison operator.
func (op Op) IsCompare() bool { return op >= Eq && op <= Sge }

// IsCommutative returns true if swapping the operands preserves the value.
func (op Op) IsCommutative() bool {
	switch op {
	case Add, Mul, And, Or, Xor, Eq, Ne:
		return true
	default:
		return false
	}
}

// Expr is a node of a concrete bit-vector expression tree. Nodes are shared
// freely between trees and must never be mutated through a shared reference;
// Detach returns an exclusively owned copy for the two in-place mutation
// points (Resize and the simplifier).
type Expr struct {
	Op    Op
	Width uint
	Value uint64 // constant leaves only
	Ident string // variable leaves only
	LHS   *Expr
	RHS   *Expr

	// NoSimplify hints that the node is already in simplest form.
	NoSimplify bool

	knownOne   uint64
	knownZero  uint64
	complexity float64
}

// NewConstant returns a constant expression of the given width.
// The value is masked to the width.
func NewConstant(value uint64, width uint) *Expr {
	assert(width >= 1 && width <= 64, "constant width out of range: %d", width)
	value &= bitmask(width)
	return &Expr{
		Op:        Nop,
		Width:     width,
		Value:     value,
		knownOne:  value,
		knownZero: ^value & bitmask(width),
	}
}

// NewBool returns a 1-bit constant expression.
func NewBool(value bool) *Expr {
	if value {
		return NewConstant(1, WidthBool)
	}
	return NewConstant(0, WidthBool)
}

// NewVariable returns a symbolic variable expression of the given width.
func NewVariable(ident string, width uint) *Expr {
	assert(ident != "", "variable requires an identifier")
	assert(width >= 1 && width <= 64, "variable width out of range: %d", width)
	return &Expr{
		Op:         Nop,
		Width:      width,
		Ident:      ident,
		complexity: 1,
	}
}

// NewUnary returns an expression applying op to rhs.
// Folds to a constant when rhs is constant.
func NewUnary(op Op, rhs *Expr) *Expr {
	assert(op.IsUnary(), "not a unary operator: %s", op)

	if v, ok := rhs.ConstValue(); ok {
		switch op {
		case Neg:
			return NewConstant(-v, rhs.Width)
		case Not:
			return NewConstant(^v, rhs.Width)
		}
	}

	e := &Expr{
		Op:         op,
		Width:      rhs.Width,
		RHS:        rhs,
		complexity: rhs.complexity * 2,
	}
	if op == Not {
		e.knownOne, e.knownZero = rhs.knownZero, rhs.knownOne
	}
	return e
}

// NewBinary returns an expression combining lhs and rhs with op.
// Folds to a constant when both sides are constant.
func NewBinary(op Op, lhs, rhs *Expr) *Expr {
	assert(op.IsBinary(), "not a binary operator: %s", op)
	if op != Shl && op != LShr && op != AShr {
		assert(lhs.Width == rhs.Width, "%s: width mismatch: %d != %d", op, lhs.Width, rhs.Width)
	}

	width := lhs.Width
	if op.IsCompare() {
		width = WidthBool
	}

	if a, ok := lhs.ConstValue(); ok {
		if b, ok := rhs.ConstValue(); ok {
			if v, ok := foldBinary(op, a, b, lhs.Width); ok {
				return NewConstant(v, width)
			}
		}
	}

	e := &Expr{
		Op:         op,
		Width:      width,
		LHS:        lhs,
		RHS:        rhs,
		complexity: (lhs.complexity + rhs.complexity) * 2,
	}
	e.knownOne, e.knownZero = propagateKnown(op, lhs, rhs, width)
	return e
}

// foldBinary evaluates op over two constants at the given operand width.
// Returns false where the result is undefined (division by zero).
func foldBinary(op Op, a, b uint64, width uint) (uint64, bool) {
	m := bitmask(width)
	switch op {
	case Add:
		return (a + b) & m, true
	case Sub:
		return (a - b) & m, true
	case Mul:
		return (a * b) & m, true
	case UDiv:
		if b == 0 {
			return 0, false
		}
		return (a / b) & m, true
	case SDiv:
		if b == 0 {
			return 0, false
		}
		sa, sb := signed(a, width), signed(b, width)
		if sa == math.MinInt64 && sb == -1 {
			return a, true // wraps
		}
		return uint64(sa/sb) & m, true
	case URem:
		if b == 0 {
			return 0, false
		}
		return (a % b) & m, true
	case SRem:
		if b == 0 {
			return 0, false
		}
		sa, sb := signed(a, width), signed(b, width)
		if sa == math.MinInt64 && sb == -1 {
			return 0, true
		}
		return uint64(sa%sb) & m, true
	case And:
		return a & b, true
	case Or:
		return a | b, true
	case Xor:
		return a ^ b, true
	case Shl:
		if b >= uint64(width) {
			return 0, true
		}
		return (a << b) & m, true
	case LShr:
		if b >= uint64(width) {
			return 0, true
		}
		return a >> b, true
	case AShr:
		if b >= uint64(width) {
			b = uint64(width) - 1
		}
		return uint64(signed(a, width)>>b) & m, true
	case Eq:
		return bool01(a == b), true
	case Ne:
		return bool01(a != b), true
	case Ult:
		return bool01(a < b), true
	case Ule:
		return bool01(a <= b), true
	case Ugt:
		return bool01(a > b), true
	case Uge:
		return bool01(a >= b), true
	case Slt:
		return bool01(signed(a, width) < signed(b, width)), true
	case Sle:
		return bool01(signed(a, width) <= signed(b, width)), true
	case Sgt:
		return bool01(signed(a, width) > signed(b, width)), true
	case Sge:
		return bool01(signed(a, width) >= signed(b, width)), true
	default:
		panic("unreachable")
	}
}

// propagateKnown derives known-one/known-zero masks for a non-constant node.
func propagateKnown(op Op, lhs, rhs *Expr, width uint) (one, zero uint64) {
	m := bitmask(width)
	switch op {
	case And:
		return lhs.knownOne & rhs.knownOne, lhs.knownZero | rhs.knownZero
	case Or:
		return lhs.knownOne | rhs.knownOne, lhs.knownZero & rhs.knownZero
	case Xor:
		kb := (lhs.knownOne | lhs.knownZero) & (rhs.knownOne | rhs.knownZero)
		v := (lhs.knownOne ^ rhs.knownOne) & kb
		return v, kb &^ v
	case Shl:
		if n, ok := rhs.ConstValue(); ok && n < uint64(width) {
			return (lhs.knownOne << n) & m, ((lhs.knownZero << n) | bitmask(uint(n))) & m
		}
	case LShr:
		if n, ok := rhs.ConstValue(); ok && n < uint64(width) {
			high := m &^ (m >> n)
			return lhs.knownOne >> n, (lhs.knownZero >> n) | high
		}
	}
	return 0, 0
}

// bitmask returns a mask with the low width bits set.
func bitmask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (1 << width) - 1
}

// signed sign-extends a width-bit value to int64.
func signed(v uint64, width uint) int64 {
	if width < 64 && v&(1<<(width-1)) != 0 {
		v |= ^bitmask(width)
	}
	return int64(v)
}

func bool01(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Mask returns a mask covering the expression's width.
func (e *Expr) Mask() uint64 { return bitmask(e.Width) }

// KnownOne returns the mask of bits known to be one.
func (e *Expr) KnownOne() uint64 { return e.knownOne }

// KnownZero returns the mask of bits known to be zero.
func (e *Expr) KnownZero() uint64 { return e.knownZero }

// UnknownMask returns the mask of bits with no known value.
func (e *Expr) UnknownMask() uint64 {
	return e.Mask() &^ (e.knownOne | e.knownZero)
}

// ConstValue returns the expression's value if every bit is known.
func (e *Expr) ConstValue() (uint64, bool) {
	if e.UnknownMask() != 0 {
		return 0, false
	}
	return e.knownOne, true
}

// IsConstant returns true if the expression is a constant leaf.
func (e *Expr) IsConstant() bool {
	return e.Op == Nop && e.Ident == ""
}

// IsVariable returns true if the expression is a variable leaf.
func (e *Expr) IsVariable() bool {
	return e.Op == Nop && e.Ident != ""
}

// Complexity returns the cached complexity score. Constants score zero,
// variables one; every operator application doubles the operand total.
func (e *Expr) Complexity() float64 { return e.complexity }

// Detach returns an exclusively owned shallow copy of e. Children remain
// shared; both in-place mutation points only rewrite the top node.
func (e *Expr) Detach() *Expr {
	clone := *e
	return &clone
}

// Resize mutates e in place to the given width, sign-extending when signed.
// The caller must hold the only reference to e.
func (e *Expr) Resize(width uint, isSigned bool) {
	assert(width >= 1 && width <= 64, "resize width out of range: %d", width)
	if width == e.Width {
		return
	}

	if e.IsConstant() {
		v := e.Value
		if isSigned && width > e.Width {
			v = uint64(signed(v, e.Width))
		}
		*e = *NewConstant(v, width)
		return
	}

	// Wrap the old node in a cast. Only the top node changes; the previous
	// contents move into a fresh child.
	child := e.Detach()
	op := UCast
	if isSigned {
		op = Cast
	}
	*e = Expr{
		Op:         op,
		Width:      width,
		LHS:        child,
		RHS:        NewConstant(uint64(width), Width8),
		complexity: child.complexity * 2,
	}
	e.knownOne, e.knownZero = castKnown(child, width, isSigned)
}

// castKnown derives known bits for a resize of child to width.
func castKnown(child *Expr, width uint, isSigned bool) (one, zero uint64) {
	m := bitmask(width)
	one = child.knownOne & m
	zero = child.knownZero & m
	if width <= child.Width {
		return one, zero
	}
	high := m &^ child.Mask()
	if !isSigned {
		return one, zero | high
	}
	signBit := uint64(1) << (child.Width - 1)
	if child.knownOne&signBit != 0 {
		return one | high, zero
	} else if child.knownZero&signBit != 0 {
		return one, zero | high
	}
	return one, zero
}

// String returns the string representation of the expression.
func (e *Expr) String() string {
	switch {
	case e.IsConstant():
		return fmt.Sprintf("(const %d %d)", e.Value, e.Width)
	case e.IsVariable():
		return fmt.Sprintf("%s:%d", e.Ident, e.Width)
	case e.Op.IsUnary():
		return fmt.Sprintf("(%s %s)", e.Op, e.RHS)
	default:
		return fmt.Sprintf("(%s %s %s)", e.Op, e.LHS, e.RHS)
	}
}

// CompareExpr returns an integer comparing two expressions structurally.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareExpr(a, b *Expr) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if a.Op != b.Op {
		return cmpInt(int(a.Op), int(b.Op))
	}
	if a.Width != b.Width {
		return cmpInt(int(a.Width), int(b.Width))
	}
	if a.Op == Nop {
		if a.Ident != b.Ident {
			if a.Ident < b.Ident {
				return -1
			}
			return 1
		}
		if a.Value != b.Value {
			if a.Value < b.Value {
				return -1
			}
			return 1
		}
		return 0
	}
	if cmp := CompareExpr(a.LHS, b.LHS); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.RHS, b.RHS)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
