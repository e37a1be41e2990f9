package symx

import "fmt"

// Directive is a node of a rewrite-rule pattern or template. Directive trees
// are built once at rule-table definition time and never mutated; the same
// subtree may appear in any number of rules.
//
// A Nop directive is a leaf: a pattern variable when Ident is set, otherwise
// a literal constant. Expression operators carry the same operand shape as
// Expr nodes. Meta-operators carry their own fixed arity.
type Directive struct {
	Op    Op
	Ident string
	Value int64
	LHS   *Directive
	RHS   *Directive
}

// Var returns a pattern-variable leaf.
func Var(ident string) *Directive {
	assert(ident != "", "pattern variable requires an identifier")
	return &Directive{Op: Nop, Ident: ident}
}

// Lit returns a literal constant leaf. The value is masked to the target
// width at translation time.
func Lit(value int64) *Directive {
	return &Directive{Op: Nop, Value: value}
}

// NewDirective returns a directive applying an expression operator.
// Unary operators carry only the right child.
func NewDirective(op Op, lhs, rhs *Directive) *Directive {
	assert(op.IsExpr() && op != Nop, "not an expression operator: %s", op)
	if op.IsUnary() {
		assert(lhs == nil && rhs != nil, "%s: unary operator takes a single right operand", op)
	} else {
		assert(lhs != nil && rhs != nil, "%s: binary operator takes two operands", op)
	}
	return &Directive{Op: op, LHS: lhs, RHS: rhs}
}

// MustSimplify returns a directive whose operand must translate and then
// simplify further; translation fails otherwise.
func MustSimplify(d *Directive) *Directive {
	return &Directive{Op: MustSimplifyOp, RHS: d}
}

// TrySimplify returns a directive whose operand is simplified on a
// best-effort basis after translation.
func TrySimplify(d *Directive) *Directive {
	return &Directive{Op: TrySimplifyOp, RHS: d}
}

// Either returns a directive translating to a's result when a translates,
// else to b's result. Short-circuiting left-to-right priority.
func Either(a, b *Directive) *Directive {
	return &Directive{Op: EitherOp, LHS: a, RHS: b}
}

// When returns a directive translating to then's result only if cond
// evaluates to a known non-zero constant.
func When(cond, then *Directive) *Directive {
	return &Directive{Op: WhenOp, LHS: cond, RHS: then}
}

// UnknownMaskOf returns a directive translating to the unknown-bit mask of
// its operand's result.
func UnknownMaskOf(d *Directive) *Directive {
	return &Directive{Op: MaskUnknownOp, RHS: d}
}

// OneMaskOf returns a directive translating to the known-one mask of its
// operand's result.
func OneMaskOf(d *Directive) *Directive {
	return &Directive{Op: MaskOneOp, RHS: d}
}

// ZeroMaskOf returns a directive translating to the known-zero mask of its
// operand's result.
func ZeroMaskOf(d *Directive) *Directive {
	return &Directive{Op: MaskZeroOp, RHS: d}
}

// Unreachable returns a directive that must never be reached at translation
// time. Reaching it indicates a malformed rule.
func Unreachable() *Directive {
	return &Directive{Op: UnreachableOp}
}

// Warn returns a directive that reports a diagnostic and continues with d.
func Warn(d *Directive) *Directive {
	return &Directive{Op: WarnOp, RHS: d}
}

// String returns the string representation of the directive.
func (d *Directive) String() string {
	switch {
	case d.Op == Nop && d.Ident != "":
		return d.Ident
	case d.Op == Nop:
		return fmt.Sprintf("%d", d.Value)
	case d.LHS == nil:
		return fmt.Sprintf("(%s %s)", d.Op, d.RHS)
	default:
		return fmt.Sprintf("(%s %s %s)", d.Op, d.LHS, d.RHS)
	}
}
