package symx

// DefaultRules returns the built-in table of algebraic identities. Rules
// are tried in order; each must strictly reduce complexity to apply, so the
// table can hold both directions of an identity without looping.
func DefaultRules() []Rule {
	x, y := Var("x"), Var("y")
	bin := NewDirective
	un := func(op Op, d *Directive) *Directive { return NewDirective(op, nil, d) }

	return []Rule{
		// Additive and multiplicative units.
		{"add-zero", bin(Add, x, Lit(0)), x},
		{"sub-zero", bin(Sub, x, Lit(0)), x},
		{"sub-self", bin(Sub, x, x), Lit(0)},
		{"mul-one", bin(Mul, x, Lit(1)), x},
		{"mul-zero", bin(Mul, x, Lit(0)), Lit(0)},
		{"udiv-one", bin(UDiv, x, Lit(1)), x},

		// Bitwise idempotence, units and annihilators.
		{"and-self", bin(And, x, x), x},
		{"and-zero", bin(And, x, Lit(0)), Lit(0)},
		{"and-ones", bin(And, x, Lit(-1)), x},
		{"or-self", bin(Or, x, x), x},
		{"or-zero", bin(Or, x, Lit(0)), x},
		{"or-ones", bin(Or, x, Lit(-1)), Lit(-1)},
		{"xor-self", bin(Xor, x, x), Lit(0)},
		{"xor-zero", bin(Xor, x, Lit(0)), x},

		// Involutions.
		{"not-not", un(Not, un(Not, x)), x},
		{"neg-neg", un(Neg, un(Neg, x)), x},

		// Shifts.
		{"shl-zero", bin(Shl, x, Lit(0)), x},
		{"lshr-zero", bin(LShr, x, Lit(0)), x},
		{"ashr-zero", bin(AShr, x, Lit(0)), x},

		// Negation folding.
		{"add-neg", bin(Add, x, un(Neg, y)), bin(Sub, x, y)},
		{"sub-neg", bin(Sub, x, un(Neg, y)), bin(Add, x, y)},

		// Bit-knowledge guarded rules: an operand whose every bit is known
		// zero vanishes from OR/XOR and annihilates AND even when it is not
		// written as a literal.
		{"or-known-zero", bin(Or, x, y),
			When(bin(Eq, ZeroMaskOf(y), Lit(-1)), x)},
		{"xor-known-zero", bin(Xor, x, y),
			When(bin(Eq, ZeroMaskOf(y), Lit(-1)), x)},
		{"and-known-zero", bin(And, x, y),
			When(bin(Eq, ZeroMaskOf(y), Lit(-1)), Lit(0))},
	}
}
