package symx

// Filter accepts or rejects a candidate rewritten expression.
type Filter func(*Expr) bool

// Transformer applies rewrite rules to expressions. The matcher enumerates
// variable bindings for patterns; the simplifier canonicalizes expressions
// built by the simplification meta-operators.
type Transformer struct {
	Matcher    Matcher
	Simplifier Simplifier
}

// NewTransformer returns a transformer wired to the structural matcher and
// the default rule-driven simplifier.
func NewTransformer() *Transformer {
	return NewRuleSimplifier(DefaultRules()).tr
}

// Transform applies one rewrite rule to expr, returning the first rewritten
// form accepted by filter, or nil if the rule does not apply. With a nil
// filter any successful rewrite is accepted; candidates are then probed
// speculatively first so that rewrites doomed to fail inside their own
// template (a When guard that never holds, say) are skipped without
// building anything.
func (t *Transformer) Transform(expr *Expr, from, to *Directive, filter Filter) *Expr {
	matches := t.Matcher.Match(from, expr)
	if len(matches) == 0 {
		return nil
	}

	if filter != nil {
		for _, st := range matches {
			if rewritten, ok := t.translate(st, to, expr.Width, false); ok && filter(rewritten) {
				return rewritten
			}
		}
		return nil
	}

	for _, st := range matches {
		if !t.Feasible(st, to, expr.Width) {
			continue
		}
		rewritten, ok := t.translate(st, to, expr.Width, false)
		assert(ok, "translation failed after successful speculative probe: %s", to)
		return rewritten
	}
	return nil
}

// Feasible reports whether dir could be instantiated under st, without
// building a single expression node.
func (t *Transformer) Feasible(st *SymbolTable, dir *Directive, width uint) bool {
	_, ok := t.translate(st, dir, width, true)
	return ok
}

// Translate instantiates dir under st at the given width, building concrete
// expression nodes. Returns false if the directive cannot be instantiated.
func (t *Transformer) Translate(st *SymbolTable, dir *Directive, width uint) (*Expr, bool) {
	return t.translate(st, dir, width, false)
}

// translate is the single evaluator behind both modes. In speculative mode
// no expression nodes are built: success is reported through the boolean
// alone and the expression result is always nil, so a probe result cannot
// leak into a committed tree. The two modes share this one control flow to
// keep them consistent: a speculative probe succeeds exactly when the
// committing translation would.
func (t *Transformer) translate(st *SymbolTable, dir *Directive, width uint, speculative bool) (*Expr, bool) {
	if dir.Op.IsExpr() {
		// Leaf: literal constant or bound pattern variable.
		if dir.Op == Nop {
			if dir.Ident == "" {
				if speculative {
					return nil, true
				}
				return NewConstant(uint64(dir.Value), width), true
			}
			bound, ok := st.Translate(dir.Ident)
			assert(ok, "unbound pattern variable: %s", dir.Ident)
			if speculative {
				return nil, true
			}
			return bound, true
		}

		// Probing an operator only asks whether every operand can be built.
		if speculative {
			if dir.LHS != nil {
				if _, ok := t.translate(st, dir.LHS, width, true); !ok {
					return nil, false
				}
			}
			if _, ok := t.translate(st, dir.RHS, width, true); !ok {
				return nil, false
			}
			return nil, true
		}

		// Casts redirect to an in-place resize of the value operand.
		if dir.Op.IsCast() {
			value, ok := t.translate(st, dir.LHS, width, false)
			if !ok {
				return nil, false
			}
			widthExpr, ok := t.translate(st, dir.RHS, width, false)
			if !ok {
				return nil, false
			}
			w, ok := widthExpr.ConstValue()
			assert(ok, "cast width is not a known constant: %s", dir.RHS)

			// The value may be the symbol table's own binding; resize only
			// ever mutates an exclusively owned copy.
			value = value.Detach()
			value.Resize(uint(w), dir.Op == Cast)
			return value, true
		}

		if dir.LHS != nil {
			lhs, ok := t.translate(st, dir.LHS, width, false)
			if !ok {
				return nil, false
			}
			rhs, ok := t.translate(st, dir.RHS, width, false)
			if !ok {
				return nil, false
			}
			return NewBinary(dir.Op, lhs, rhs), true
		}

		rhs, ok := t.translate(st, dir.RHS, width, false)
		if !ok {
			return nil, false
		}
		return NewUnary(dir.Op, rhs), true
	}

	switch dir.Op {
	case MustSimplifyOp:
		// The operand must build and then reduce further. It is built for
		// real in both modes: whether it simplifies cannot be decided
		// without the actual expression.
		e, ok := t.translate(st, dir.RHS, width, false)
		if !ok || e.NoSimplify {
			return nil, false
		}
		e = e.Detach()
		if !t.Simplifier.Simplify(e) {
			return nil, false
		}
		if speculative {
			return nil, true
		}
		return e, true

	case TrySimplifyOp:
		e, ok := t.translate(st, dir.RHS, width, speculative)
		if !ok {
			return nil, false
		}
		if !speculative {
			e = e.Detach()
			t.Simplifier.Simplify(e)
		}
		return e, ok

	case EitherOp:
		if e, ok := t.translate(st, dir.LHS, width, speculative); ok {
			return e, true
		}
		if e, ok := t.translate(st, dir.RHS, width, speculative); ok {
			return e, true
		}
		return nil, false

	case WhenOp:
		// The condition is always evaluated for real, even during a probe:
		// conditions are cheap and side-effect-free, and evaluating them
		// identically in both modes is what keeps the modes consistent.
		cond, ok := t.translate(st, dir.LHS, width, false)
		if !ok {
			return nil, false
		}
		cond = cond.Detach()
		t.Simplifier.Simplify(cond)
		if v, ok := cond.ConstValue(); !ok || v == 0 {
			return nil, false
		}
		return t.translate(st, dir.RHS, width, speculative)

	case MaskUnknownOp, MaskOneOp, MaskZeroOp:
		e, ok := t.translate(st, dir.RHS, width, speculative)
		if !ok {
			return nil, false
		}
		if speculative {
			return nil, true
		}
		switch dir.Op {
		case MaskUnknownOp:
			return NewConstant(e.UnknownMask(), e.Width), true
		case MaskOneOp:
			return NewConstant(e.KnownOne(), e.Width), true
		default:
			return NewConstant(e.KnownZero(), e.Width), true
		}

	case UnreachableOp:
		panic("symx: unreachable directive reached at translation time")

	case WarnOp:
		Warnf("symx: warning directive hit: %s", dir.RHS)
		return t.translate(st, dir.RHS, width, speculative)

	default:
		panic("unreachable")
	}
}
