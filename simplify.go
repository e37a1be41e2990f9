package symx

// Simplifier rewrites an expression in place toward a canonical simpler
// form, reporting whether anything changed. The expression handed in must
// be exclusively owned by the caller.
type Simplifier interface {
	Simplify(*Expr) bool
}

// Rule is one rewrite rule: a pattern matched against the input and a
// template instantiated under the resulting bindings.
type Rule struct {
	Name string
	From *Directive
	To   *Directive
}

// Bounds on the simplification pass. Recursion depth follows the expression
// tree; rule passes repeat per node until a fixpoint or the cap.
const (
	maxSimplifyDepth  = 64
	maxSimplifyPasses = 8
)

// RuleSimplifier simplifies expressions bottom-up by constant folding and by
// applying a rule table through the transformer, accepting only rewrites of
// strictly lower complexity. The simplifier and its transformer reference
// each other: rule templates may invoke simplification through the
// simplification meta-operators, and simplification drives the transformer.
type RuleSimplifier struct {
	Rules []Rule
	tr    *Transformer
}

// NewRuleSimplifier returns a simplifier over the given rule table, wired
// to its own transformer.
func NewRuleSimplifier(rules []Rule) *RuleSimplifier {
	s := &RuleSimplifier{Rules: rules}
	s.tr = &Transformer{Matcher: StructuralMatcher{}, Simplifier: s}
	return s
}

// Simplify rewrites e in place. Returns true if e changed.
func (s *RuleSimplifier) Simplify(e *Expr) bool {
	simplified, changed := s.simplify(e, 0)
	if changed {
		*e = *simplified
	}
	return changed
}

func (s *RuleSimplifier) simplify(e *Expr, depth int) (*Expr, bool) {
	if e.NoSimplify || depth > maxSimplifyDepth || e.Op == Nop {
		return e, false
	}

	// Children first; rebuilding through the constructors re-folds.
	changed := false
	switch {
	case e.Op.IsUnary():
		if rhs, ok := s.simplify(e.RHS, depth+1); ok {
			e = NewUnary(e.Op, rhs)
			changed = true
		}
	case e.Op.IsCast():
		if lhs, ok := s.simplify(e.LHS, depth+1); ok {
			lhs = lhs.Detach()
			lhs.Resize(e.Width, e.Op == Cast)
			e = lhs
			changed = true
		}
	default:
		lhs, lok := s.simplify(e.LHS, depth+1)
		rhs, rok := s.simplify(e.RHS, depth+1)
		if lok || rok {
			e = NewBinary(e.Op, lhs, rhs)
			changed = true
		}
	}
	if e.Op == Nop {
		return e, changed
	}

	// Apply the rule table to a fixpoint, strictly reducing complexity.
	for pass := 0; pass < maxSimplifyPasses; pass++ {
		applied := false
		for i := range s.Rules {
			rule := &s.Rules[i]
			prev := e
			rewritten := s.tr.Transform(e, rule.From, rule.To, func(c *Expr) bool {
				return c.Complexity() < prev.Complexity()
			})
			if rewritten == nil {
				continue
			}
			e, changed, applied = rewritten, true, true
			if e.Op == Nop {
				return e, true
			}
		}
		if !applied {
			break
		}
	}
	return e, changed
}

// SimplifyExpr simplifies expr with the default rule table, returning the
// simplified expression. The input is not mutated.
func SimplifyExpr(expr *Expr) *Expr {
	e := expr.Detach()
	NewRuleSimplifier(DefaultRules()).Simplify(e)
	return e
}
