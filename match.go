package symx

// Matcher enumerates candidate symbol tables binding a pattern's variables
// against a subject expression. An empty result means the pattern does not
// apply; the order of candidates becomes the transform search order.
type Matcher interface {
	Match(pattern *Directive, subject *Expr) []*SymbolTable
}

// StructuralMatcher matches patterns by shape. Commutative operators
// contribute the swapped-operand candidate after the straight one; a pattern
// variable occurring more than once must capture structurally equal
// subexpressions.
type StructuralMatcher struct{}

// Match returns every binding of pattern against subject.
func (StructuralMatcher) Match(pattern *Directive, subject *Expr) []*SymbolTable {
	return matchDirective(pattern, subject, NewSymbolTable())
}

func matchDirective(dir *Directive, expr *Expr, st *SymbolTable) []*SymbolTable {
	assert(!dir.Op.IsMeta(), "meta-operator in pattern: %s", dir.Op)

	if dir.Op == Nop {
		// Variable leaf: bind, or require the prior capture to be equal.
		if dir.Ident != "" {
			if bound, ok := st.Translate(dir.Ident); ok {
				if CompareExpr(bound, expr) != 0 {
					return nil
				}
				return []*SymbolTable{st}
			}
			return []*SymbolTable{st.Bind(dir.Ident, expr)}
		}

		// Literal leaf: subject must be an equal constant at its own width.
		if !expr.IsConstant() || expr.Value != uint64(dir.Value)&expr.Mask() {
			return nil
		}
		return []*SymbolTable{st}
	}

	if expr.Op != dir.Op {
		return nil
	}
	if dir.Op.IsUnary() {
		return matchDirective(dir.RHS, expr.RHS, st)
	}

	results := matchOperands(dir.LHS, dir.RHS, expr.LHS, expr.RHS, st)
	if dir.Op.IsCommutative() {
		results = append(results, matchOperands(dir.LHS, dir.RHS, expr.RHS, expr.LHS, st)...)
	}
	return results
}

// matchOperands matches both operand positions, threading each left-side
// candidate through the right side.
func matchOperands(dirL, dirR *Directive, exprL, exprR *Expr, st *SymbolTable) []*SymbolTable {
	var results []*SymbolTable
	for _, lt := range matchDirective(dirL, exprL, st) {
		results = append(results, matchDirective(dirR, exprR, lt)...)
	}
	return results
}
