package symx

import "github.com/benbjohnson/immutable"

// SymbolTable maps pattern-variable identifiers to the concrete expressions
// captured during matching. Tables are persistent: Bind returns a new table
// sharing structure with the receiver, so sibling match candidates can
// extend a common prefix without copying.
type SymbolTable struct {
	m *immutable.SortedMap
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{m: immutable.NewSortedMap(&identComparer{})}
}

// Bind returns a copy of the table with ident bound to expr.
func (st *SymbolTable) Bind(ident string, expr *Expr) *SymbolTable {
	assert(ident != "", "bind requires an identifier")
	assert(expr != nil, "bind requires an expression")
	return &SymbolTable{m: st.m.Set(ident, expr)}
}

// Translate returns the expression bound to ident.
func (st *SymbolTable) Translate(ident string) (*Expr, bool) {
	v, ok := st.m.Get(ident)
	if !ok {
		return nil, false
	}
	return v.(*Expr), true
}

// Len returns the number of bindings.
func (st *SymbolTable) Len() int {
	return st.m.Len()
}

// Range calls fn for each binding in identifier order until fn returns false.
func (st *SymbolTable) Range(fn func(ident string, expr *Expr) bool) {
	for itr := st.m.Iterator(); !itr.Done(); {
		k, v := itr.Next()
		if !fn(k.(string), v.(*Expr)) {
			return
		}
	}
}

// identComparer compares two identifiers. Implements immutable.Comparer.
type identComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b,
// and returns 0 if a is equal to b. Panic if a or b is not a string.
func (c *identComparer) Compare(a, b interface{}) int {
	if i, j := a.(string), b.(string); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
