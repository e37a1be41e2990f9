// Package symx implements a directive-driven rewrite engine for bit-vector
// expression trees. Rewrite rules are expressed as pairs of directive trees:
// a pattern matched against a concrete expression and a template instantiated
// under the resulting variable bindings.
package symx

import (
	"fmt"
	"log"
)

// Standard widths.
const (
	WidthBool = 1
	Width8    = 8
	Width16   = 16
	Width32   = 32
	Width64   = 64
)

// Warnf reports diagnostics emitted by Warn directives.
// Replaceable for testing or to silence output.
var Warnf = log.Printf

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
