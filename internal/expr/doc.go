// Package expr implements the scripting expression language.
//
// An expression is tokenized once (Tokenize) and evaluated by recursive
// splitting over token slices (Evaluator.Eval). Each slice is split at its
// loosest-binding top-level operator; ties between binary operators pick
// the rightmost occurrence, which gives left associativity, while ties
// between unary operators pick the leftmost so a prefix operator applies
// to everything after it.
//
// Precedence, loosest first:
//
//	1  ||
//	2  &&
//	3  ==  !=
//	4  <  <=  >  >=
//	5  +  -
//	6  *  /  %
//	7  unary -  !
//
// Identifiers resolve through the call's parameter bindings, then the
// constants true and false, then the Scope supplied by the engine.
// Function calls resolve built-ins first, then the Scope's user functions.
// User function recursion is bounded by a call-depth ceiling
// (DefaultMaxCallDepth).
//
// There are no loops, strings, or collections; the only runtime values are
// ir.Number and ir.Boolean.
package expr
