package ast

import "its-hmny.dev/zontanos/pkg/token"

// ----------------------------------------------------------------------------
// Logical statements

// A LogicalStatement is an if/else construct: the comparison cases parsed
// left-to-right from the condition, the mandatory then-block and the optional
// else-block. Codegen folds the cases into a single i1 and branches on it.
type LogicalStatement struct {
	Cases  []Stmt // The condition clauses and their And/Or joiners, in source order
	IfDo   *Node  // The Block executed when the folded condition holds
	ElseDo *Node  // The Block executed otherwise, nil when there is no else
}

// A Stmt is a single element of a LogicalStatement case sequence.
//
// We declare a shared 'Stmt' interface, then we define one after the other
// all the specific clauses: the And/Or joiners consumed between comparisons,
// the binary comparisons themselves and the atomic (single value) clause.
type Stmt interface{}

type OrStmt struct{}  // An '||' joiner between two clauses
type AndStmt struct{} // An '&&' joiner between two clauses

type Compare struct { // A binary 'value OP value' clause
	Op  token.Kind // One of EqEq, More, Less, MoreEq, LessEq, OrOr, AndAnd
	Lhs Value      // The left-hand value of the comparison
	Rhs Value      // The right-hand value of the comparison
}

type Atomic struct { // A single-value clause (e.g. a bare boolean)
	Val Value // The value standing for the whole clause
}
