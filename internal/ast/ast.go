// Package ast defines the node types produced by internal/parser and
// consumed by internal/frontend's executors: the four query statement
// shapes (FETCH, LIST, LOOKUP, STORE) plus the TIMESERIES placeholder,
// and the boolean/comparison expression tree used by FILTER clauses.
package ast

import "github.com/sysdb/sysdbd/internal/proto"

// Node is any top-level statement a parsed query text can contain.
type Node interface {
	node()
}

// Fetch retrieves a single named object, optionally filtered.
type Fetch struct {
	Type     proto.ObjectType
	Hostname string
	Name     string
	Filter   Expr
}

func (*Fetch) node() {}

// List enumerates every object of a type, optionally filtered.
type List struct {
	Type   proto.ObjectType
	Filter Expr
}

func (*List) node() {}

// Lookup enumerates every object of a type whose name matches Matcher,
// optionally filtered further.
type Lookup struct {
	Type    proto.ObjectType
	Matcher string
	Filter  Expr
}

func (*Lookup) node() {}

// Store creates or refreshes a single object. ParentType/Parent are
// only meaningful when Type has the ATTRIBUTE bit set; ParentType is 0
// for a bare host attribute.
type Store struct {
	Type       proto.ObjectType
	Hostname   string
	ParentType proto.ObjectType
	Parent     string
	Name       string
	LastUpdate int64
	StoreType  string
	StoreID    string
	Value      proto.Datum
}

func (*Store) node() {}

// Timeseries is parsed but never executed: the command code is
// reserved and always answered with "not implemented".
type Timeseries struct {
	Hostname string
	Metric   string
}

func (*Timeseries) node() {}

// Expr is a boolean or field-valued expression used inside a FILTER
// clause.
type Expr interface {
	expr()
}

// FieldRef references one of the well-known entity fields (NAME,
// LAST_UPDATE, AGE, INTERVAL, BACKEND).
type FieldRef struct {
	Name string
}

func (*FieldRef) expr() {}

// Const is a literal value compared against a FieldRef.
type Const struct {
	Value proto.Datum
}

func (*Const) expr() {}

// CmpOp is a comparison operator.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Cmp compares Left against Right using Op.
type Cmp struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

func (*Cmp) expr() {}

// BoolOp is a logical operator.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
)

// Bool combines Left and Right with Op.
type Bool struct {
	Op    BoolOp
	Left  Expr
	Right Expr
}

func (*Bool) expr() {}

// Not negates Operand.
type Not struct {
	Operand Expr
}

func (*Not) expr() {}
