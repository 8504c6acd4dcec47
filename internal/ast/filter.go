package ast

import (
	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/internal/store"
)

var fieldByName = map[string]store.Field{
	"NAME":        store.FieldName,
	"LAST_UPDATE": store.FieldLastUpdate,
	"AGE":         store.FieldAge,
	"INTERVAL":    store.FieldInterval,
	"BACKEND":     store.FieldBackend,
}

// Filter adapts an Expr into a store.Filter, letting the executors pass
// a parsed FILTER clause straight into Store.ToJSON/iteration without
// the store package knowing anything about the AST.
type Filter struct {
	Expr Expr
}

// Matches implements store.Filter.
func (f Filter) Matches(obj store.FieldSource) bool {
	if f.Expr == nil {
		return true
	}
	v, ok := evalExpr(f.Expr, obj)
	if !ok {
		return false
	}
	return v.Scalar() == proto.TypeInteger && v.Integer != 0
}

// evalExpr reduces e against obj to a Datum: Cmp/Bool/Not nodes reduce
// to an Integer 0/1 so the recursion has a single return type; FieldRef
// and Const return their own value directly.
func evalExpr(e Expr, obj store.FieldSource) (proto.Datum, bool) {
	switch v := e.(type) {
	case *FieldRef:
		f, ok := fieldByName[v.Name]
		if !ok {
			return proto.Datum{}, false
		}
		return obj.Field(f)
	case *Const:
		return v.Value, true
	case *Cmp:
		left, ok := evalExpr(v.Left, obj)
		if !ok {
			return proto.Datum{}, false
		}
		right, ok := evalExpr(v.Right, obj)
		if !ok {
			return proto.Datum{}, false
		}
		return boolDatum(evalCmp(v.Op, left, right)), true
	case *Bool:
		left, ok := evalExpr(v.Left, obj)
		if !ok {
			return proto.Datum{}, false
		}
		right, ok := evalExpr(v.Right, obj)
		if !ok {
			return proto.Datum{}, false
		}
		l, r := truthy(left), truthy(right)
		switch v.Op {
		case BoolAnd:
			return boolDatum(l && r), true
		default:
			return boolDatum(l || r), true
		}
	case *Not:
		operand, ok := evalExpr(v.Operand, obj)
		if !ok {
			return proto.Datum{}, false
		}
		return boolDatum(!truthy(operand)), true
	default:
		return proto.Datum{}, false
	}
}

func evalCmp(op CmpOp, left, right proto.Datum) bool {
	c := left.Compare(right)
	switch op {
	case CmpEq:
		return c == 0
	case CmpNe:
		return c != 0
	case CmpLt:
		return c < 0
	case CmpLe:
		return c <= 0
	case CmpGt:
		return c > 0
	default:
		return c >= 0
	}
}

func truthy(d proto.Datum) bool {
	return d.Scalar() == proto.TypeInteger && d.Integer != 0
}

func boolDatum(b bool) proto.Datum {
	if b {
		return proto.Datum{Type: proto.TypeInteger, Integer: 1}
	}
	return proto.Datum{Type: proto.TypeInteger, Integer: 0}
}
