// Package parser implements the Parser contract internal/frontend
// depends on (Parse/ParseConditional) behind a small, hand-written
// recursive-descent grammar covering exactly the statement and filter
// shapes exercised by the test fixtures: FETCH/LIST/LOOKUP/STORE/
// TIMESERIES, separated by ';', and comparison/boolean FILTER expressions. The
// real SysDB grammar is out of scope; this is a faithful, deliberately
// small stand-in behind the same interface.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sysdb/sysdbd/internal/ast"
	"github.com/sysdb/sysdbd/internal/proto"
)

// Parser is the contract internal/frontend uses to turn query text
// into statements and FILTER clauses into expressions.
type Parser interface {
	Parse(text string) ([]ast.Node, error)
	ParseConditional(text string) (ast.Expr, error)
}

// New returns the built-in recursive-descent Parser.
func New() Parser {
	return &recursiveDescent{}
}

type recursiveDescent struct{}

// parseState carries the token stream for one parse call.
type parseState struct {
	lex *lexer
	cur token
}

func (p *recursiveDescent) Parse(text string) ([]ast.Node, error) {
	ps, err := newParseState(text)
	if err != nil {
		return nil, err
	}

	var nodes []ast.Node
	for ps.cur.kind != tokEOF {
		n, err := ps.statement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)

		if ps.cur.kind == tokSymbol && ps.cur.text == ";" {
			if err := ps.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if ps.cur.kind != tokEOF {
			return nil, fmt.Errorf("expected ';' or end of input, got %q", ps.cur.text)
		}
	}
	return nodes, nil
}

func (p *recursiveDescent) ParseConditional(text string) (ast.Expr, error) {
	ps, err := newParseState(text)
	if err != nil {
		return nil, err
	}
	if ps.cur.kind == tokEOF {
		return nil, nil
	}
	e, err := ps.expr()
	if err != nil {
		return nil, err
	}
	if ps.cur.kind != tokEOF {
		return nil, fmt.Errorf("unexpected trailing input %q", ps.cur.text)
	}
	return e, nil
}

func newParseState(text string) (*parseState, error) {
	ps := &parseState{lex: newLexer(text)}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	return ps, nil
}

func (ps *parseState) advance() error {
	t, err := ps.lex.next()
	if err != nil {
		return err
	}
	ps.cur = t
	return nil
}

func (ps *parseState) expectIdent(word string) error {
	if ps.cur.kind != tokIdent || !strings.EqualFold(ps.cur.text, word) {
		return fmt.Errorf("expected %q, got %q", word, ps.cur.text)
	}
	return ps.advance()
}

func (ps *parseState) isIdent(word string) bool {
	return ps.cur.kind == tokIdent && strings.EqualFold(ps.cur.text, word)
}

func (ps *parseState) expectString() (string, error) {
	if ps.cur.kind != tokString {
		return "", fmt.Errorf("expected a quoted string, got %q", ps.cur.text)
	}
	s := ps.cur.text
	return s, ps.advance()
}

func (ps *parseState) expectNumber() (int64, error) {
	if ps.cur.kind != tokNumber {
		return 0, fmt.Errorf("expected a number, got %q", ps.cur.text)
	}
	n, err := strconv.ParseInt(ps.cur.text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q: %w", ps.cur.text, err)
	}
	return n, ps.advance()
}

// statement dispatches on the leading keyword.
func (ps *parseState) statement() (ast.Node, error) {
	if ps.cur.kind != tokIdent {
		return nil, fmt.Errorf("expected a statement keyword, got %q", ps.cur.text)
	}

	switch strings.ToUpper(ps.cur.text) {
	case "FETCH":
		return ps.fetchStatement()
	case "LIST":
		return ps.listStatement()
	case "LOOKUP":
		return ps.lookupStatement()
	case "STORE":
		return ps.storeStatement()
	case "TIMESERIES":
		return ps.timeseriesStatement()
	default:
		return nil, fmt.Errorf("unknown statement keyword %q", ps.cur.text)
	}
}

func (ps *parseState) objectType() (proto.ObjectType, error) {
	if ps.cur.kind != tokIdent {
		return 0, fmt.Errorf("expected an object type, got %q", ps.cur.text)
	}
	t, ok := objectTypeNames[strings.ToUpper(ps.cur.text)]
	if !ok {
		return 0, fmt.Errorf("unknown object type %q", ps.cur.text)
	}
	return t, ps.advance()
}

var objectTypeNames = map[string]proto.ObjectType{
	"HOST":              proto.ObjectHost,
	"SERVICE":           proto.ObjectService,
	"METRIC":            proto.ObjectMetric,
	"ATTRIBUTE":         proto.ObjectAttribute,
	"SERVICE.ATTRIBUTE": proto.ObjectAttribute | proto.ObjectService,
	"METRIC.ATTRIBUTE":  proto.ObjectAttribute | proto.ObjectMetric,
}

func (ps *parseState) optionalFilter() (ast.Expr, error) {
	if !ps.isIdent("FILTER") {
		return nil, nil
	}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	return ps.expr()
}

func (ps *parseState) fetchStatement() (ast.Node, error) {
	if err := ps.expectIdent("FETCH"); err != nil {
		return nil, err
	}
	typ, err := ps.objectType()
	if err != nil {
		return nil, err
	}
	qualified, err := ps.expectString()
	if err != nil {
		return nil, err
	}
	hostname, name := splitQualifiedName(typ, qualified)
	filter, err := ps.optionalFilter()
	if err != nil {
		return nil, err
	}
	return &ast.Fetch{Type: typ, Hostname: hostname, Name: name, Filter: filter}, nil
}

func (ps *parseState) listStatement() (ast.Node, error) {
	if err := ps.expectIdent("LIST"); err != nil {
		return nil, err
	}
	typ, err := ps.objectType()
	if err != nil {
		return nil, err
	}
	filter, err := ps.optionalFilter()
	if err != nil {
		return nil, err
	}
	return &ast.List{Type: typ, Filter: filter}, nil
}

func (ps *parseState) lookupStatement() (ast.Node, error) {
	if err := ps.expectIdent("LOOKUP"); err != nil {
		return nil, err
	}
	typ, err := ps.objectType()
	if err != nil {
		return nil, err
	}
	if err := ps.expectIdent("MATCHING"); err != nil {
		return nil, err
	}
	matcher, err := ps.expectString()
	if err != nil {
		return nil, err
	}
	filter, err := ps.optionalFilter()
	if err != nil {
		return nil, err
	}
	return &ast.Lookup{Type: typ, Matcher: matcher, Filter: filter}, nil
}

func (ps *parseState) storeStatement() (ast.Node, error) {
	if err := ps.expectIdent("STORE"); err != nil {
		return nil, err
	}
	typ, err := ps.objectType()
	if err != nil {
		return nil, err
	}
	qualified, err := ps.expectString()
	if err != nil {
		return nil, err
	}

	s := &ast.Store{Type: typ}
	assignQualifiedName(s, qualified)

	if ps.isIdent("VALUE") {
		if err := ps.advance(); err != nil {
			return nil, err
		}
		v, err := ps.constValue()
		if err != nil {
			return nil, err
		}
		s.Value = v
	}
	if ps.isIdent("STORE_REF") {
		if err := ps.advance(); err != nil {
			return nil, err
		}
		storeType, err := ps.expectString()
		if err != nil {
			return nil, err
		}
		storeID, err := ps.expectString()
		if err != nil {
			return nil, err
		}
		s.StoreType, s.StoreID = storeType, storeID
	}
	if err := ps.expectIdent("AT"); err != nil {
		return nil, err
	}
	ts, err := ps.expectNumber()
	if err != nil {
		return nil, err
	}
	s.LastUpdate = ts
	return s, nil
}

func (ps *parseState) timeseriesStatement() (ast.Node, error) {
	if err := ps.expectIdent("TIMESERIES"); err != nil {
		return nil, err
	}
	qualified, err := ps.expectString()
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(qualified, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("TIMESERIES name must be hostname.metric, got %q", qualified)
	}
	return &ast.Timeseries{Hostname: parts[0], Metric: parts[1]}, nil
}

// splitQualifiedName resolves a FETCH/LIST name literal per type:
// HOST -> bare name; SERVICE/METRIC -> hostname.name; ATTRIBUTE and its
// SERVICE/METRIC-scoped variants carry their parent in the name too,
// but FETCH only needs hostname+name since the executor resolves the
// rest from Type.
func splitQualifiedName(typ proto.ObjectType, qualified string) (hostname, name string) {
	if typ == proto.ObjectHost {
		return "", qualified
	}
	parts := strings.SplitN(qualified, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", qualified
}

// assignQualifiedName fills in a Store node's Hostname/Parent/Name from
// a dotted literal, per object type: `name` for HOST; `host.name` for
// SERVICE/METRIC and bare host ATTRIBUTE; `host.parent.name` for a
// SERVICE.ATTRIBUTE/METRIC.ATTRIBUTE.
func assignQualifiedName(s *ast.Store, qualified string) {
	switch {
	case s.Type == proto.ObjectHost:
		s.Name = qualified
	case s.Type == proto.ObjectAttribute|proto.ObjectService:
		s.ParentType = proto.ObjectService
		parts := strings.SplitN(qualified, ".", 3)
		s.Hostname = at(parts, 0)
		s.Parent = at(parts, 1)
		s.Name = at(parts, 2)
	case s.Type == proto.ObjectAttribute|proto.ObjectMetric:
		s.ParentType = proto.ObjectMetric
		parts := strings.SplitN(qualified, ".", 3)
		s.Hostname = at(parts, 0)
		s.Parent = at(parts, 1)
		s.Name = at(parts, 2)
	default:
		// SERVICE, METRIC, and bare host ATTRIBUTE all share the
		// two-part hostname.name shape.
		parts := strings.SplitN(qualified, ".", 2)
		s.Hostname = at(parts, 0)
		s.Name = at(parts, 1)
	}
}

func at(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func (ps *parseState) constValue() (proto.Datum, error) {
	switch ps.cur.kind {
	case tokString:
		s := ps.cur.text
		if err := ps.advance(); err != nil {
			return proto.Datum{}, err
		}
		return proto.Datum{Type: proto.TypeString, String: s}, nil
	case tokNumber:
		n, err := ps.expectNumber()
		if err != nil {
			return proto.Datum{}, err
		}
		return proto.Datum{Type: proto.TypeInteger, Integer: n}, nil
	default:
		return proto.Datum{}, fmt.Errorf("expected a value literal, got %q", ps.cur.text)
	}
}

// expr parses a FILTER clause: a chain of comparisons joined by
// AND/OR (left-associative, equal precedence), with NOT binding to a
// single comparison or parenthesized group.
func (ps *parseState) expr() (ast.Expr, error) {
	left, err := ps.unary()
	if err != nil {
		return nil, err
	}
	for ps.isIdent("AND") || ps.isIdent("OR") {
		op := ast.BoolAnd
		if strings.EqualFold(ps.cur.text, "OR") {
			op = ast.BoolOr
		}
		if err := ps.advance(); err != nil {
			return nil, err
		}
		right, err := ps.unary()
		if err != nil {
			return nil, err
		}
		left = &ast.Bool{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (ps *parseState) unary() (ast.Expr, error) {
	if ps.isIdent("NOT") {
		if err := ps.advance(); err != nil {
			return nil, err
		}
		operand, err := ps.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Operand: operand}, nil
	}
	return ps.comparison()
}

func (ps *parseState) comparison() (ast.Expr, error) {
	if ps.cur.kind == tokSymbol && ps.cur.text == "(" {
		if err := ps.advance(); err != nil {
			return nil, err
		}
		e, err := ps.expr()
		if err != nil {
			return nil, err
		}
		if ps.cur.kind != tokSymbol || ps.cur.text != ")" {
			return nil, fmt.Errorf("expected ')', got %q", ps.cur.text)
		}
		return e, ps.advance()
	}

	left, err := ps.operand()
	if err != nil {
		return nil, err
	}
	op, err := ps.cmpOp()
	if err != nil {
		return nil, err
	}
	right, err := ps.operand()
	if err != nil {
		return nil, err
	}
	return &ast.Cmp{Op: op, Left: left, Right: right}, nil
}

func (ps *parseState) operand() (ast.Expr, error) {
	switch ps.cur.kind {
	case tokIdent:
		name := strings.ToUpper(ps.cur.text)
		if err := ps.advance(); err != nil {
			return nil, err
		}
		return &ast.FieldRef{Name: name}, nil
	case tokString, tokNumber:
		v, err := ps.constValue()
		if err != nil {
			return nil, err
		}
		return &ast.Const{Value: v}, nil
	default:
		return nil, fmt.Errorf("expected a field name or literal, got %q", ps.cur.text)
	}
}

func (ps *parseState) cmpOp() (ast.CmpOp, error) {
	if ps.cur.kind != tokSymbol {
		return 0, fmt.Errorf("expected a comparison operator, got %q", ps.cur.text)
	}
	op, ok := cmpOpSymbols[ps.cur.text]
	if !ok {
		return 0, fmt.Errorf("unknown comparison operator %q", ps.cur.text)
	}
	return op, ps.advance()
}

var cmpOpSymbols = map[string]ast.CmpOp{
	"=":  ast.CmpEq,
	"!=": ast.CmpNe,
	"<":  ast.CmpLt,
	"<=": ast.CmpLe,
	">":  ast.CmpGt,
	">=": ast.CmpGe,
}
