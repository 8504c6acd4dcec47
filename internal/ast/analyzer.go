package ast

import (
	"fmt"

	"github.com/sysdb/sysdbd/internal/proto"
)

// Analyze validates every node produced by a parse, in the style of
// internal/config.Validate: one focused validateX check per concern,
// each wrapping its error with context. It resolves nothing (field
// references are resolved lazily at evaluation time) — its only job is
// to reject statements whose shape cannot be executed.
func Analyze(nodes []Node) error {
	for i, n := range nodes {
		if err := analyzeNode(n); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

func analyzeNode(n Node) error {
	switch v := n.(type) {
	case *Fetch:
		return validateObjectType(v.Type, v.Filter)
	case *List:
		return validateObjectType(v.Type, v.Filter)
	case *Lookup:
		if v.Matcher == "" {
			return fmt.Errorf("LOOKUP: empty matcher")
		}
		return validateObjectType(v.Type, v.Filter)
	case *Store:
		return validateStore(v)
	case *Timeseries:
		return validateTimeseries(v)
	default:
		return fmt.Errorf("unknown node type %T", n)
	}
}

func validateObjectType(t proto.ObjectType, filter Expr) error {
	switch t {
	case proto.ObjectHost, proto.ObjectService, proto.ObjectMetric, proto.ObjectAttribute:
	default:
		if !t.HasAttribute() || t.ParentType() == 0 {
			return fmt.Errorf("invalid object type %s", t)
		}
	}
	return validateFilter(filter)
}

func validateStore(s *Store) error {
	if s.Name == "" && !s.Type.HasAttribute() {
		return fmt.Errorf("STORE %s: missing name", s.Type)
	}
	if s.Type.HasAttribute() {
		switch s.ParentType {
		case 0, proto.ObjectService, proto.ObjectMetric:
		default:
			return fmt.Errorf("STORE ATTRIBUTE: invalid parent_type %s", s.ParentType)
		}
		if s.ParentType != 0 && s.Parent == "" {
			return fmt.Errorf("STORE ATTRIBUTE: parent_type %s requires a parent name", s.ParentType)
		}
	}
	return nil
}

func validateTimeseries(t *Timeseries) error {
	if t.Metric == "" {
		return fmt.Errorf("TIMESERIES: missing metric name")
	}
	return nil
}

func validateFilter(e Expr) error {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *FieldRef:
		if !isKnownField(v.Name) {
			return fmt.Errorf("unknown field reference %q", v.Name)
		}
	case *Const:
	case *Cmp:
		if err := validateFilter(v.Left); err != nil {
			return err
		}
		return validateFilter(v.Right)
	case *Bool:
		if err := validateFilter(v.Left); err != nil {
			return err
		}
		return validateFilter(v.Right)
	case *Not:
		return validateFilter(v.Operand)
	default:
		return fmt.Errorf("unknown expression type %T", e)
	}
	return nil
}

func isKnownField(name string) bool {
	switch name {
	case "NAME", "LAST_UPDATE", "AGE", "INTERVAL", "BACKEND":
		return true
	default:
		return false
	}
}
