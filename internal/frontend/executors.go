package frontend

import (
	"encoding/binary"
	"fmt"

	"github.com/sysdb/sysdbd/internal/ast"
	apierrors "github.com/sysdb/sysdbd/internal/errors"
	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/internal/store"
)

// typedData prepends the 4-byte object-type subtype header every DATA
// reply carries: the request's type for LIST/FETCH/LOOKUP, or 0 for a
// QUERY-driven result.
func typedData(t proto.ObjectType, payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out[:4], uint32(t))
	copy(out[4:], payload)
	return out
}

// execQueryText parses a QUERY frame's text into one or more statements
// and runs each in turn. Only the first statement's result is replied
// with DATA; every statement after it is announced, but not executed,
// via a single LOG frame — "Ignoring %d command%s in multi-statement
// query %q" — before the first statement's reply, matching the
// one-statement-per-query contract. A query with zero statements gets
// an empty DATA array.
func (c *Connection) execQueryText(text string) bool {
	nodes, err := c.parser.Parse(text)
	if err != nil {
		return c.writeError(apierrors.WrapWithCode(err, apierrors.ErrSemantic, "parsing query"))
	}
	if err := ast.Analyze(nodes); err != nil {
		return c.writeError(apierrors.WrapWithCode(err, apierrors.ErrSemantic, "analyzing query"))
	}

	if len(nodes) == 0 {
		return c.writeData(typedData(0, []byte("[]")))
	}

	if ignored := len(nodes) - 1; ignored > 0 {
		plural := "s"
		if ignored == 1 {
			plural = ""
		}
		if !c.writeLog(fmt.Sprintf("Ignoring %d command%s in multi-statement query %q", ignored, plural, text)) {
			return false
		}
	}

	return c.execNode(nodes[0])
}

// execNode runs a single parsed statement for the QUERY path, where the
// DATA subtype header is always 0 regardless of the statement's object
// type (the subtype only echoes the binary FETCH/LIST/LOOKUP request
// type, per the reply-payload convention).
func (c *Connection) execNode(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.Fetch:
		payload, err := c.runFetch(v)
		return c.replyData(proto.ObjectType(0), payload, err)
	case *ast.List:
		payload, err := c.runList(v)
		return c.replyData(proto.ObjectType(0), payload, err)
	case *ast.Lookup:
		payload, err := c.runLookup(v)
		return c.replyData(proto.ObjectType(0), payload, err)
	case *ast.Store:
		return c.runStore(v)
	case *ast.Timeseries:
		return c.writeError(apierrors.ErrNotImplemented)
	default:
		return c.writeError(fmt.Errorf("unsupported statement type %T", n))
	}
}

// replyData writes a DATA frame carrying payload prefixed with t's
// subtype header, or an ERROR frame if err is non-nil.
func (c *Connection) replyData(t proto.ObjectType, payload []byte, err error) bool {
	if err != nil {
		return c.writeError(err)
	}
	return c.writeData(typedData(t, payload))
}

// execFetch decodes a FETCH frame's binary payload and runs it.
func (c *Connection) execFetch(payload []byte) bool {
	req, err := proto.DecodeFetchRequest(payload)
	if err != nil {
		return c.writeError(err)
	}
	hostname, name := splitFetchName(req.Type, req.Name)
	result, err := c.runFetch(&ast.Fetch{Type: req.Type, Hostname: hostname, Name: name})
	return c.replyData(req.Type, result, err)
}

func (c *Connection) execList(payload []byte) bool {
	req, err := proto.DecodeListRequest(payload)
	if err != nil {
		return c.writeError(err)
	}
	result, err := c.runList(&ast.List{Type: req.Type})
	return c.replyData(req.Type, result, err)
}

func (c *Connection) execLookup(payload []byte) bool {
	req, err := proto.DecodeLookupRequest(payload)
	if err != nil {
		return c.writeError(err)
	}
	result, err := c.runLookup(&ast.Lookup{Type: req.Type, Matcher: req.Matcher})
	return c.replyData(req.Type, result, err)
}

func splitFetchName(typ proto.ObjectType, qualified string) (hostname, name string) {
	if typ == proto.ObjectHost || qualified == "" {
		return "", qualified
	}
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[:i], qualified[i+1:]
		}
	}
	return "", qualified
}

// runFetch resolves a single named object. FETCH tolerates an empty or
// missing hostname for HOST lookups, returning an empty DATA array
// rather than an error when nothing matches.
func (c *Connection) runFetch(f *ast.Fetch) ([]byte, error) {
	filter := filterOf(f.Filter)

	var (
		payload []byte
		ok      bool
		err     error
	)
	switch f.Type {
	case proto.ObjectHost:
		payload, ok, err = c.store.FetchHostJSON(f.Name, filter, 0)
	case proto.ObjectService:
		payload, ok, err = c.store.FetchServiceJSON(f.Hostname, f.Name, filter, 0)
	case proto.ObjectMetric:
		payload, ok, err = c.store.FetchMetricJSON(f.Hostname, f.Name, filter, 0)
	default:
		return nil, fmt.Errorf("FETCH: unsupported object type %s", f.Type)
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return []byte("[]"), nil
	}
	return append([]byte("["), append(payload, ']')...), nil
}

func (c *Connection) runList(l *ast.List) ([]byte, error) {
	filter := filterOf(l.Filter)
	skip := skipFor(l.Type)
	return c.store.ToJSON(filter, skip)
}

// runLookup parses the matcher text as a conditional expression — the
// same grammar a FILTER clause uses — and ANDs it with any additional
// Filter already attached to the node, then dumps every object of the
// requested type that satisfies the combined expression.
func (c *Connection) runLookup(l *ast.Lookup) ([]byte, error) {
	matchExpr, err := c.parser.ParseConditional(l.Matcher)
	if err != nil {
		return nil, apierrors.WrapWithCode(err, apierrors.ErrSemantic, "parsing LOOKUP matcher")
	}

	combined := combineExpr(matchExpr, l.Filter)
	if err := ast.Analyze([]ast.Node{&ast.Lookup{Type: l.Type, Matcher: l.Matcher, Filter: combined}}); err != nil {
		return nil, apierrors.WrapWithCode(err, apierrors.ErrSemantic, "analyzing LOOKUP")
	}

	skip := skipFor(l.Type)
	return c.store.ToJSON(filterOf(combined), skip)
}

// combineExpr ANDs two optional expressions, returning whichever one
// is present when the other is nil.
func combineExpr(a, b ast.Expr) ast.Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return &ast.Bool{Op: ast.BoolAnd, Left: a, Right: b}
	}
}

// skipFor narrows the dumped tree to exactly the requested level: a
// LIST/LOOKUP HOST still nests services/metrics/attributes, but a
// LIST/LOOKUP SERVICE or METRIC dumps flat objects with only their own
// attributes, matching the reference server's per-type result shape.
func skipFor(t proto.ObjectType) store.SkipFlags {
	switch t {
	case proto.ObjectHost:
		return 0
	default:
		return store.SkipServices | store.SkipMetrics
	}
}

// execStoreFrame decodes a binary STORE payload per object type and
// runs it. The wire type tag is the first four bytes of every STORE
// payload.
func (c *Connection) execStoreFrame(payload []byte) bool {
	if len(payload) < 4 {
		return c.writeError(fmt.Errorf("STORE: payload too short"))
	}
	typ := proto.ObjectType(be32(payload))
	body := payload[4:]

	switch typ {
	case proto.ObjectHost:
		h, _, err := proto.DecodeHost(body)
		if err != nil {
			return c.writeError(err)
		}
		return c.runStore(&ast.Store{Type: proto.ObjectHost, Name: h.Name, LastUpdate: h.LastUpdate})
	case proto.ObjectService:
		s, _, err := proto.DecodeService(body)
		if err != nil {
			return c.writeError(err)
		}
		return c.runStore(&ast.Store{Type: proto.ObjectService, Hostname: s.Hostname, Name: s.Name, LastUpdate: s.LastUpdate})
	case proto.ObjectMetric:
		m, _, err := proto.DecodeMetric(body)
		if err != nil {
			return c.writeError(err)
		}
		return c.runStore(&ast.Store{
			Type: proto.ObjectMetric, Hostname: m.Hostname, Name: m.Name,
			LastUpdate: m.LastUpdate, StoreType: m.StoreType, StoreID: m.StoreID,
		})
	default:
		if !typ.HasAttribute() {
			return c.writeError(fmt.Errorf("STORE: unsupported object type %s", typ))
		}
		a, _, err := proto.DecodeAttribute(body)
		if err != nil {
			return c.writeError(err)
		}
		s := &ast.Store{Type: typ, ParentType: a.ParentType, LastUpdate: a.LastUpdate, Value: a.Value}
		assignAttrNames(s, a.Parent, a.Key)
		return c.runStore(s)
	}
}

// assignAttrNames splits an attribute's parent literal into hostname
// and, when the attribute is scoped to a service or metric, the
// intermediate parent name too.
func assignAttrNames(s *ast.Store, parent, key string) {
	if s.ParentType == 0 {
		s.Hostname = parent
		s.Name = key
		return
	}
	for i := len(parent) - 1; i >= 0; i-- {
		if parent[i] == '.' {
			s.Hostname = parent[:i]
			s.Parent = parent[i+1:]
			s.Name = key
			return
		}
	}
	s.Hostname = parent
	s.Name = key
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// runStore dispatches a Store node to the matching store.Store method
// and replies OK (refreshed or no-op) or ERROR (missing parent).
func (c *Connection) runStore(s *ast.Store) bool {
	var result int

	switch {
	case s.Type == proto.ObjectHost:
		result = c.store.StoreHost(s.Name, s.LastUpdate)
	case s.Type == proto.ObjectService:
		result = c.store.StoreService(s.Hostname, s.Name, s.LastUpdate)
	case s.Type == proto.ObjectMetric:
		result = c.store.StoreMetric(s.Hostname, s.Name, s.StoreType, s.StoreID, s.LastUpdate)
	case s.Type.HasAttribute() && s.ParentType == 0:
		result = c.store.StoreAttribute(s.Hostname, s.Name, s.Value, s.LastUpdate)
	case s.Type.HasAttribute() && s.ParentType == proto.ObjectService:
		result = c.store.StoreServiceAttr(s.Hostname, s.Parent, s.Name, s.Value, s.LastUpdate)
	case s.Type.HasAttribute() && s.ParentType == proto.ObjectMetric:
		result = c.store.StoreMetricAttr(s.Hostname, s.Parent, s.Name, s.Value, s.LastUpdate)
	default:
		return c.writeError(fmt.Errorf("STORE: unsupported object type %s", s.Type))
	}

	if result < 0 {
		return c.writeError(apierrors.WrapWithCode(fmt.Errorf("host %q not found", s.Hostname), apierrors.ErrParentMissing, "STORE %s", s.Type))
	}

	qualified := qualifiedName(s)
	if result == 1 {
		return c.writeOK(fmt.Sprintf("%s %s already up to date", s.Type, qualified))
	}
	return c.writeOK(fmt.Sprintf("Successfully stored %s %s", s.Type, qualified))
}

// qualifiedName renders a Store node's target name per the reference
// qualified-name rules: HOST is bare; SERVICE/METRIC is
// "hostname.name"; ATTRIBUTE with a parent (service/metric) is
// "hostname.parent.name", without one (host attribute) is
// "hostname.name".
func qualifiedName(s *ast.Store) string {
	switch {
	case s.Type == proto.ObjectHost:
		return s.Name
	case s.Type.HasAttribute() && s.Parent != "":
		return fmt.Sprintf("%s.%s.%s", s.Hostname, s.Parent, s.Name)
	default:
		return fmt.Sprintf("%s.%s", s.Hostname, s.Name)
	}
}
