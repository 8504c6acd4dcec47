package store

import (
	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/pkg/sysdbtime"
)

// Field reads one of the well-known fields shared by every entity kind.
// BACKEND yields an array-of-string datum; AGE is computed against the
// current time, not stored. The bool is false for an unrecognized id.
func (h *header) fieldValue(f Field) (proto.Datum, bool) {
	switch f {
	case FieldName:
		return proto.Datum{Type: proto.TypeString, String: h.name}, true
	case FieldLastUpdate:
		return proto.Datum{Type: proto.TypeInteger, Integer: h.lastUpdate}, true
	case FieldAge:
		return proto.Datum{Type: proto.TypeInteger, Integer: sysdbtime.Age(h.lastUpdate)}, true
	case FieldInterval:
		return proto.Datum{Type: proto.TypeInteger, Integer: h.Interval()}, true
	case FieldBackend:
		arr := make([]proto.Datum, len(h.backends))
		for i, b := range h.backends {
			arr[i] = proto.Datum{Type: proto.TypeString, String: b}
		}
		return proto.Datum{Type: proto.TypeString | proto.ArrayFlag, Array: arr}, true
	default:
		return proto.Datum{}, false
	}
}

// Field implements FieldSource for Host.
func (h *Host) Field(f Field) (proto.Datum, bool) { return h.fieldValue(f) }

// ObjectType implements FieldSource for Host.
func (h *Host) ObjectType() proto.ObjectType { return proto.ObjectHost }

// Field implements FieldSource for Service.
func (s *Service) Field(f Field) (proto.Datum, bool) { return s.fieldValue(f) }

// ObjectType implements FieldSource for Service.
func (s *Service) ObjectType() proto.ObjectType { return proto.ObjectService }

// Field implements FieldSource for Metric.
func (m *Metric) Field(f Field) (proto.Datum, bool) { return m.fieldValue(f) }

// ObjectType implements FieldSource for Metric.
func (m *Metric) ObjectType() proto.ObjectType { return proto.ObjectMetric }

// Field implements FieldSource for Attribute. It answers only the
// header fields shared by every entity; the attribute's datum is read
// through Value.
func (a *Attribute) Field(f Field) (proto.Datum, bool) { return a.fieldValue(f) }

// ObjectType implements FieldSource for Attribute.
func (a *Attribute) ObjectType() proto.ObjectType { return proto.ObjectAttribute }

// Value returns a copy of the attribute's stored datum.
func (a *Attribute) Value() proto.Datum { return a.value.Copy() }

// Name returns the entity's display name, case as first inserted.
func (h *header) Name() string { return h.name }
