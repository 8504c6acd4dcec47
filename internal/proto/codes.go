// Package proto implements the SysDB line protocol: frame encode/decode,
// typed Datum marshaling, and the host/service/metric/attribute object
// payload shapes carried in STORE/FETCH/LOOKUP/LIST frames.
package proto

// Code identifies the kind of a protocol frame.
type Code uint32

// Frame codes, stable across protocol versions.
const (
	CodeIdle Code = iota
	CodePing
	CodeOK
	CodeError
	CodeLog
	CodeData
	CodeStartup
	CodeQuery
	CodeFetch
	CodeList
	CodeLookup
	CodeStore
	CodeServerVersion
	CodeTimeseries
)

func (c Code) String() string {
	switch c {
	case CodeIdle:
		return "IDLE"
	case CodePing:
		return "PING"
	case CodeOK:
		return "OK"
	case CodeError:
		return "ERROR"
	case CodeLog:
		return "LOG"
	case CodeData:
		return "DATA"
	case CodeStartup:
		return "STARTUP"
	case CodeQuery:
		return "QUERY"
	case CodeFetch:
		return "FETCH"
	case CodeList:
		return "LIST"
	case CodeLookup:
		return "LOOKUP"
	case CodeStore:
		return "STORE"
	case CodeServerVersion:
		return "SERVER_VERSION"
	case CodeTimeseries:
		return "TIMESERIES"
	default:
		return "UNKNOWN"
	}
}

// ObjectType identifies the kind of entity a payload describes. The
// bits compose: an attribute's parent type is OR'd onto ATTRIBUTE.
type ObjectType uint32

const (
	ObjectHost      ObjectType = 0x01
	ObjectService   ObjectType = 0x02
	ObjectMetric    ObjectType = 0x04
	ObjectAttribute ObjectType = 0x10
)

// ParentType extracts the parent-type bits from an attribute object type.
func (t ObjectType) ParentType() ObjectType {
	return t &^ ObjectAttribute
}

// HasAttribute reports whether the ATTRIBUTE bit is set.
func (t ObjectType) HasAttribute() bool {
	return t&ObjectAttribute != 0
}

func (t ObjectType) String() string {
	switch {
	case t == ObjectHost:
		return "HOST"
	case t == ObjectService:
		return "SERVICE"
	case t == ObjectMetric:
		return "METRIC"
	case t == ObjectAttribute:
		return "ATTRIBUTE"
	case t == ObjectAttribute|ObjectService:
		return "ATTRIBUTE|SERVICE"
	case t == ObjectAttribute|ObjectMetric:
		return "ATTRIBUTE|METRIC"
	default:
		return "UNKNOWN"
	}
}
