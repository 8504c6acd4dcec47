package proto

// HostObject is the wire shape of a STORE HOST payload.
type HostObject struct {
	LastUpdate int64
	Name       string
}

// EncodeHost appends the wire encoding of h to buf.
func EncodeHost(buf []byte, h HostObject) []byte {
	buf = encodeUint64(buf, uint64(h.LastUpdate))
	return encodeCstr(buf, h.Name)
}

// DecodeHost reads a HostObject from buf.
func DecodeHost(buf []byte) (HostObject, int, error) {
	lastUpdate, n1, err := decodeUint64(buf, "host last_update")
	if err != nil {
		return HostObject{}, 0, err
	}
	name, n2, err := decodeCstr(buf[n1:])
	if err != nil {
		return HostObject{}, 0, err
	}
	return HostObject{LastUpdate: int64(lastUpdate), Name: name}, n1 + n2, nil
}

// ServiceObject is the wire shape of a STORE SERVICE payload.
type ServiceObject struct {
	LastUpdate int64
	Hostname   string
	Name       string
}

// EncodeService appends the wire encoding of s to buf.
func EncodeService(buf []byte, s ServiceObject) []byte {
	buf = encodeUint64(buf, uint64(s.LastUpdate))
	buf = encodeCstr(buf, s.Hostname)
	return encodeCstr(buf, s.Name)
}

// DecodeService reads a ServiceObject from buf.
func DecodeService(buf []byte) (ServiceObject, int, error) {
	lastUpdate, n1, err := decodeUint64(buf, "service last_update")
	if err != nil {
		return ServiceObject{}, 0, err
	}
	hostname, n2, err := decodeCstr(buf[n1:])
	if err != nil {
		return ServiceObject{}, 0, err
	}
	name, n3, err := decodeCstr(buf[n1+n2:])
	if err != nil {
		return ServiceObject{}, 0, err
	}
	return ServiceObject{LastUpdate: int64(lastUpdate), Hostname: hostname, Name: name}, n1 + n2 + n3, nil
}

// MetricObject is the wire shape of a STORE METRIC payload. StoreType
// and StoreID are empty when the metric carries no timeseries backend
// reference.
type MetricObject struct {
	LastUpdate int64
	Hostname   string
	Name       string
	StoreType  string
	StoreID    string
}

// EncodeMetric appends the wire encoding of m to buf.
func EncodeMetric(buf []byte, m MetricObject) []byte {
	buf = encodeUint64(buf, uint64(m.LastUpdate))
	buf = encodeCstr(buf, m.Hostname)
	buf = encodeCstr(buf, m.Name)
	buf = encodeCstr(buf, m.StoreType)
	return encodeCstr(buf, m.StoreID)
}

// DecodeMetric reads a MetricObject from buf. The trailing store_type
// and store_id fields are optional: their absence is signaled by the
// buffer ending after name, matching the reference `store_ref?` shape.
func DecodeMetric(buf []byte) (MetricObject, int, error) {
	lastUpdate, n1, err := decodeUint64(buf, "metric last_update")
	if err != nil {
		return MetricObject{}, 0, err
	}
	hostname, n2, err := decodeCstr(buf[n1:])
	if err != nil {
		return MetricObject{}, 0, err
	}
	name, n3, err := decodeCstr(buf[n1+n2:])
	if err != nil {
		return MetricObject{}, 0, err
	}
	total := n1 + n2 + n3
	m := MetricObject{LastUpdate: int64(lastUpdate), Hostname: hostname, Name: name}
	if total >= len(buf) {
		return m, total, nil
	}

	storeType, n4, err := decodeCstr(buf[total:])
	if err != nil {
		return MetricObject{}, 0, err
	}
	total += n4
	storeID, n5, err := decodeCstr(buf[total:])
	if err != nil {
		return MetricObject{}, 0, err
	}
	total += n5
	m.StoreType = storeType
	m.StoreID = storeID
	return m, total, nil
}

// AttributeObject is the wire shape of a STORE ATTRIBUTE payload.
// ParentType is 0 for a bare host attribute.
type AttributeObject struct {
	LastUpdate int64
	ParentType ObjectType
	Parent     string
	Key        string
	Value      Datum
}

// EncodeAttribute appends the wire encoding of a to buf.
func EncodeAttribute(buf []byte, a AttributeObject) []byte {
	buf = encodeUint64(buf, uint64(a.LastUpdate))
	buf = encodeUint32(buf, uint32(a.ParentType))
	buf = encodeCstr(buf, a.Parent)
	buf = encodeCstr(buf, a.Key)
	return EncodeDatum(buf, a.Value)
}

// DecodeAttribute reads an AttributeObject from buf.
func DecodeAttribute(buf []byte) (AttributeObject, int, error) {
	lastUpdate, n1, err := decodeUint64(buf, "attribute last_update")
	if err != nil {
		return AttributeObject{}, 0, err
	}
	off := n1
	parentType, n2, err := decodeUint32(buf[off:], "attribute parent_type")
	if err != nil {
		return AttributeObject{}, 0, err
	}
	off += n2
	parent, n3, err := decodeCstr(buf[off:])
	if err != nil {
		return AttributeObject{}, 0, err
	}
	off += n3
	key, n4, err := decodeCstr(buf[off:])
	if err != nil {
		return AttributeObject{}, 0, err
	}
	off += n4
	value, n5, err := DecodeDatum(buf[off:])
	if err != nil {
		return AttributeObject{}, 0, err
	}
	off += n5
	return AttributeObject{
		LastUpdate: int64(lastUpdate),
		ParentType: ObjectType(parentType),
		Parent:     parent,
		Key:        key,
		Value:      value,
	}, off, nil
}

// QueryRequest is the decoded body of a FETCH, LIST, or LOOKUP frame:
// `type:u32, [name:cstr]?, [matcher_text]?`.
type QueryRequest struct {
	Type    ObjectType
	Name    string
	Matcher string
}

// DecodeFetchRequest reads `{type:u32, name:cstr}`.
func DecodeFetchRequest(buf []byte) (QueryRequest, error) {
	typ, n1, err := decodeUint32(buf, "fetch type")
	if err != nil {
		return QueryRequest{}, err
	}
	name, _, err := decodeCstr(buf[n1:])
	if err != nil {
		return QueryRequest{}, err
	}
	return QueryRequest{Type: ObjectType(typ), Name: name}, nil
}

// DecodeListRequest reads `{type:u32}`, defaulting to HOST when the
// payload is empty.
func DecodeListRequest(buf []byte) (QueryRequest, error) {
	if len(buf) == 0 {
		return QueryRequest{Type: ObjectHost}, nil
	}
	typ, _, err := decodeUint32(buf, "list type")
	if err != nil {
		return QueryRequest{}, err
	}
	return QueryRequest{Type: ObjectType(typ)}, nil
}

// DecodeLookupRequest reads `{type:u32, matcher:text}`.
func DecodeLookupRequest(buf []byte) (QueryRequest, error) {
	typ, n1, err := decodeUint32(buf, "lookup type")
	if err != nil {
		return QueryRequest{}, err
	}
	return QueryRequest{Type: ObjectType(typ), Matcher: string(buf[n1:])}, nil
}

func encodeUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	nbo.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func encodeUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	nbo.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func decodeUint64(buf []byte, what string) (uint64, int, error) {
	if err := need(buf, 8, what); err != nil {
		return 0, 0, err
	}
	return nbo.Uint64(buf[:8]), 8, nil
}

func decodeUint32(buf []byte, what string) (uint32, int, error) {
	if err := need(buf, 4, what); err != nil {
		return 0, 0, err
	}
	return nbo.Uint32(buf[:4]), 4, nil
}
