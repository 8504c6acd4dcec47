package proto

import "testing"

func TestHostObjectRoundTrip(t *testing.T) {
	in := HostObject{LastUpdate: 1000, Name: "web01"}
	buf := EncodeHost(nil, in)

	got, n, err := DecodeHost(buf)
	if err != nil {
		t.Fatalf("DecodeHost: %v", err)
	}
	if n != len(buf) {
		t.Errorf("consumed %d bytes, want %d", n, len(buf))
	}
	if got != in {
		t.Errorf("DecodeHost() = %+v, want %+v", got, in)
	}
}

func TestServiceObjectRoundTrip(t *testing.T) {
	in := ServiceObject{LastUpdate: 5, Hostname: "ghost", Name: "nginx"}
	buf := EncodeService(nil, in)

	got, n, err := DecodeService(buf)
	if err != nil {
		t.Fatalf("DecodeService: %v", err)
	}
	if n != len(buf) {
		t.Errorf("consumed %d bytes, want %d", n, len(buf))
	}
	if got != in {
		t.Errorf("DecodeService() = %+v, want %+v", got, in)
	}
}

func TestMetricObjectRoundTripWithoutStoreRef(t *testing.T) {
	in := MetricObject{LastUpdate: 5, Hostname: "h", Name: "cpu"}
	buf := EncodeMetric(nil, MetricObject{LastUpdate: 5, Hostname: "h", Name: "cpu"})
	// Trim the (empty) trailing store_type/store_id fields to exercise
	// the "absent store_ref" decode branch explicitly.
	buf = buf[:len(buf)-2]

	got, _, err := DecodeMetric(buf)
	if err != nil {
		t.Fatalf("DecodeMetric: %v", err)
	}
	if got.Hostname != in.Hostname || got.Name != in.Name || got.StoreType != "" || got.StoreID != "" {
		t.Errorf("DecodeMetric() = %+v, want empty store_type/store_id", got)
	}
}

func TestMetricObjectRoundTripWithStoreRef(t *testing.T) {
	in := MetricObject{LastUpdate: 5, Hostname: "h", Name: "cpu", StoreType: "rrdtool", StoreID: "h/cpu"}
	buf := EncodeMetric(nil, in)

	got, n, err := DecodeMetric(buf)
	if err != nil {
		t.Fatalf("DecodeMetric: %v", err)
	}
	if n != len(buf) {
		t.Errorf("consumed %d bytes, want %d", n, len(buf))
	}
	if got != in {
		t.Errorf("DecodeMetric() = %+v, want %+v", got, in)
	}
}

func TestAttributeObjectRoundTrip(t *testing.T) {
	in := AttributeObject{
		LastUpdate: 1,
		ParentType: ObjectAttribute | ObjectService,
		Parent:     "ghost.nginx",
		Key:        "version",
		Value:      Datum{Type: TypeString, String: "1.2.3"},
	}
	buf := EncodeAttribute(nil, in)

	got, n, err := DecodeAttribute(buf)
	if err != nil {
		t.Fatalf("DecodeAttribute: %v", err)
	}
	if n != len(buf) {
		t.Errorf("consumed %d bytes, want %d", n, len(buf))
	}
	if got.Parent != in.Parent || got.Key != in.Key || got.ParentType != in.ParentType {
		t.Errorf("DecodeAttribute() = %+v, want %+v", got, in)
	}
	if got.Value.Format() != in.Value.Format() {
		t.Errorf("DecodeAttribute() value = %q, want %q", got.Value.Format(), in.Value.Format())
	}
}

func TestDecodeListRequestDefaultsToHost(t *testing.T) {
	got, err := DecodeListRequest(nil)
	if err != nil {
		t.Fatalf("DecodeListRequest: %v", err)
	}
	if got.Type != ObjectHost {
		t.Errorf("Type = %v, want ObjectHost for an empty LIST payload", got.Type)
	}
}

func TestDecodeFetchRequest(t *testing.T) {
	buf := encodeUint32(nil, uint32(ObjectService))
	buf = encodeCstr(buf, "ghost.nginx")

	got, err := DecodeFetchRequest(buf)
	if err != nil {
		t.Fatalf("DecodeFetchRequest: %v", err)
	}
	if got.Type != ObjectService || got.Name != "ghost.nginx" {
		t.Errorf("DecodeFetchRequest() = %+v", got)
	}
}

func TestDecodeLookupRequest(t *testing.T) {
	buf := encodeUint32(nil, uint32(ObjectHost))
	buf = append(buf, []byte("NAME = 'db01'")...)

	got, err := DecodeLookupRequest(buf)
	if err != nil {
		t.Fatalf("DecodeLookupRequest: %v", err)
	}
	if got.Type != ObjectHost || got.Matcher != "NAME = 'db01'" {
		t.Errorf("DecodeLookupRequest() = %+v", got)
	}
}
