package store

import (
	"strings"
	"testing"

	"github.com/sysdb/sysdbd/internal/proto"
)

func TestStoreHostCreateAndUpdate(t *testing.T) {
	s := New(nil)

	if rc := s.StoreHost("web01", 1000); rc != 0 {
		t.Fatalf("StoreHost(create) = %d, want 0", rc)
	}
	if !s.HasHost("web01") {
		t.Fatal("expected HasHost to be true after StoreHost")
	}
	if !s.HasHost("WEB01") {
		t.Error("host lookups should be case-insensitive")
	}

	if rc := s.StoreHost("web01", 2000); rc != 0 {
		t.Fatalf("StoreHost(refresh) = %d, want 0", rc)
	}
	if rc := s.StoreHost("web01", 1500); rc != 1 {
		t.Fatalf("StoreHost(stale) = %d, want 1", rc)
	}

	h, ok := s.GetHost("web01")
	if !ok {
		t.Fatal("GetHost: not found")
	}
	if h.Name() != "web01" {
		t.Errorf("Name() = %q, want web01", h.Name())
	}
}

func TestStoreServiceRequiresHost(t *testing.T) {
	s := New(nil)
	if rc := s.StoreService("missing", "nginx", 1); rc != -1 {
		t.Fatalf("StoreService on a missing host = %d, want -1", rc)
	}

	s.StoreHost("web01", 1)
	if rc := s.StoreService("web01", "nginx", 10); rc != 0 {
		t.Fatalf("StoreService(create) = %d, want 0", rc)
	}
	svc, ok := s.GetService("web01", "nginx")
	if !ok {
		t.Fatal("GetService: not found")
	}
	if svc.Name() != "nginx" {
		t.Errorf("Name() = %q, want nginx", svc.Name())
	}
}

func TestStoreMetricPreservesStoreRefAcrossUpdates(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1)

	if rc := s.StoreMetric("web01", "cpu", "rrdtool", "web01/cpu", 10); rc != 0 {
		t.Fatalf("StoreMetric(create) = %d, want 0", rc)
	}
	// A later update with an empty store ref must not clobber the
	// existing one.
	if rc := s.StoreMetric("web01", "cpu", "", "", 20); rc != 0 {
		t.Fatalf("StoreMetric(update) = %d, want 0", rc)
	}

	m, ok := s.GetMetric("web01", "cpu")
	if !ok {
		t.Fatal("GetMetric: not found")
	}
	if m.storeType != "rrdtool" || m.storeID != "web01/cpu" {
		t.Errorf("storeType/storeID = %q/%q, want unchanged rrdtool/web01/cpu", m.storeType, m.storeID)
	}
}

func TestStoreAttributeVariants(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1)
	s.StoreService("web01", "nginx", 1)
	s.StoreMetric("web01", "cpu", "", "", 1)

	v := proto.Datum{Type: proto.TypeString, String: "1.2.3"}

	if rc := s.StoreAttribute("web01", "os", v, 10); rc != 0 {
		t.Fatalf("StoreAttribute = %d, want 0", rc)
	}
	if rc := s.StoreServiceAttr("web01", "nginx", "version", v, 10); rc != 0 {
		t.Fatalf("StoreServiceAttr = %d, want 0", rc)
	}
	if rc := s.StoreMetricAttr("web01", "cpu", "unit", v, 10); rc != 0 {
		t.Fatalf("StoreMetricAttr = %d, want 0", rc)
	}

	if rc := s.StoreServiceAttr("web01", "missing", "x", v, 10); rc != -1 {
		t.Fatalf("StoreServiceAttr on a missing service = %d, want -1", rc)
	}
	if rc := s.StoreMetricAttr("web01", "missing", "x", v, 10); rc != -1 {
		t.Fatalf("StoreMetricAttr on a missing metric = %d, want -1", rc)
	}
}

func TestIntervalSmoothing(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1000)
	h, _ := s.GetHost("web01")
	if h.Interval() != 0 {
		t.Errorf("Interval() after creation = %d, want 0", h.Interval())
	}

	s.StoreHost("web01", 2000)
	if h.Interval() != 1000 {
		t.Errorf("Interval() after first update = %d, want 1000 (no smoothing history yet)", h.Interval())
	}

	s.StoreHost("web01", 4000)
	// interval' = 0.9*1000 + 0.1*2000 = 1100
	if h.Interval() != 1100 {
		t.Errorf("Interval() after second update = %d, want 1100", h.Interval())
	}
}

func TestClearRemovesAllHosts(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1)
	s.StoreHost("web02", 1)
	if s.CountHosts() != 2 {
		t.Fatalf("CountHosts() = %d, want 2", s.CountHosts())
	}

	s.Clear()
	if s.CountHosts() != 0 {
		t.Errorf("CountHosts() after Clear = %d, want 0", s.CountHosts())
	}
	if s.HasHost("web01") {
		t.Error("expected host to be gone after Clear")
	}
}

func TestCounts(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1)
	s.StoreService("web01", "nginx", 1)
	s.StoreMetric("web01", "cpu", "", "", 1)
	v := proto.Datum{Type: proto.TypeInteger, Integer: 1}
	s.StoreAttribute("web01", "a", v, 1)
	s.StoreServiceAttr("web01", "nginx", "b", v, 1)
	s.StoreMetricAttr("web01", "cpu", "c", v, 1)

	if s.CountHosts() != 1 {
		t.Errorf("CountHosts() = %d, want 1", s.CountHosts())
	}
	if s.CountServices() != 1 {
		t.Errorf("CountServices() = %d, want 1", s.CountServices())
	}
	if s.CountMetrics() != 1 {
		t.Errorf("CountMetrics() = %d, want 1", s.CountMetrics())
	}
	if s.CountAttributes() != 3 {
		t.Errorf("CountAttributes() = %d, want 3", s.CountAttributes())
	}
}

func TestIterateOrderAndEarlyStop(t *testing.T) {
	s := New(nil)
	s.StoreHost("b-host", 1)
	s.StoreHost("a-host", 1)
	s.StoreHost("c-host", 1)

	var seen []string
	rc, err := s.Iterate(func(h *Host) error {
		seen = append(seen, h.Name())
		return nil
	})
	if err != nil || rc != 0 {
		t.Fatalf("Iterate() = (%d, %v), want (0, nil)", rc, err)
	}
	want := []string{"a-host", "b-host", "c-host"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("visit order = %v, want %v", seen, want)
	}

	rc, err = s.Iterate(func(h *Host) error {
		return errStop
	})
	if err != errStop || rc != -1 {
		t.Fatalf("Iterate() with an early stop = (%d, %v), want (-1, errStop)", rc, err)
	}
}

func TestIterateEmptyStore(t *testing.T) {
	s := New(nil)
	rc, err := s.Iterate(func(h *Host) error { return nil })
	if err != nil || rc != -1 {
		t.Fatalf("Iterate() on an empty store = (%d, %v), want (-1, nil)", rc, err)
	}
}

func TestToJSONSkipFlags(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1)
	s.StoreService("web01", "nginx", 1)
	s.StoreMetric("web01", "cpu", "", "", 1)
	s.StoreAttribute("web01", "os", proto.Datum{Type: proto.TypeString, String: "linux"}, 1)

	buf, err := s.ToJSON(nil, SkipAll)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	body := string(buf)
	for _, key := range []string{`"services"`, `"metrics"`, `"attributes"`} {
		if strings.Contains(body, key) {
			t.Errorf("ToJSON with SkipAll should omit %s, got %s", key, body)
		}
	}

	full, err := s.ToJSON(nil, 0)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	fullBody := string(full)
	for _, key := range []string{`"services"`, `"metrics"`, `"attributes"`} {
		if !strings.Contains(fullBody, key) {
			t.Errorf("ToJSON with no skip flags should include %s, got %s", key, fullBody)
		}
	}
}

func TestFetchJSONNotFound(t *testing.T) {
	s := New(nil)
	if _, ok, err := s.FetchHostJSON("missing", nil, 0); ok || err != nil {
		t.Errorf("FetchHostJSON on a missing host = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	s.StoreHost("web01", 1)
	if _, ok, err := s.FetchServiceJSON("web01", "missing", nil, 0); ok || err != nil {
		t.Errorf("FetchServiceJSON on a missing service = (_, %v, %v), want (_, false, nil)", ok, err)
	}
	if _, ok, err := s.FetchMetricJSON("web01", "missing", nil, 0); ok || err != nil {
		t.Errorf("FetchMetricJSON on a missing metric = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestFetchHostJSONIncludesFields(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1000)
	buf, ok, err := s.FetchHostJSON("web01", nil, SkipAll)
	if err != nil || !ok {
		t.Fatalf("FetchHostJSON = (_, %v, %v), want (_, true, nil)", ok, err)
	}
	body := string(buf)
	if !strings.Contains(body, `"name":"web01"`) {
		t.Errorf("FetchHostJSON body missing name field: %s", body)
	}
	if !strings.Contains(body, `"last_update":1000`) {
		t.Errorf("FetchHostJSON body missing last_update field: %s", body)
	}
}

type stubFilter struct {
	f func(src FieldSource) bool
}

func (s stubFilter) Matches(src FieldSource) bool { return s.f(src) }

func TestToJSONFilterKeepsMatchingHost(t *testing.T) {
	s := New(nil)
	s.StoreHost("web01", 1)
	s.StoreHost("db01", 1)

	filter := stubFilter{f: func(src FieldSource) bool {
		v, ok := src.Field(FieldName)
		return ok && v.String == "web01"
	}}

	buf, err := s.ToJSON(filter, SkipAll)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	body := string(buf)
	if !strings.Contains(body, "web01") {
		t.Errorf("expected matching host web01 in result: %s", body)
	}
	if strings.Contains(body, "db01") {
		t.Errorf("expected non-matching host db01 to be excluded: %s", body)
	}
}

var errStop = stopError{}

type stopError struct{}

func (stopError) Error() string { return "stop" }
