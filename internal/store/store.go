package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/sysdb/sysdbd/internal/proto"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// SkipFlags selects which child collections tojson omits at every level.
type SkipFlags uint8

const (
	SkipServices SkipFlags = 1 << iota
	SkipMetrics
	SkipAttributes
)

// SkipAll omits every child collection, leaving only the scalar header
// fields on each emitted object.
const SkipAll = SkipServices | SkipMetrics | SkipAttributes

// Filter decides whether an entity belongs in a query or JSON dump
// result. Implementations receive the candidate's type and read its
// fields via Get.
type Filter interface {
	Matches(obj FieldSource) bool
}

// FieldSource exposes the well-known fields of a candidate entity to a
// Filter without leaking store internals.
type FieldSource interface {
	Field(f Field) (proto.Datum, bool)
	ObjectType() proto.ObjectType
}

// Store is the concurrent, update-merging catalog of hosts and their
// services, metrics, and attributes. A single lock guards the top-level
// host map; each Host additionally guards its own children so a read of
// one host's subtree never blocks a write to another's.
type Store struct {
	mu    sync.RWMutex
	hosts map[string]*Host
	log   logger.Logger
}

// New returns an empty Store.
func New(log logger.Logger) *Store {
	return &Store{hosts: make(map[string]*Host), log: log}
}

// StoreHost creates or refreshes a host. See the update-merge contract
// on applyUpdateMerge for the return code meaning.
func (s *Store) StoreHost(name string, ts int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := foldKey(name)
	h, ok := s.hosts[key]
	if !ok {
		s.hosts[key] = newHost(name, ts)
		return 0
	}
	return h.applyUpdateMerge(ts, nil)
}

// StoreService requires an existing host and creates or refreshes one
// of its services.
func (s *Store) StoreService(hostname, name string, ts int64) int {
	h := s.lockedHost(hostname)
	if h == nil {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	key := foldKey(name)
	svc, ok := h.services[key]
	if !ok {
		h.services[key] = newService(name, ts)
		return 0
	}
	return svc.applyUpdateMerge(ts, nil)
}

// StoreMetric requires an existing host. storeType/storeID are applied
// only when non-empty, so an update can leave an existing backend
// reference untouched.
func (s *Store) StoreMetric(hostname, name, storeType, storeID string, ts int64) int {
	h := s.lockedHost(hostname)
	if h == nil {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	key := foldKey(name)
	m, ok := h.metrics[key]
	if !ok {
		m = newMetric(name, ts)
		m.storeType = storeType
		m.storeID = storeID
		h.metrics[key] = m
		return 0
	}
	return m.applyUpdateMerge(ts, func() {
		if storeType != "" {
			m.storeType = storeType
		}
		if storeID != "" {
			m.storeID = storeID
		}
	})
}

// StoreAttribute requires an existing host and sets a host-level
// attribute. value is deep-copied.
func (s *Store) StoreAttribute(hostname, key string, value proto.Datum, ts int64) int {
	h := s.lockedHost(hostname)
	if h == nil {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return storeAttr(h.attributes, key, value, ts)
}

// StoreServiceAttr requires an existing host and service and sets one
// of the service's attributes.
func (s *Store) StoreServiceAttr(hostname, service, key string, value proto.Datum, ts int64) int {
	h := s.lockedHost(hostname)
	if h == nil {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	svc, ok := h.services[foldKey(service)]
	if !ok {
		return -1
	}
	return storeAttr(svc.attributes, key, value, ts)
}

// StoreMetricAttr requires an existing host and metric and sets one of
// the metric's attributes.
func (s *Store) StoreMetricAttr(hostname, metric, key string, value proto.Datum, ts int64) int {
	h := s.lockedHost(hostname)
	if h == nil {
		return -1
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.metrics[foldKey(metric)]
	if !ok {
		return -1
	}
	return storeAttr(m.attributes, key, value, ts)
}

func storeAttr(bucket map[string]*Attribute, key string, value proto.Datum, ts int64) int {
	fk := foldKey(key)
	a, ok := bucket[fk]
	if !ok {
		bucket[fk] = newAttribute(key, value, ts)
		return 0
	}
	return a.applyUpdateMerge(ts, func() {
		a.value = value.Copy()
	})
}

// lockedHost returns the host under the top-level read lock, or nil if
// it does not exist. The caller must not hold the top lock afterward;
// the returned Host has its own lock for child mutation.
func (s *Store) lockedHost(hostname string) *Host {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hosts[foldKey(hostname)]
}

// HasHost reports whether a host of this name (case-insensitive) has
// ever been stored.
func (s *Store) HasHost(name string) bool {
	return s.lockedHost(name) != nil
}

// GetHost returns a reference to the named host, or false if it does
// not exist. The reference shares state with the store and must only
// be read through the Field-returning accessors.
func (s *Store) GetHost(name string) (*Host, bool) {
	h := s.lockedHost(name)
	return h, h != nil
}

// GetService looks up a service by host and name.
func (s *Store) GetService(hostname, name string) (*Service, bool) {
	h := s.lockedHost(hostname)
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[foldKey(name)]
	return svc, ok
}

// GetMetric looks up a metric by host and name.
func (s *Store) GetMetric(hostname, name string) (*Metric, bool) {
	h := s.lockedHost(hostname)
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.metrics[foldKey(name)]
	return m, ok
}

// Clear drops every host and its descendants.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts = make(map[string]*Host)
}

// CountHosts implements metrics.StoreSizer.
func (s *Store) CountHosts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hosts)
}

// CountServices implements metrics.StoreSizer.
func (s *Store) CountServices() int {
	return s.countChildren(func(h *Host) int { return len(h.services) })
}

// CountMetrics implements metrics.StoreSizer.
func (s *Store) CountMetrics() int {
	return s.countChildren(func(h *Host) int { return len(h.metrics) })
}

// CountAttributes implements metrics.StoreSizer.
func (s *Store) CountAttributes() int {
	return s.countChildren(func(h *Host) int {
		n := len(h.attributes)
		for _, svc := range h.services {
			n += len(svc.attributes)
		}
		for _, m := range h.metrics {
			n += len(m.attributes)
		}
		return n
	})
}

func (s *Store) countChildren(count func(*Host) int) int {
	s.mu.RLock()
	hosts := make([]*Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		hosts = append(hosts, h)
	}
	s.mu.RUnlock()

	total := 0
	for _, h := range hosts {
		h.mu.RLock()
		total += count(h)
		h.mu.RUnlock()
	}
	return total
}

// IterateFunc is invoked once per host in ascending name order. A
// non-nil error stops the walk early.
type IterateFunc func(h *Host) error

// Iterate visits every host in name order, stopping immediately if
// fn returns an error. Returns -1 on an empty store or an early stop,
// 0 otherwise — mirroring the iterate() contract's integer result
// alongside the Go error for callers that want the detail.
func (s *Store) Iterate(fn IterateFunc) (int, error) {
	s.mu.RLock()
	hosts := make([]*Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		hosts = append(hosts, h)
	}
	s.mu.RUnlock()

	if len(hosts) == 0 {
		return -1, nil
	}

	sort.Slice(hosts, func(i, j int) bool {
		return foldKey(hosts[i].name) < foldKey(hosts[j].name)
	})

	for _, h := range hosts {
		if err := fn(h); err != nil {
			return -1, err
		}
	}
	return 0, nil
}

// FetchHostJSON renders a single host by name, honoring filter and
// skip the same way ToJSON does for each array element. ok is false
// when the host doesn't exist or filter rejects it (and everything
// beneath it).
func (s *Store) FetchHostJSON(name string, filter Filter, skip SkipFlags) ([]byte, bool, error) {
	h := s.lockedHost(name)
	if h == nil {
		return nil, false, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	obj, ok := hostToJSON(h, filter, skip)
	if !ok {
		return nil, false, nil
	}
	return []byte(obj), true, nil
}

// FetchServiceJSON renders a single service by host and name.
func (s *Store) FetchServiceJSON(hostname, name string, filter Filter, skip SkipFlags) ([]byte, bool, error) {
	h := s.lockedHost(hostname)
	if h == nil {
		return nil, false, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[foldKey(name)]
	if !ok {
		return nil, false, nil
	}
	obj, ok := serviceToJSON(svc, filter, skip)
	if !ok {
		return nil, false, nil
	}
	return []byte(obj), true, nil
}

// FetchMetricJSON renders a single metric by host and name.
func (s *Store) FetchMetricJSON(hostname, name string, filter Filter, skip SkipFlags) ([]byte, bool, error) {
	h := s.lockedHost(hostname)
	if h == nil {
		return nil, false, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.metrics[foldKey(name)]
	if !ok {
		return nil, false, nil
	}
	obj, ok := metricToJSON(m, filter, skip)
	if !ok {
		return nil, false, nil
	}
	return []byte(obj), true, nil
}

// ToJSON serializes every host passing filter (or all hosts, if filter
// is nil) to a JSON array, honoring skip. A host is emitted whenever it
// or any of its descendants passes the filter; each level is filtered
// independently within an emitted host.
func (s *Store) ToJSON(filter Filter, skip SkipFlags) ([]byte, error) {
	s.mu.RLock()
	hosts := make([]*Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		hosts = append(hosts, h)
	}
	s.mu.RUnlock()

	sort.Slice(hosts, func(i, j int) bool {
		return foldKey(hosts[i].name) < foldKey(hosts[j].name)
	})

	var buf strings.Builder
	buf.WriteByte('[')
	wroteHost := false
	for _, h := range hosts {
		h.mu.RLock()
		obj, ok := hostToJSON(h, filter, skip)
		h.mu.RUnlock()
		if !ok {
			continue
		}
		if wroteHost {
			buf.WriteByte(',')
		}
		buf.WriteString(obj)
		wroteHost = true
	}
	buf.WriteByte(']')
	return []byte(buf.String()), nil
}
