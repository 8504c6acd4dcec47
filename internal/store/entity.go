// Package store implements the concurrent, update-merging catalog of
// hosts, services, metrics, and attributes at the heart of the server.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/sysdb/sysdbd/internal/proto"
)

// Field identifies a well-known attribute readable via get_field.
type Field int

const (
	FieldName Field = iota
	FieldLastUpdate
	FieldAge
	FieldInterval
	FieldBackend
)

// header is the common state shared by every entity kind.
type header struct {
	name       string
	lastUpdate int64
	// interval holds the running inter-update spacing estimate in
	// nanoseconds. It is tracked as a float internally so repeated
	// smoothing does not accumulate truncation error; intervalSet
	// distinguishes "never updated" (interval reads 0) from "exactly
	// zero estimate".
	interval    float64
	intervalSet bool
	backends    []string
}

// Interval returns the current interval estimate truncated to whole
// nanoseconds, matching the truncating rounding rule documented for
// the smoothing recurrence below.
func (h *header) Interval() int64 {
	return int64(h.interval)
}

func (h *header) addBackend(name string) {
	for _, b := range h.backends {
		if b == name {
			return
		}
	}
	h.backends = append(h.backends, name)
}

// Host is the root of the per-host subtree: its services, metrics, and
// host-level attributes. Each host owns its own lock guarding its
// children so that readers of one host never block writers of another.
type Host struct {
	header
	mu         sync.RWMutex
	services   map[string]*Service
	metrics    map[string]*Metric
	attributes map[string]*Attribute
}

func newHost(name string, ts int64) *Host {
	return &Host{
		header:     header{name: name, lastUpdate: ts},
		services:   make(map[string]*Service),
		metrics:    make(map[string]*Metric),
		attributes: make(map[string]*Attribute),
	}
}

// Service is a child of exactly one Host.
type Service struct {
	header
	attributes map[string]*Attribute
}

func newService(name string, ts int64) *Service {
	return &Service{header: header{name: name, lastUpdate: ts}, attributes: make(map[string]*Attribute)}
}

// Metric is a child of exactly one Host, with an optional pointer to a
// timeseries backend.
type Metric struct {
	header
	storeType  string
	storeID    string
	attributes map[string]*Attribute
}

func newMetric(name string, ts int64) *Metric {
	return &Metric{header: header{name: name, lastUpdate: ts}, attributes: make(map[string]*Attribute)}
}

// Attribute is a child of a Host, Service, or Metric.
type Attribute struct {
	header
	value proto.Datum
}

func newAttribute(name string, value proto.Datum, ts int64) *Attribute {
	return &Attribute{header: header{name: name, lastUpdate: ts}, value: value.Copy()}
}

// applyUpdateMerge implements the update-merge rule shared by every
// store_X operation: refresh on strictly newer timestamps, no-op on
// stale or equal ones. refresh is invoked only when the entity is
// actually updated, to copy in any payload fields.
//
// The interval estimate has no meaningful smoothing history right
// after creation, so the first real update sets it directly to the
// observed delta; only the second and later updates blend it in via
// the exponential recurrence interval' = 0.9*interval + 0.1*delta.
// Truncation happens only when Interval() is read, not between steps,
// so repeated smoothing doesn't accumulate rounding error.
//
// Returns 0 (refreshed) or 1 (already up to date).
func (h *header) applyUpdateMerge(ts int64, refresh func()) int {
	if ts <= h.lastUpdate {
		return 1
	}
	delta := float64(ts - h.lastUpdate)
	if !h.intervalSet {
		h.interval = delta
		h.intervalSet = true
	} else {
		h.interval = 0.9*h.interval + 0.1*delta
	}
	h.lastUpdate = ts
	if refresh != nil {
		refresh()
	}
	return 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	return keys
}

func foldKey(name string) string {
	return strings.ToLower(name)
}
