// Package sysdbtime converts between wall-clock time and the
// nanosecond-since-epoch timestamps used throughout the wire protocol
// and the store.
package sysdbtime

import "time"

// Now returns the current time as nanoseconds since the Unix epoch.
func Now() int64 {
	return time.Now().UnixNano()
}

// FromTime converts a time.Time to nanoseconds since the Unix epoch.
func FromTime(t time.Time) int64 {
	return t.UnixNano()
}

// ToTime converts nanoseconds since the Unix epoch to a UTC time.Time.
func ToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// Age returns the elapsed nanoseconds between ts and now.
func Age(ts int64) int64 {
	return Now() - ts
}
