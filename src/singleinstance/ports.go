package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 54123
	defaultPortEnd   = 54133
)

// Range is an inclusive TCP port range on the loopback interface.
type Range struct {
	Start int
	End   int
}

// Normalize clamps the range to [1024, 65535] and orders its ends.
// A zero range becomes the default one.
func (r Range) Normalize() Range {
	if r.Start == 0 && r.End == 0 {
		return Range{Start: defaultPortStart, End: defaultPortEnd}
	}
	if r.Start < 1024 {
		r.Start = 1024
	}
	if r.End > 65535 {
		r.End = 65535
	}
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// RangeFromEnv reads SINGLEINSTANCE_PORT_START and SINGLEINSTANCE_PORT_END
// (integers, inclusive), falling back to defaults when unset or invalid.
func RangeFromEnv() Range {
	r := Range{Start: defaultPortStart, End: defaultPortEnd}
	if v := os.Getenv("SINGLEINSTANCE_PORT_START"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.Start = n
		}
	}
	if v := os.Getenv("SINGLEINSTANCE_PORT_END"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.End = n
		}
	}
	return r.Normalize()
}
