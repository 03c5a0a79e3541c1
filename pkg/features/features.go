// Package features manages runtime feature gates.
//
// A gate switches between the old and the new behavior of a breaking
// runtime change. Executors start with every registered gate active;
// scenarios and the CLI deactivate gates to reproduce the old behavior.
package features

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"
)

// Feature is an opaque handle to a feature gate.
type Feature uint

type featureInfo struct {
	handle Feature
	name   string
	gate   solana.PublicKey
}

// seq is the sequence number of allocated handles. Zero is the sentinel
// value.
var seq Feature

var (
	featureMap = make(map[Feature]featureInfo)
	byGate     = make(map[solana.PublicKey]Feature)
	byName     = make(map[string]Feature)
)

// Register creates an application-wide feature for the given gate address
// and returns its handle. Registering a gate twice returns the same
// handle. Not thread-safe; call from package initialization only.
func Register(gate solana.PublicKey, name string) Feature {
	if f, ok := byGate[gate]; ok {
		return f
	}
	seq++
	featureMap[seq] = featureInfo{handle: seq, name: name, gate: gate}
	byGate[gate] = seq
	byName[name] = seq
	return seq
}

// GateAddress derives the gate address of a feature from its name.
func GateAddress(name string) solana.PublicKey {
	return solana.PublicKey(sha256.Sum256([]byte("jiminy-feature:" + name)))
}

// Lookup returns the feature registered under name.
func Lookup(name string) (Feature, bool) {
	f, ok := byName[name]
	return f, ok
}

func (f Feature) String() string {
	if info, ok := featureMap[f]; ok {
		return info.name
	}
	return fmt.Sprintf("feature(%d)", uint(f))
}

// Gate returns the gate address of f.
func (f Feature) Gate() solana.PublicKey {
	return featureMap[f].gate
}

// Features is a set of feature flags.
type Features struct {
	buckets []uint32
}

// Default returns a set with every registered feature active.
func Default() *Features {
	s := new(Features)
	for f := Feature(1); f <= seq; f++ {
		s.WithFeature(f)
	}
	return s
}

func (s *Features) set(flag Feature, on bool) {
	if flag == 0 || flag > seq {
		panic("invalid feature flag handle")
	}
	bucket := int(flag / 32)
	if bucket >= len(s.buckets) {
		s.buckets = append(s.buckets, make([]uint32, bucket-len(s.buckets)+1)...)
	}
	if on {
		s.buckets[bucket] |= 1 << (flag % 32)
	} else {
		s.buckets[bucket] &^= 1 << (flag % 32)
	}
}

// HasFeature returns true if the given feature is active. A nil set has no
// active features. Panics on an invalid handle.
func (s *Features) HasFeature(flag Feature) bool {
	if flag == 0 || flag > seq {
		panic("invalid feature flag handle")
	}
	if s == nil {
		return false
	}
	bucket := int(flag / 32)
	if bucket >= len(s.buckets) {
		return false
	}
	return s.buckets[bucket]&(1<<(flag%32)) != 0
}

// WithFeature modifies s to include the given feature.
// Returns s to support chaining-style syntax. Panics on invalid handle.
func (s *Features) WithFeature(flag Feature) *Features {
	s.set(flag, true)
	return s
}

// WithoutFeature modifies s to exclude the given feature.
// Returns s to support chaining-style syntax. Panics on invalid handle.
func (s *Features) WithoutFeature(flag Feature) *Features {
	s.set(flag, false)
	return s
}

// Clone creates a copy of s.
func (s *Features) Clone() *Features {
	c := new(Features)
	c.buckets = make([]uint32, len(s.buckets))
	copy(c.buckets, s.buckets)
	return c
}

// AllEnabled describes every active feature, in registration order.
func (s *Features) AllEnabled() []string {
	var out []string
	for f := Feature(1); f <= seq; f++ {
		if s.HasFeature(f) {
			out = append(out, fmt.Sprintf("feature %s (%s) enabled", f, f.Gate()))
		}
	}
	return out
}
