// Package hwt implements a Hamming Weight Tree: an in-memory
// nearest-neighbor index for 128-bit binary feature vectors under Hamming
// distance.
package hwt

import (
	"fmt"

	"github.com/TomTonic/hwt/internal/chf"
)

// Feature is a 128-bit feature vector. Hi holds the upper 64 bits, Lo the
// lower 64 bits. The zero Feature is the all-zero vector.
type Feature struct {
	Hi, Lo uint64
}

// PopCount returns f's Hamming weight (number of set bits).
func (f Feature) PopCount() int { return chf.PopCount(f.Hi, f.Lo) }

// Distance returns the Hamming distance between f and o.
func (f Feature) Distance(o Feature) int { return chf.Distance(f.Hi, f.Lo, o.Hi, o.Lo) }

// String renders f as a 32-digit hex string, high half first.
func (f Feature) String() string { return fmt.Sprintf("%016x%016x", f.Hi, f.Lo) }

func (f Feature) indices() [8]chf.Word { return chf.Indices(f.Hi, f.Lo) }
