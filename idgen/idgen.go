// Package idgen provides generators for pool handles.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique pool handles.
type Generator interface {
	Generate() string
}

// New returns a generator producing globally unique handles with the given
// prefix, e.g. "pool_cv8j2q0s40f2v4tqa1hg".
func New(prefix string) Generator {
	return &xidGenerator{prefix: prefix}
}

type xidGenerator struct {
	prefix string
}

func (g *xidGenerator) Generate() string {
	return g.prefix + "_" + xid.New().String()
}

// NewSequential returns a deterministic generator whose first emitted handle
// is "<prefix>_1". Intended for tests.
func NewSequential(prefix string) Generator {
	return &sequentialGenerator{prefix: prefix}
}

type sequentialGenerator struct {
	prefix string
	next   uint64
}

func (g *sequentialGenerator) Generate() string {
	return fmt.Sprintf("%s_%d", g.prefix, atomic.AddUint64(&g.next, 1))
}
