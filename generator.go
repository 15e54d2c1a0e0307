// Package gridfinity composes Gridfinity baseplates and bin bodies from a
// handful of grid parameters. All geometry is built through an injected
// kernel.Kernel; the package itself holds no document state.
//
// A Generator is not safe for concurrent use since kernels model a single
// mutable document.
package gridfinity

import (
	"github.com/rs/zerolog"
	"github.com/soypat/gridfinity/kernel"
)

// Generator builds solids on a kernel.
type Generator struct {
	k   kernel.Kernel
	log zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger stages report to. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New returns a Generator building on k.
func New(k kernel.Kernel, opts ...Option) *Generator {
	g := &Generator{k: k, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Kernel returns the kernel g builds on.
func (g *Generator) Kernel() kernel.Kernel { return g.k }
