package physics

import (
	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/metrics"
)

const (
	// GravitationalConstant in m^3 kg^-1 s^-2.
	GravitationalConstant = 6.6743015e-11

	// DefaultSoftening is added to the squared distance, in m^2.
	DefaultSoftening = 1e-9
)

type Params struct {
	G         float64 `yaml:"gravity"`
	Softening float64 `yaml:"softening"`
}

func DefaultParams() Params {
	return Params{
		G:         GravitationalConstant,
		Softening: DefaultSoftening,
	}
}

// energy is shared by both models: they integrate the same potential.
func energy(st *body.State, p Params) float64 {
	return metrics.Energy(st, p.G, p.Softening)
}
