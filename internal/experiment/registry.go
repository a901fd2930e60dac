package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
)

// Engine is a force model that can also report its energy.
type Engine interface {
	dynamo.ForceModel
	dynamo.Hamiltonian
}

type Registry struct {
	engines     map[string]func(physics.Params) Engine
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		engines:     make(map[string]func(physics.Params) Engine),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.engines[config.AlgorithmDirect] = func(p physics.Params) Engine { return physics.NewDirect(p) }
	r.engines[config.AlgorithmSymmetric] = func(p physics.Params) Engine { return physics.NewSymmetric(p) }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }

	return r
}

func (r *Registry) GetEngine(name string, p physics.Params) (Engine, error) {
	fn, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListEngines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultObservers tracks the relative energy error of e every `every`
// steps.
func (r *Registry) DefaultObservers(e Engine, every int) []*metrics.EnergyDrift {
	return []*metrics.EnergyDrift{
		metrics.NewEnergyDrift(e.Energy, every),
	}
}
