package dynamo

import "golang.org/x/sync/errgroup"

// Pool runs data-parallel stages on a fixed number of workers. Every
// method returns only after all of its workers have finished.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int { return p.workers }

// For splits [0, n) into at most Workers() contiguous chunks and calls fn
// once per chunk. Chunk boundaries are multiples of grain so that workers
// never share a block of a blocked array.
func (p *Pool) For(n, grain int, fn func(worker, start, end int)) {
	_ = p.ForErr(n, grain, func(worker, start, end int) error {
		fn(worker, start, end)
		return nil
	})
}

// ForErr is For with error propagation. The first non-nil error is
// returned once every chunk has completed.
func (p *Pool) ForErr(n, grain int, fn func(worker, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if grain < 1 {
		grain = 1
	}

	units := (n + grain - 1) / grain
	workers := p.workers
	if units < workers {
		workers = units
	}
	if workers <= 1 {
		return fn(0, 0, n)
	}

	chunk := ((units + workers - 1) / workers) * grain

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		w := w
		g.Go(func() error {
			return fn(w, start, end)
		})
	}
	return g.Wait()
}

// Each calls fn once for every worker index in [0, Workers()).
func (p *Pool) Each(fn func(worker int)) {
	if p.workers == 1 {
		fn(0)
		return
	}

	var g errgroup.Group
	for w := 0; w < p.workers; w++ {
		w := w
		g.Go(func() error {
			fn(w)
			return nil
		})
	}
	_ = g.Wait()
}
