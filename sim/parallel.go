package sim

import "golang.org/x/sync/errgroup"

// parallelThreshold is the minimum item count to split a pass across workers.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 4096

// buildField evaluates the composer over the whole grid at the current time.
func (s *Simulation) buildField() {
	res := s.grid.Resolution()
	if s.workers <= 1 || res.Cells() < parallelThreshold {
		s.grid.Build(s.composer, s.simTime)
		return
	}
	t := s.simTime
	forChunks(res.Lat, s.workers, func(start, end int) {
		s.grid.BuildRows(s.composer, t, start, end)
	})
}

// advect moves every particle once through the current grid.
func (s *Simulation) advect() {
	n := s.advector.Len()
	if s.workers <= 1 || n < parallelThreshold {
		s.advector.Step(s.grid)
		return
	}
	forChunks(n, s.workers, func(start, end int) {
		s.advector.StepRange(s.grid, start, end)
	})
}

// forChunks splits [0, n) into at most workers contiguous ranges, runs fn
// on each concurrently and returns once all have finished.
func forChunks(n, workers int, fn func(start, end int)) {
	if n == 0 {
		return
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
