package giprobe

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
)

// BakeAllLightProbesParallel bakes the grid across a worker pool. Probes
// are mutually independent given a read-only ray caster, so they fan out
// freely; each worker gets its own seeded RNG stream because sharing the
// system RNG across goroutines would race. workers <= 0 means GOMAXPROCS.
//
// The call is synchronous overall: it joins all workers before returning.
// The progress callback may fire from worker goroutines, one call at a
// time.
func (s *GISystem) BakeAllLightProbesParallel(lights []Light, workers int, progress ProgressCallback) {
	if s.grid == nil || !s.grid.IsInitialized() {
		s.log.Warnf("BakeAllLightProbesParallel called before the probe grid was initialized")
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	probes := s.grid.Probes()
	total := len(probes)
	if workers > total {
		workers = total
	}

	jobs := make(chan *LightProbe)
	var done atomic.Int64
	var progressMu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		// Decorrelate worker streams off the system seed.
		rng := rand.New(rand.NewSource(s.seed + int64(w+1)*0x9E3779B9))
		go func(rng *rand.Rand) {
			defer wg.Done()
			for probe := range jobs {
				s.bakeProbe(rng, probe, lights)
				completed := int(done.Add(1))
				if progress != nil {
					progressMu.Lock()
					progress(completed, total)
					progressMu.Unlock()
				}
			}
		}(rng)
	}

	for _, probe := range probes {
		jobs <- probe
	}
	close(jobs)
	wg.Wait()

	s.log.Infof("baked %d grid probes on %d workers", total, workers)
}
