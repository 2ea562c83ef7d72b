package raycast

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by CastFan after Close.
var ErrPoolClosed = errors.New("raycast: pool closed")

func errShortHits(want, got int) error {
	return fmt.Errorf("raycast: hit buffer holds %d results, need %d", got, want)
}

// fanJob is the ray fan published to workers for one generation.
type fanJob struct {
	m       Occupancy
	originX float64
	originY float64
	angles  []float64
	hits    []Hit
}

// Pool spreads the rays of a fan across long-lived worker goroutines. Rays are
// assigned round robin, so each worker touches every n-th column.
type Pool struct {
	callMu sync.Mutex

	mu      sync.Mutex
	cond    *sync.Cond
	workers int
	step    int
	pending int
	closed  bool
	job     fanJob
}

// NewPool starts workers goroutines. A count below one uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.workerLoop(i)
	}
	return p
}

// Workers reports the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// workerLoop waits for each new generation and casts the rays assigned to index.
func (p *Pool) workerLoop(index int) {
	lastStep := 0
	p.mu.Lock()
	for {
		for p.step == lastStep && !p.closed {
			p.cond.Wait()
		}
		if p.step == lastStep {
			p.mu.Unlock()
			return
		}
		lastStep = p.step
		job := p.job
		p.mu.Unlock()

		for i := index; i < len(job.angles); i += p.workers {
			job.hits[i] = Cast(job.m, job.originX, job.originY, job.angles[i])
		}

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
	}
}

// CastFan implements FanCaster. It blocks until every ray is cast; concurrent
// callers are serialized.
func (p *Pool) CastFan(m Occupancy, originX, originY float64, angles []float64, hits []Hit) error {
	if len(hits) < len(angles) {
		return errShortHits(len(angles), len(hits))
	}
	p.callMu.Lock()
	defer p.callMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.job = fanJob{m: m, originX: originX, originY: originY, angles: angles, hits: hits}
	p.pending = p.workers
	p.step++
	p.cond.Broadcast()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.job = fanJob{}
	return nil
}

// Close stops the workers. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
