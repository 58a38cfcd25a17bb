package playback

import "github.com/google/uuid"

// Preloader submits speculative compose jobs to the worker pool around a
// comp's current playhead, using the configured PreloadStrategy's frame
// offsets. It is a thin consumer of Project/Workers/Config, not a new
// concurrency primitive: every submitted job is just another epoch-stamped
// Workers.Job that calls Composer.Compose and discards the result (the
// point is to warm FrameCache, not to return anything to the caller).
type Preloader struct {
	project *Project
	workers *Workers
	cm      *CacheManager
	radius  int
	offsets func(count int) []int64
}

// NewPreloader wires a Preloader against the given project/workers/cache
// manager, using strategy's offset generator and warming up to radius
// frames in total (the first radius offsets the strategy yields) per Run
// call.
func NewPreloader(project *Project, workers *Workers, cm *CacheManager, strategy PreloadStrategy, radius int) *Preloader {
	if radius <= 0 {
		radius = 8
	}
	return &Preloader{project: project, workers: workers, cm: cm, radius: radius, offsets: strategy.Offsets}
}

// Run enqueues compose jobs for compUUID at playhead+offset for each offset
// the strategy yields, stamped with the cache manager's current epoch so a
// subsequent edit (which bumps the epoch) cancels any still-queued work.
func (pl *Preloader) Run(compUUID uuid.UUID, playhead int64) {
	comp, ok := pl.project.ResolveNode(compUUID)
	if !ok || comp.Kind != NodeComp {
		return
	}
	epoch := pl.cm.CurrentEpoch()
	for _, offset := range pl.offsets(pl.radius) {
		frameIdx := playhead + offset
		if frameIdx < comp.InFrame() || frameIdx > comp.OutFrame() {
			continue
		}
		f := frameIdx
		pl.workers.SubmitWithEpoch(epoch, func() {
			_, _ = pl.project.Compose(compUUID, f)
		})
	}
}
