package playback

import (
	"math"

	"github.com/google/uuid"
)

// shuttleLadder is the JKL shuttle speed progression (spec.md §4.9).
var shuttleLadder = []float64{1, 2, 4, 8, 12, 24, 30, 60, 120, 240, 480, 960}

// Player is the playback state machine: is_playing, fps_base (persistent),
// fps_play (current, reset on stop), loop_enabled, play_direction,
// active_comp, and last_frame_instant (spec.md §4.9).
type Player struct {
	IsPlaying     bool
	FPSBase       float64
	FPSPlay       float64
	LoopEnabled   bool
	PlayDirection int32 // +1 or -1
	ActiveComp    uuid.UUID

	lastFrameInstant float64 // seconds, caller-supplied monotonic clock
	haveLast         bool

	lastRampInstant float64
	haveRampLast    bool

	project *Project
	bus     *EventBus

	// displayFPS is the gween-smoothed value for on-screen speed readout
	// only; FPSPlay itself changes instantaneously per spec.md §4.9 and
	// SPEC_FULL.md §4.9 ("only the display of the change is eased").
	displayFPS *fpsRamp
}

// NewPlayer creates a Player with the given base fps, stopped and at
// direction +1.
func NewPlayer(project *Project, bus *EventBus, fpsBase float64) *Player {
	p := &Player{
		FPSBase:       fpsBase,
		FPSPlay:       fpsBase,
		PlayDirection: 1,
		project:       project,
		bus:           bus,
		displayFPS:    newFPSRamp(fpsBase),
	}
	p.subscribeCommands(bus)
	return p
}

// subscribeCommands wires the remote-control command events (spec.md §6.2)
// to the corresponding Player operations. Handlers run synchronously in
// EventBus.Emit's caller, which for httpctl is the UI thread that drains
// its own command channel — see httpctl's doc comment.
func (p *Player) subscribeCommands(bus *EventBus) {
	Subscribe(bus, func(PlayCommand) {
		p.PlayDirection = 1
		p.IsPlaying = true
		p.emitPlayState()
	})
	Subscribe(bus, func(PauseCommand) {
		p.IsPlaying = false
		p.emitPlayState()
	})
	Subscribe(bus, func(StopCommand) { p.Stop() })
	Subscribe(bus, func(c SetFrameCommand) { p.SetFrame(c.Frame) })
	Subscribe(bus, func(c SetFPSCommand) { p.FPSPlay = c.FPS })
	Subscribe(bus, func(c StepCommand) { p.Step(c.N) })
}

// Update advances the active comp's playhead if playing and enough wall
// time has elapsed, applying loop/clamp at the comp's play range
// (spec.md §4.9). now is a caller-supplied monotonic clock in seconds.
func (p *Player) Update(now float64) {
	var dt float64
	if p.haveRampLast {
		dt = now - p.lastRampInstant
	}
	p.lastRampInstant = now
	p.haveRampLast = true
	p.displayFPS.update(dt, p.FPSPlay)

	if !p.IsPlaying || p.ActiveComp == uuid.Nil {
		p.lastFrameInstant = now
		p.haveLast = true
		return
	}
	if !p.haveLast {
		p.lastFrameInstant = now
		p.haveLast = true
		return
	}
	if p.FPSPlay <= 0 {
		return
	}
	if now-p.lastFrameInstant < 1.0/p.FPSPlay {
		return
	}
	p.lastFrameInstant = now

	comp, ok := p.project.ResolveNode(p.ActiveComp)
	if !ok || comp.Kind != NodeComp {
		return
	}
	trimIn, _ := comp.Attrs().GetI32("trim_in")
	trimOut, _ := comp.Attrs().GetI32("trim_out")
	start := int64(trimIn)
	end := comp.OutFrame() - int64(trimOut)
	if end < start {
		end = start
	}

	next := saturatingAdd(comp.Playhead(), int64(p.PlayDirection))
	if next > end {
		if p.LoopEnabled {
			next = start
		} else {
			next = end
			p.IsPlaying = false
		}
	} else if next < start {
		if p.LoopEnabled {
			next = end
		} else {
			next = start
			p.IsPlaying = false
		}
	}

	compUUID := p.ActiveComp
	_ = p.project.ModifyComp(compUUID, func(n *Node) {
		n.SetPlayhead(next)
	}, nil)
	Emit(p.bus, CurrentFrameChanged{CompUUID: compUUID, Frame: next})
}

// saturatingAdd adds delta to base without overflowing int32's range, since
// frame indices are specified as carried in a 32-bit domain even though Go
// represents them as int64 here (spec.md §4.9: "do not cast i32::MIN to
// unsigned and negate").
func saturatingAdd(base, delta int64) int64 {
	const maxI32 = math.MaxInt32
	const minI32 = math.MinInt32
	sum := base + delta
	if sum > maxI32 {
		return maxI32
	}
	if sum < minI32 {
		return minI32
	}
	return sum
}

// TogglePlayPause flips IsPlaying.
func (p *Player) TogglePlayPause() {
	p.IsPlaying = !p.IsPlaying
	p.emitPlayState()
}

// StatusSnapshot reports the fields httpctl's GET /status exposes
// (spec.md §6.2).
func (p *Player) StatusSnapshot() (playing bool, frame int64, fps float64, activeComp uuid.UUID) {
	frame = int64(0)
	if comp, ok := p.project.ResolveNode(p.ActiveComp); ok && comp.Kind == NodeComp {
		frame = comp.Playhead()
	}
	return p.IsPlaying, frame, p.FPSPlay, p.ActiveComp
}

// DisplayFPS returns the eased speed value for an on-screen readout; it
// lags FPSPlay slightly during shuttle transitions by design.
func (p *Player) DisplayFPS() float64 { return p.displayFPS.Value() }

// Stop pauses and seeks to the active comp's range start.
func (p *Player) Stop() {
	p.IsPlaying = false
	p.FPSPlay = p.FPSBase
	p.PlayDirection = 1
	if comp, ok := p.project.ResolveNode(p.ActiveComp); ok && comp.Kind == NodeComp {
		trimIn, _ := comp.Attrs().GetI32("trim_in")
		compUUID := p.ActiveComp
		_ = p.project.ModifyComp(compUUID, func(n *Node) {
			n.SetPlayhead(int64(trimIn))
		}, nil)
		Emit(p.bus, CurrentFrameChanged{CompUUID: compUUID, Frame: int64(trimIn)})
	}
	p.emitPlayState()
}

// SetFrame seeks the active comp to f, clamped to its play range.
func (p *Player) SetFrame(f int64) {
	comp, ok := p.project.ResolveNode(p.ActiveComp)
	if !ok || comp.Kind != NodeComp {
		return
	}
	trimIn, _ := comp.Attrs().GetI32("trim_in")
	trimOut, _ := comp.Attrs().GetI32("trim_out")
	start := int64(trimIn)
	end := comp.OutFrame() - int64(trimOut)
	if f < start {
		f = start
	}
	if f > end {
		f = end
	}
	compUUID := p.ActiveComp
	_ = p.project.ModifyComp(compUUID, func(n *Node) {
		n.SetPlayhead(f)
	}, nil)
	Emit(p.bus, CurrentFrameChanged{CompUUID: compUUID, Frame: f})
}

// Step advances the active comp's playhead by n frames (may be negative),
// saturating rather than overflowing.
func (p *Player) Step(n int64) {
	comp, ok := p.project.ResolveNode(p.ActiveComp)
	if !ok || comp.Kind != NodeComp {
		return
	}
	p.SetFrame(saturatingAdd(comp.Playhead(), n))
}

// ShuttleL handles an 'L' key press: accelerate forward along the ladder,
// or reset to base and go forward if not already doing so.
func (p *Player) ShuttleL() {
	if p.PlayDirection > 0 && p.IsPlaying {
		p.FPSPlay = nextLadderSpeed(p.FPSPlay)
	} else {
		p.FPSPlay = p.FPSBase
		p.PlayDirection = 1
		p.IsPlaying = true
	}
	p.emitPlayState()
}

// ShuttleJ is ShuttleL's mirror for reverse playback.
func (p *Player) ShuttleJ() {
	if p.PlayDirection < 0 && p.IsPlaying {
		p.FPSPlay = nextLadderSpeed(p.FPSPlay)
	} else {
		p.FPSPlay = p.FPSBase
		p.PlayDirection = -1
		p.IsPlaying = true
	}
	p.emitPlayState()
}

// ShuttleK handles a 'K' key press: stop advancing, leaving fps_play and
// direction as they were. Because playback is then stopped, a subsequent
// J/L restarts at FPSBase rather than at the ladder rung K left off at.
func (p *Player) ShuttleK() {
	p.IsPlaying = false
	p.emitPlayState()
}

func (p *Player) emitPlayState() {
	Emit(p.bus, PlayStateChanged{Playing: p.IsPlaying, Direction: p.PlayDirection, FPSPlay: p.FPSPlay})
}

// nextLadderSpeed returns the next rung up from current, capping at the
// ladder's top (spec.md §4.9's preset ladder).
func nextLadderSpeed(current float64) float64 {
	for _, rung := range shuttleLadder {
		if rung > current {
			return rung
		}
	}
	return shuttleLadder[len(shuttleLadder)-1]
}
