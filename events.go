package playback

import "github.com/google/uuid"

// AttrsChanged is emitted by Project.modify_comp after a mutator leaves a
// node's Attrs dirty (spec.md §4.8).
type AttrsChanged struct{ NodeUUID uuid.UUID }

// MediaAdded is emitted by Project.AddMedia.
type MediaAdded struct{ NodeUUID uuid.UUID }

// MediaRemoved is emitted by Project.RemoveMedia.
type MediaRemoved struct{ NodeUUID uuid.UUID }

// ActiveChanged is emitted by Project.SetActive.
type ActiveChanged struct{ NodeUUID uuid.UUID }

// SelectionChanged is emitted by Project.SetSelection.
type SelectionChanged struct{ Selection []uuid.UUID }

// OrderChanged is emitted by Project.PushOrder / Project.Reorder.
type OrderChanged struct{ Order []uuid.UUID }

// CurrentFrameChanged is emitted by Player.update and Player.SetFrame via
// modify_comp, carrying the comp whose playhead moved and its new frame.
type CurrentFrameChanged struct {
	CompUUID uuid.UUID
	Frame    int64
}

// PlayStateChanged is emitted whenever Player's is_playing or play_direction
// flips, so a UI can swap a play/pause glyph without polling every tick.
type PlayStateChanged struct {
	Playing   bool
	Direction int32
	FPSPlay   float64
}

// RepaintRequested mirrors CacheManager's internal repaint flag onto the
// EventBus, for subscribers that prefer event-driven redraw scheduling over
// polling ConsumeRepaint directly.
type RepaintRequested struct{}

// Command events (spec.md §6.2): the HTTP control surface never calls
// Player methods directly — it only emits these onto the EventBus, and
// Player subscribes to apply them on the UI thread, preserving the
// single-writer rule for state mutation (spec.md §5).
type PlayCommand struct{}
type PauseCommand struct{}
type StopCommand struct{}
type SetFrameCommand struct{ Frame int64 }
type SetFPSCommand struct{ FPS float64 }
type StepCommand struct{ N int64 }
