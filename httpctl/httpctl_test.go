package httpctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	playback "github.com/rivergraph/playback"
)

type stubStatus struct {
	playing    bool
	frame      int64
	fps        float64
	activeComp uuid.UUID
}

func (s stubStatus) StatusSnapshot() (bool, int64, float64, uuid.UUID) {
	return s.playing, s.frame, s.fps, s.activeComp
}

func TestStatusEndpointReportsSnapshot(t *testing.T) {
	comp := uuid.New()
	bus := playback.NewEventBus()
	h := New(bus, stubStatus{playing: true, frame: 42, fps: 24, activeComp: comp})

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding /status body: %v", err)
	}
	want := StatusResponse{Playing: true, Frame: 42, FPS: 24, ActiveComp: comp.String()}
	if got != want {
		t.Errorf("/status = %+v, want %+v", got, want)
	}
}

func TestPlayEndpointEmitsPlayCommand(t *testing.T) {
	bus := playback.NewEventBus()
	var got bool
	playback.Subscribe(bus, func(playback.PlayCommand) { got = true })

	h := New(bus, stubStatus{})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/play", "", nil)
	if err != nil {
		t.Fatalf("POST /play: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if !got {
		t.Errorf("expected /play to emit a PlayCommand onto the bus")
	}
}

func TestFrameEndpointEmitsSetFrameCommand(t *testing.T) {
	bus := playback.NewEventBus()
	var gotFrame int64 = -1
	playback.Subscribe(bus, func(c playback.SetFrameCommand) { gotFrame = c.Frame })

	h := New(bus, stubStatus{})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/frame/17", "", nil)
	if err != nil {
		t.Fatalf("POST /frame/17: %v", err)
	}
	defer resp.Body.Close()
	if gotFrame != 17 {
		t.Errorf("gotFrame = %d, want 17", gotFrame)
	}
}

func TestFrameEndpointRejectsBadFrameNumber(t *testing.T) {
	bus := playback.NewEventBus()
	h := New(bus, stubStatus{})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/frame/not-a-number", "", nil)
	if err != nil {
		t.Fatalf("POST /frame/not-a-number: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
