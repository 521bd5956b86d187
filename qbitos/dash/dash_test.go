package dash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"qbit/hal"
	"qbit/qbitos/event"
	"qbit/qbitos/oled"
	"qbit/qbitos/qgif"
	"qbit/qbitos/settings"
)

type fakeStore struct{ files map[string][]byte }

type fakeFile struct{ *bytes.Reader }

func (fakeFile) Close() error { return nil }

func (f *fakeStore) Open(name string) (hal.File, error) {
	d, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: not found", name)
	}
	return fakeFile{bytes.NewReader(d)}, nil
}
func (f *fakeStore) Exists(name string) bool { _, ok := f.files[name]; return ok }
func (f *fakeStore) List() ([]string, error) {
	var out []string
	for n := range f.files {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
func (f *fakeStore) Remove(name string) error { delete(f.files, name); return nil }
func (f *fakeStore) Usage() (uint32, uint32)  { return 42, 1024 }

// fakeSink records the last contrast level it was asked to apply.
type fakeSink struct {
	level uint8
	calls int
}

func (s *fakeSink) Flush([]byte) error { return nil }
func (s *fakeSink) SetBrightness(l uint8) {
	s.level = l
	s.calls++
}

func newServer() (*Server, *event.NetQueue, *fakeSink) {
	fs := &fakeStore{files: map[string][]byte{"a.qgif": {}, "b.qgif": {}}}
	screen := oled.New(nil)
	player := qgif.NewPlayer(fs, screen, nil)
	set, _ := settings.NewStore(nil)
	q := &event.NetQueue{}
	sink := &fakeSink{}
	return New(player, screen, set, q, sink, nil), q, sink
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestListAnimations(t *testing.T) {
	s, _, _ := newServer()
	w := do(t, s, http.MethodGet, "/api/animations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Animations []string `json:"animations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Animations) != 2 || resp.Animations[0] != "a.qgif" {
		t.Fatalf("animations = %v", resp.Animations)
	}
}

func TestPutCurrentUnknownFile(t *testing.T) {
	s, _, _ := newServer()
	w := do(t, s, http.MethodPut, "/api/animations/current", `{"file":"nope.qgif"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPutSpeedClampsZero(t *testing.T) {
	s, _, _ := newServer()
	w := do(t, s, http.MethodPut, "/api/speed", `{"speed":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Speed uint16 `json:"speed"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Speed != 1 {
		t.Fatalf("speed = %d, want 1", resp.Speed)
	}
}

func TestPutBrightnessAppliesContrast(t *testing.T) {
	s, _, sink := newServer()
	w := do(t, s, http.MethodPut, "/api/brightness", `{"brightness":64}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sink.calls != 1 || sink.level != 64 {
		t.Fatalf("sink level = %d (%d calls), want 64", sink.level, sink.calls)
	}
	if s.set.Brightness() != 64 {
		t.Fatalf("stored brightness = %d, want 64", s.set.Brightness())
	}

	w = do(t, s, http.MethodGet, "/api/brightness", "")
	var resp struct {
		Brightness uint8 `json:"brightness"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Brightness != 64 {
		t.Fatalf("brightness = %d, want 64", resp.Brightness)
	}
}

func TestGetStorage(t *testing.T) {
	s, _, _ := newServer()
	w := do(t, s, http.MethodGet, "/api/storage", "")
	var resp struct {
		Used  uint32 `json:"used"`
		Total uint32 `json:"total"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Used != 42 || resp.Total != 1024 {
		t.Fatalf("storage = %+v", resp)
	}
}

func TestGetDisplayReturnsFramebuffer(t *testing.T) {
	s, _, _ := newServer()
	w := do(t, s, http.MethodGet, "/api/display", "")
	if w.Body.Len() != hal.DisplayBytes {
		t.Fatalf("body = %d bytes, want %d", w.Body.Len(), hal.DisplayBytes)
	}
}

func TestPostPokeQueues(t *testing.T) {
	s, q, _ := newServer()
	w := do(t, s, http.MethodPost, "/api/poke", `{"sender":"ana","text":"hi"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	e, ok := q.TryRecv()
	if !ok || e.Kind != event.Poke || e.Sender != "ana" {
		t.Fatalf("queued event = %+v, ok %v", e, ok)
	}
}
