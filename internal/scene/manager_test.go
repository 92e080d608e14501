package scene

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/render/headless"
	"chosenoffset.com/deepruins/internal/tween"
)

type fakeScene struct {
	name      string
	data      any
	initErr   error
	initPanic bool
	block     chan struct{}

	mu        sync.Mutex
	inits     int
	updates   int
	destroyed bool
	ctx       *Context
}

func (s *fakeScene) Init(ctx context.Context, sc *Context) error {
	if s.block != nil {
		<-s.block
	}
	if s.initPanic {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	s.ctx = sc
	return s.initErr
}

func (s *fakeScene) Update() error {
	s.updates++
	return nil
}

func (s *fakeScene) Draw(screen render.Image) {}

func (s *fakeScene) Destroy() {
	s.destroyed = true
}

type recordingPublisher struct {
	mu    sync.Mutex
	kinds []string
}

func (p *recordingPublisher) Publish(kind string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
}

type harness struct {
	mgr    *Manager
	input  *headless.Input
	pub    *recordingPublisher
	scenes map[string]*fakeScene
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("Failed to load content: %v", err)
	}
	h := &harness{
		input:  headless.NewInput(),
		pub:    &recordingPublisher{},
		scenes: make(map[string]*fakeScene),
	}
	services := &Services{
		Record:    gamedata.New(tables),
		Tables:    tables,
		Renderer:  headless.NewRenderer(),
		Input:     h.input,
		Publisher: h.pub,
		Width:     800,
		Height:    600,
	}
	h.mgr = NewManager(services, Options{Initial: "menu", FadeSeconds: 0.1, TPS: 60})
	for _, name := range []string{"menu", "worldmap", "battle"} {
		h.add(name)
	}
	return h
}

func (h *harness) add(name string) *fakeScene {
	s := &fakeScene{name: name}
	h.scenes[name] = s
	h.mgr.Register(name, func(data any) Scene {
		s.data = data
		return s
	})
	return s
}

// settle ticks until the transition finishes.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.mgr.InTransition() {
		if time.Now().After(deadline) {
			t.Fatal("Transition did not finish")
		}
		if err := h.mgr.Update(); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSwitchAttachesScene(t *testing.T) {
	h := newHarness(t)

	if err := h.mgr.SwitchTo("menu", "hello"); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	h.settle(t)

	if h.mgr.Current() != "menu" {
		t.Fatalf("Expected menu, got %q", h.mgr.Current())
	}
	menu := h.scenes["menu"]
	if menu.inits != 1 {
		t.Errorf("Expected one init, got %d", menu.inits)
	}
	if menu.data != "hello" {
		t.Errorf("Expected transition data, got %v", menu.data)
	}
	if menu.ctx.Name != "menu" || menu.ctx.Record == nil {
		t.Error("Expected scene context with shared record")
	}
	if len(h.pub.kinds) != 1 || h.pub.kinds[0] != "scene_switched" {
		t.Errorf("Expected scene_switched event, got %v", h.pub.kinds)
	}
}

func TestSwitchDestroysPreviousAndCancelsTasks(t *testing.T) {
	h := newHarness(t)
	h.mgr.SwitchTo("menu", nil)
	h.settle(t)

	fired := false
	h.scenes["menu"].ctx.Tasks.Go(tween.Delay(10), func() { fired = true })

	if err := h.mgr.SwitchTo("worldmap", nil); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	h.settle(t)

	if !h.scenes["menu"].destroyed {
		t.Error("Expected menu destroyed")
	}
	if !h.scenes["menu"].ctx.Tasks.Cancelled() {
		t.Error("Expected menu tasks cancelled")
	}
	if fired {
		t.Error("Expected pending task not to fire")
	}
	if h.mgr.Current() != "worldmap" {
		t.Errorf("Expected worldmap, got %q", h.mgr.Current())
	}
}

func TestReentrantSwitchRejected(t *testing.T) {
	h := newHarness(t)
	h.mgr.SwitchTo("menu", nil)
	h.settle(t)

	if err := h.mgr.SwitchTo("worldmap", nil); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	if err := h.mgr.SwitchTo("battle", nil); !errors.Is(err, ErrTransitionInFlight) {
		t.Errorf("Expected ErrTransitionInFlight, got %v", err)
	}
	h.settle(t)

	if h.mgr.Current() != "worldmap" {
		t.Errorf("Expected first switch to win, got %q", h.mgr.Current())
	}
	if h.scenes["battle"].inits != 0 {
		t.Error("Expected rejected scene never to init")
	}
}

func TestUnknownSceneKeepsCurrent(t *testing.T) {
	h := newHarness(t)
	h.mgr.SwitchTo("menu", nil)
	h.settle(t)

	if err := h.mgr.SwitchTo("credits", nil); !errors.Is(err, ErrUnknownScene) {
		t.Fatalf("Expected ErrUnknownScene, got %v", err)
	}
	if h.mgr.InTransition() {
		t.Error("Expected no transition for unknown scene")
	}
	if h.mgr.Current() != "menu" || h.scenes["menu"].destroyed {
		t.Error("Expected menu to stay active")
	}
}

func TestUpdateOnlyRunsWhenIdle(t *testing.T) {
	h := newHarness(t)
	h.mgr.SwitchTo("menu", nil)
	h.settle(t)

	menu := h.scenes["menu"]
	h.mgr.Update()
	if menu.updates != 1 {
		t.Fatalf("Expected one update, got %d", menu.updates)
	}

	h.mgr.SwitchTo("worldmap", nil)
	h.mgr.Update()
	if menu.updates != 1 {
		t.Errorf("Expected no scene update during fade, got %d", menu.updates)
	}
}

func TestInitFailureShowsPanelAndClearsGuard(t *testing.T) {
	h := newHarness(t)
	h.scenes["worldmap"].initErr = errors.New("missing map")
	h.mgr.SwitchTo("menu", nil)
	h.settle(t)

	h.mgr.SwitchTo("worldmap", nil)
	h.settle(t)

	if h.mgr.InTransition() {
		t.Fatal("Expected guard cleared after failed init")
	}
	if h.mgr.Failure() == nil {
		t.Fatal("Expected error panel")
	}
	if !h.scenes["worldmap"].destroyed {
		t.Error("Expected failed scene to be destroyed")
	}

	r := h.mgr.services.Renderer.(*headless.Renderer)
	h.mgr.Draw(r.NewImage(800, 600))
	if !r.Drew("missing map") || !r.Drew("Press Enter to reload") {
		t.Errorf("Expected error panel text, got %v", r.Texts())
	}

	h.input.Press(render.KeyEnter)
	h.mgr.Update()
	h.input.Tick()
	h.settle(t)

	if h.mgr.Failure() != nil {
		t.Error("Expected panel dismissed")
	}
	if h.mgr.Current() != "menu" {
		t.Errorf("Expected reload into menu, got %q", h.mgr.Current())
	}
}

func TestInitPanicRecovered(t *testing.T) {
	h := newHarness(t)
	h.scenes["battle"].initPanic = true

	h.mgr.SwitchTo("battle", nil)
	h.settle(t)

	if h.mgr.Failure() == nil {
		t.Fatal("Expected panic to surface as a failure")
	}
	if err := h.mgr.SwitchTo("menu", nil); err != nil {
		t.Errorf("Expected guard free after panic, got %v", err)
	}
}

func TestSlowInitKeepsTransitionOpen(t *testing.T) {
	h := newHarness(t)
	worldmap := h.scenes["worldmap"]
	worldmap.block = make(chan struct{})

	h.mgr.SwitchTo("worldmap", nil)
	for i := 0; i < 10; i++ {
		h.mgr.Update()
	}
	if !h.mgr.InTransition() || h.mgr.Current() != "" {
		t.Fatal("Expected transition to wait for init")
	}

	close(worldmap.block)
	h.settle(t)
	if h.mgr.Current() != "worldmap" {
		t.Errorf("Expected worldmap, got %q", h.mgr.Current())
	}
}

func TestTerminatePropagates(t *testing.T) {
	h := newHarness(t)
	quit := &quitScene{}
	h.mgr.Register("quit", func(any) Scene { return quit })
	h.mgr.SwitchTo("quit", nil)
	h.settle(t)

	if err := h.mgr.Update(); !errors.Is(err, render.ErrTerminate) {
		t.Errorf("Expected ErrTerminate, got %v", err)
	}
}

type quitScene struct{ fakeScene }

func (q *quitScene) Update() error { return render.ErrTerminate }
