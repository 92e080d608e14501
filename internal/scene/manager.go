package scene

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"runtime/debug"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/tween"
)

var (
	// ErrTransitionInFlight is returned by SwitchTo while another switch is running.
	ErrTransitionInFlight = errors.New("scene: transition already in flight")
	// ErrUnknownScene is returned by SwitchTo for an unregistered name.
	ErrUnknownScene = errors.New("scene: unknown scene")
)

type phase int

const (
	phaseIdle phase = iota
	phaseFadeOut
	phaseLoading
	phaseFadeIn
)

// Options tune the manager
type Options struct {
	Initial     string  // scene the error panel reloads into
	FadeSeconds float32 // duration of each half of the fade
	TPS         int     // logic ticks per second
}

type initResult struct {
	name  string
	scene Scene
	ctx   *Context
	err   error
}

// Manager owns the active scene and runs transitions between scenes.
type Manager struct {
	services *Services
	opts     Options
	dt       float64

	mu    sync.Mutex
	ctors map[string]Constructor

	current     Scene
	currentName string
	currentCtx  *Context

	inTransition bool
	phase        phase
	pendingName  string
	pendingData  any
	loading      chan initResult

	fade  *gween.Tween
	alpha float32

	failure error

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a manager with no scenes registered
func NewManager(services *Services, opts Options) *Manager {
	if services.Publisher == nil {
		services.Publisher = nopPublisher{}
	}
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		services: services,
		opts:     opts,
		dt:       1 / float64(opts.TPS),
		ctors:    make(map[string]Constructor),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds a scene constructor under a name
func (m *Manager) Register(name string, ctor Constructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctors[name] = ctor
}

// Registered returns the registered scene names
func (m *Manager) Registered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.ctors))
	for name := range m.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Current returns the name of the active scene
func (m *Manager) Current() string {
	return m.currentName
}

// InTransition reports whether a switch is running
func (m *Manager) InTransition() bool {
	return m.inTransition
}

// Failure returns the error shown on the error panel, if any
func (m *Manager) Failure() error {
	return m.failure
}

// SwitchTo starts a transition to the named scene. The previous scene stays
// in place when the name is unknown.
func (m *Manager) SwitchTo(name string, data any) error {
	if m.inTransition {
		return ErrTransitionInFlight
	}

	m.mu.Lock()
	_, ok := m.ctors[name]
	m.mu.Unlock()
	if !ok {
		log.WithField("scene", name).Error("Unknown scene, staying on current scene")
		return fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}

	log.WithFields(log.Fields{"from": m.currentName, "to": name}).Info("Switching scene")
	m.inTransition = true
	m.pendingName = name
	m.pendingData = data

	if m.current == nil {
		m.alpha = 1
		m.startLoading()
		return nil
	}
	m.phase = phaseFadeOut
	m.fade = gween.New(m.alpha, 1, m.opts.FadeSeconds, ease.InOutQuad)
	return nil
}

// Update implements render.Game.
func (m *Manager) Update() error {
	if m.failure != nil {
		if m.services.Input.IsKeyJustPressed(render.KeyEnter) {
			m.failure = nil
			if err := m.SwitchTo(m.opts.Initial, nil); err != nil {
				log.Errorf("Failed to reload: %v", err)
			}
		}
		return nil
	}

	switch m.phase {
	case phaseFadeOut:
		if m.step() {
			m.destroyCurrent()
			m.startLoading()
		}
		return nil
	case phaseLoading:
		select {
		case res := <-m.loading:
			m.attach(res)
		default:
		}
		return nil
	case phaseFadeIn:
		if m.currentCtx != nil {
			m.currentCtx.Tasks.Update(m.dt)
		}
		if m.step() {
			m.phase = phaseIdle
			m.fade = nil
			m.inTransition = false
		}
		return nil
	}

	if m.current == nil {
		return nil
	}
	m.currentCtx.Tasks.Update(m.dt)
	if err := m.current.Update(); err != nil {
		if errors.Is(err, render.ErrTerminate) {
			return err
		}
		m.fail(m.currentName, err)
	}
	return nil
}

// step advances the fade and reports whether it finished.
func (m *Manager) step() bool {
	if m.fade == nil {
		return true
	}
	v, done := m.fade.Update(float32(m.dt))
	m.alpha = v
	return done
}

func (m *Manager) destroyCurrent() {
	if m.current == nil {
		return
	}
	m.currentCtx.Tasks.Cancel()
	m.current.Destroy()
	log.WithField("scene", m.currentName).Debug("Scene destroyed")
	m.current, m.currentCtx, m.currentName = nil, nil, ""
}

// startLoading constructs the pending scene and runs its Init on a
// goroutine. The result is picked up by Update.
func (m *Manager) startLoading() {
	name, data := m.pendingName, m.pendingData
	m.pendingData = nil
	m.phase = phaseLoading
	m.loading = make(chan initResult, 1)

	m.mu.Lock()
	ctor := m.ctors[name]
	m.mu.Unlock()

	sc := &Context{Services: m.services, Name: name, Tasks: tween.NewRunner(), mgr: m}
	out := m.loading
	go func() {
		res := initResult{name: name, ctx: sc}
		defer func() {
			if r := recover(); r != nil {
				log.WithField("scene", name).Errorf("Init panicked: %v\n%s", r, debug.Stack())
				res.err = fmt.Errorf("scene %s panicked: %v", name, r)
			}
			out <- res
		}()
		res.scene = ctor(data)
		if res.scene == nil {
			res.err = fmt.Errorf("scene %s: constructor returned nil", name)
			return
		}
		res.err = res.scene.Init(m.ctx, sc)
	}()
}

func (m *Manager) attach(res initResult) {
	if res.err != nil {
		defer m.endTransition()
		if res.scene != nil {
			res.ctx.Tasks.Cancel()
			res.scene.Destroy()
		}
		m.fail(res.name, res.err)
		return
	}

	m.current, m.currentCtx, m.currentName = res.scene, res.ctx, res.name
	m.phase = phaseFadeIn
	m.fade = gween.New(m.alpha, 0, m.opts.FadeSeconds, ease.InOutQuad)
	log.WithField("scene", res.name).Info("Scene attached")
	m.services.Publisher.Publish("scene_switched", map[string]string{"scene": res.name})
}

func (m *Manager) endTransition() {
	m.inTransition = false
	m.phase = phaseIdle
	m.fade = nil
	m.alpha = 0
}

func (m *Manager) fail(name string, err error) {
	log.WithField("scene", name).Errorf("Scene failed: %v", err)
	m.destroyCurrent()
	m.failure = err
}

// Draw implements render.Game.
func (m *Manager) Draw(screen render.Image) {
	r := m.services.Renderer
	w, h := float32(m.services.Width), float32(m.services.Height)

	if m.current != nil {
		m.current.Draw(screen)
	}

	if m.failure != nil {
		screen.Fill(color.RGBA{40, 10, 10, 255})
		r.FillRect(screen, 40, h/2-60, w-80, 120, color.RGBA{20, 20, 20, 255})
		r.StrokeRect(screen, 40, h/2-60, w-80, 120, 2, color.RGBA{220, 60, 60, 255})
		r.DrawText(screen, "Something went wrong", 60, int(h/2)-45, color.RGBA{255, 120, 120, 255}, 1.5)
		r.DrawText(screen, m.failure.Error(), 60, int(h/2)-10, color.White, 1)
		r.DrawText(screen, "Press Enter to reload", 60, int(h/2)+25, color.RGBA{200, 200, 200, 255}, 1)
		return
	}

	if m.alpha > 0 {
		a := m.alpha
		if a > 1 {
			a = 1
		}
		r.FillRect(screen, 0, 0, w, h, color.RGBA{0, 0, 0, uint8(a * 255)})
	}
}

// Layout implements render.Game.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	return m.services.Width, m.services.Height
}

// Close destroys the active scene and cancels pending inits
func (m *Manager) Close() {
	m.cancel()
	m.destroyCurrent()
}
