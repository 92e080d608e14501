// Package tween runs timed, cancellable tasks on behalf of a single scene.
// A scene owns one Runner; tearing the scene down cancels the runner so no
// queued animation or delayed step can fire against a destroyed scene.
package tween

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Task is a unit of timed work advanced by a Runner.
type Task interface {
	// Step advances the task by dt seconds and reports whether it has finished.
	Step(dt float32) bool
}

// Handle tracks one task started on a Runner.
type Handle struct {
	task      Task
	onDone    func()
	done      bool
	cancelled bool
}

// Cancel stops the task; its completion callback will not run.
func (h *Handle) Cancel() {
	h.cancelled = true
}

// Done reports whether the task ran to completion.
func (h *Handle) Done() bool {
	return h.done
}

// Runner owns the tasks of one scene.
type Runner struct {
	handles   []*Handle
	cancelled bool
}

// NewRunner creates an empty runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Go starts a task. onDone, if non-nil, runs once when the task finishes.
// A cancelled runner ignores new tasks and returns an already-cancelled handle.
func (r *Runner) Go(task Task, onDone func()) *Handle {
	h := &Handle{task: task, onDone: onDone}
	if r.cancelled {
		h.cancelled = true
		return h
	}
	r.handles = append(r.handles, h)
	return h
}

// After runs fn once the given number of seconds has elapsed.
func (r *Runner) After(seconds float32, fn func()) *Handle {
	return r.Go(Delay(seconds), fn)
}

// Update advances every live task by dt seconds.
func (r *Runner) Update(dt float64) {
	if r.cancelled {
		return
	}

	current := r.handles
	r.handles = nil
	for _, h := range current {
		if h.cancelled {
			continue
		}
		if !h.task.Step(float32(dt)) {
			r.handles = append(r.handles, h)
			continue
		}
		h.done = true
		if h.onDone != nil {
			h.onDone()
		}
		if r.cancelled {
			// a completion callback tore the scene down
			return
		}
	}
}

// Busy reports whether any task is still pending.
func (r *Runner) Busy() bool {
	for _, h := range r.handles {
		if !h.cancelled {
			return true
		}
	}
	return false
}

// Cancel stops every task and rejects future ones.
func (r *Runner) Cancel() {
	r.cancelled = true
	for _, h := range r.handles {
		h.cancelled = true
	}
	r.handles = nil
}

// Cancelled reports whether Cancel has been called.
func (r *Runner) Cancelled() bool {
	return r.cancelled
}

// --- Tasks ---

type tweenTask struct {
	tw       *gween.Tween
	onChange func(float32)
}

// Tween interpolates from begin to end over the given seconds, reporting each value.
func Tween(begin, end, seconds float32, easing ease.TweenFunc, onChange func(float32)) Task {
	if easing == nil {
		easing = ease.Linear
	}
	return &tweenTask{tw: gween.New(begin, end, seconds, easing), onChange: onChange}
}

func (t *tweenTask) Step(dt float32) bool {
	v, finished := t.tw.Update(dt)
	if t.onChange != nil {
		t.onChange(v)
	}
	return finished
}

type delayTask struct {
	remaining float32
}

// Delay finishes after the given number of seconds.
func Delay(seconds float32) Task {
	return &delayTask{remaining: seconds}
}

func (d *delayTask) Step(dt float32) bool {
	d.remaining -= dt
	return d.remaining <= 0
}

type callTask struct {
	fn func()
}

// Call runs fn on its first step and finishes immediately.
func Call(fn func()) Task {
	return &callTask{fn: fn}
}

func (c *callTask) Step(float32) bool {
	if c.fn != nil {
		c.fn()
		c.fn = nil
	}
	return true
}

type sequenceTask struct {
	tasks []Task
	idx   int
}

// Sequence runs tasks one after another. Instant tasks chain within the same step.
func Sequence(tasks ...Task) Task {
	return &sequenceTask{tasks: tasks}
}

func (s *sequenceTask) Step(dt float32) bool {
	for s.idx < len(s.tasks) {
		if !s.tasks[s.idx].Step(dt) {
			return false
		}
		s.idx++
		dt = 0
	}
	return true
}

type parallelTask struct {
	tasks    []Task
	finished []bool
}

// Parallel runs tasks together and finishes when all of them have.
func Parallel(tasks ...Task) Task {
	return &parallelTask{tasks: tasks, finished: make([]bool, len(tasks))}
}

func (p *parallelTask) Step(dt float32) bool {
	all := true
	for i, t := range p.tasks {
		if p.finished[i] {
			continue
		}
		if t.Step(dt) {
			p.finished[i] = true
		} else {
			all = false
		}
	}
	return all
}

type typewriterTask struct {
	text     []rune
	perChar  float32
	elapsed  float32
	shown    int
	onChange func(string)
}

// Typewriter reveals text one character every perChar seconds.
func Typewriter(text string, perChar float32, onChange func(string)) Task {
	return &typewriterTask{text: []rune(text), perChar: perChar, onChange: onChange}
}

func (t *typewriterTask) Step(dt float32) bool {
	if t.perChar <= 0 {
		t.shown = len(t.text)
	} else {
		t.elapsed += dt
		t.shown = int(t.elapsed / t.perChar)
		if t.shown > len(t.text) {
			t.shown = len(t.text)
		}
	}
	if t.onChange != nil {
		t.onChange(string(t.text[:t.shown]))
	}
	return t.shown >= len(t.text)
}
