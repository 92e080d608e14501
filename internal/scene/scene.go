// Package scene runs the scene lifecycle: one active scene at a time,
// switched through a fade-out, destroy, async init, attach, fade-in sequence.
package scene

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"chosenoffset.com/deepruins/internal/assets"
	"chosenoffset.com/deepruins/internal/config"
	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/storage"
	"chosenoffset.com/deepruins/internal/tween"
)

// Scene is one screen of the game. Init runs off the game loop and may
// block; Update and Draw run on it.
type Scene interface {
	Init(ctx context.Context, sc *Context) error
	Update() error
	Draw(screen render.Image)
	Destroy()
}

// Constructor builds a scene from the data passed to SwitchTo
type Constructor func(data any) Scene

// Publisher receives game events for observers such as the inspector
type Publisher interface {
	Publish(kind string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// Services are shared by every scene for the lifetime of the manager
type Services struct {
	Record    *gamedata.Record
	Tables    *content.Tables
	Renderer  render.Renderer
	Input     render.InputManager
	Textures  *assets.Library
	Roller    *dice.Roller
	Rules     config.Rules
	Store     storage.Store
	Slot      string
	Publisher Publisher
	Width     int
	Height    int
}

// Context is what a scene sees of the outside world. Tasks is scoped to the
// scene and cancelled when it is destroyed.
type Context struct {
	*Services
	Name  string
	Tasks *tween.Runner
	mgr   *Manager
}

// Switch requests a transition to another scene
func (c *Context) Switch(name string, data any) error {
	return c.mgr.SwitchTo(name, data)
}

// Save writes the game data record to the configured slot
func (c *Context) Save(ctx context.Context) error {
	if c.Store == nil {
		return fmt.Errorf("no save store configured")
	}
	if err := c.Record.Save(ctx, c.Store, c.Slot); err != nil {
		log.Errorf("Failed to save slot %s: %v", c.Slot, err)
		return err
	}
	log.WithField("slot", c.Slot).Info("Game saved")
	c.Publish("saved", map[string]string{"slot": c.Slot})
	return nil
}

// DT is the length of one logic tick in seconds
func (c *Context) DT() float64 {
	return c.mgr.dt
}

// Publish forwards an event to the configured publisher
func (c *Context) Publish(kind string, payload any) {
	c.Publisher.Publish(kind, payload)
}

// Logger returns a log entry tagged with the scene name
func (c *Context) Logger() *log.Entry {
	return log.WithField("scene", c.Name)
}
