// Package headless provides a render backend that draws nothing and records
// what was asked of it. Tests drive scenes through it.
package headless

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"chosenoffset.com/deepruins/internal/render"
)

func init() {
	if render.NewGeoM == nil {
		render.NewGeoM = func() render.GeoM { return &GeoM{} }
	}
}

// Renderer records text draws and counts shape draws.
type Renderer struct {
	mu     sync.Mutex
	texts  []string
	shapes int
}

// NewRenderer creates an empty recording renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) NewImage(width, height int) render.Image {
	return &Image{rect: image.Rect(0, 0, width, height)}
}

func (r *Renderer) NewImageFromImage(src image.Image) render.Image {
	return &Image{rect: src.Bounds()}
}

func (r *Renderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	r.shape()
}

func (r *Renderer) StrokeRect(dst render.Image, x, y, width, height float32, strokeWidth float32, clr color.Color) {
	r.shape()
}

func (r *Renderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	r.shape()
}

func (r *Renderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	r.shape()
}

func (r *Renderer) DrawText(dst render.Image, text string, x, y int, clr color.Color, scale float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

// MeasureText assumes a 7x13 cell per rune.
func (r *Renderer) MeasureText(text string, scale float64) (width, height int) {
	if scale <= 0 {
		scale = 1
	}
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	return int(float64(longest*7) * scale), int(float64(len(lines)*13) * scale)
}

func (r *Renderer) shape() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes++
}

// Texts returns every string drawn since the last Reset.
func (r *Renderer) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Drew reports whether any drawn string contains substr.
func (r *Renderer) Drew(substr string) bool {
	for _, t := range r.Texts() {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// Shapes returns the number of shape draws since the last Reset.
func (r *Renderer) Shapes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shapes
}

// Reset forgets recorded draws.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = nil
	r.shapes = 0
}

// Image is a size-only surface
type Image struct {
	rect     image.Rectangle
	disposed bool
}

func (i *Image) Bounds() image.Rectangle { return i.rect }

func (i *Image) Size() (int, int) { return i.rect.Dx(), i.rect.Dy() }

func (i *Image) SubImage(r image.Rectangle) render.Image {
	return &Image{rect: r.Intersect(i.rect)}
}

func (i *Image) Fill(clr color.Color) {}

func (i *Image) Clear() {}

func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {}

func (i *Image) DrawTriangles(vertices []render.Vertex, indices []uint16, img render.Image, opts *render.DrawTrianglesOptions) {
}

func (i *Image) Dispose() { i.disposed = true }

// Disposed reports whether Dispose was called
func (i *Image) Disposed() bool { return i.disposed }

// GeoM ignores transforms
type GeoM struct{}

func (g *GeoM) Translate(tx, ty float64) {}
func (g *GeoM) Scale(sx, sy float64)     {}
func (g *GeoM) Rotate(angle float64)     {}
func (g *GeoM) Reset()                   {}

// Input is a scripted keyboard. Keys set with Press are held and reported as
// just pressed until the next Tick.
type Input struct {
	mu      sync.Mutex
	held    map[render.Key]bool
	pressed map[render.Key]bool
}

// NewInput creates an input with nothing held
func NewInput() *Input {
	return &Input{held: make(map[render.Key]bool), pressed: make(map[render.Key]bool)}
}

// Press marks keys as pressed this tick.
func (in *Input) Press(keys ...render.Key) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, k := range keys {
		in.pressed[k] = true
		in.held[k] = true
	}
}

// Hold marks keys as held without a fresh press.
func (in *Input) Hold(keys ...render.Key) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, k := range keys {
		in.held[k] = true
	}
}

// Tick clears fresh presses and releases every key.
func (in *Input) Tick() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pressed = make(map[render.Key]bool)
	in.held = make(map[render.Key]bool)
}

func (in *Input) IsKeyPressed(key render.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.held[key]
}

func (in *Input) IsKeyJustPressed(key render.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pressed[key]
}

func (in *Input) GetCursorPosition() (int, int) { return 0, 0 }

func (in *Input) IsMouseButtonPressed(button render.MouseButton) bool { return false }
