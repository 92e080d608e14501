// Package ui provides the small widgets the scenes share: a vertical
// selection menu and a typewriter message box.
package ui

import (
	"image/color"

	"chosenoffset.com/deepruins/internal/render"
)

// Item is a menu entry
type Item struct {
	Label   string
	Enabled bool
	Value   any
}

// Menu is a vertical list with a clamped cursor
type Menu struct {
	X, Y, Width int
	Title       string
	Items       []Item
	Cursor      int

	bgColor       color.RGBA
	textColor     color.RGBA
	selectedColor color.RGBA
	dimColor      color.RGBA
	lineHeight    int
	padding       int
}

// NewMenu creates an empty menu
func NewMenu(title string, x, y, width int) *Menu {
	return &Menu{
		X:             x,
		Y:             y,
		Width:         width,
		Title:         title,
		bgColor:       color.RGBA{20, 20, 30, 230},
		textColor:     color.RGBA{200, 200, 200, 255},
		selectedColor: color.RGBA{255, 255, 150, 255},
		dimColor:      color.RGBA{120, 120, 120, 255},
		lineHeight:    22,
		padding:       10,
	}
}

// SetItems replaces the entries and keeps the cursor in range
func (m *Menu) SetItems(items []Item) {
	m.Items = items
	m.Move(0)
}

// Move shifts the cursor by delta without wrapping
func (m *Menu) Move(delta int) {
	m.Cursor += delta
	if m.Cursor >= len(m.Items) {
		m.Cursor = len(m.Items) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// Selected returns the entry under the cursor
func (m *Menu) Selected() (Item, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return Item{}, false
	}
	return m.Items[m.Cursor], true
}

// Update handles navigation and reports whether an enabled entry was confirmed.
func (m *Menu) Update(input render.InputManager) bool {
	switch {
	case input.IsKeyJustPressed(render.KeyUp), input.IsKeyJustPressed(render.KeyW):
		m.Move(-1)
	case input.IsKeyJustPressed(render.KeyDown), input.IsKeyJustPressed(render.KeyS):
		m.Move(1)
	case input.IsKeyJustPressed(render.KeyEnter), input.IsKeyJustPressed(render.KeySpace):
		item, ok := m.Selected()
		return ok && item.Enabled
	}
	return false
}

// Height is the drawn height in pixels
func (m *Menu) Height() int {
	h := m.padding*2 + len(m.Items)*m.lineHeight
	if m.Title != "" {
		h += m.lineHeight + m.padding
	}
	return h
}

// Draw renders the menu box
func (m *Menu) Draw(screen render.Image, r render.Renderer) {
	m.DrawAt(screen, r, m.X, m.Y)
}

// DrawAt renders the menu box at an offset position, used while it slides in.
func (m *Menu) DrawAt(screen render.Image, r render.Renderer, x, y int) {
	h := m.Height()
	r.FillRect(screen, float32(x), float32(y), float32(m.Width), float32(h), m.bgColor)
	r.StrokeRect(screen, float32(x), float32(y), float32(m.Width), float32(h), 2, m.dimColor)

	cy := y + m.padding
	if m.Title != "" {
		r.DrawText(screen, m.Title, x+m.padding, cy, m.selectedColor, 1.2)
		cy += m.lineHeight + m.padding
	}

	for i, item := range m.Items {
		clr := m.textColor
		if !item.Enabled {
			clr = m.dimColor
		}
		label := "  " + item.Label
		if i == m.Cursor {
			label = "> " + item.Label
			if item.Enabled {
				clr = m.selectedColor
			}
		}
		r.DrawText(screen, label, x+m.padding, cy, clr, 1)
		cy += m.lineHeight
	}
}
