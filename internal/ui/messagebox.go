package ui

import (
	"image/color"
	"strings"

	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/tween"
)

// MessageBox shows a scrolling log whose newest line is revealed one
// character at a time. Lines pushed while another is typing are queued.
type MessageBox struct {
	X, Y, Width, Height int
	MaxLines            int

	perChar float32
	history []string
	current string
	queue   []string
	handle  *tween.Handle
	typing  string

	bgColor    color.RGBA
	textColor  color.RGBA
	lineHeight int
	padding    int
}

// NewMessageBox creates an empty box revealing perChar seconds per character
func NewMessageBox(x, y, width, height int, perChar float32) *MessageBox {
	return &MessageBox{
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		MaxLines:   (height - 20) / 16,
		perChar:    perChar,
		bgColor:    color.RGBA{10, 10, 20, 220},
		textColor:  color.RGBA{230, 230, 230, 255},
		lineHeight: 16,
		padding:    10,
	}
}

// Push queues a line. Long lines are wrapped to the box width.
func (b *MessageBox) Push(tasks *tween.Runner, line string) {
	b.queue = append(b.queue, wrapText(line, b.Width-b.padding*2)...)
	if b.handle == nil {
		b.next(tasks)
	}
}

// PushAll queues several lines in order
func (b *MessageBox) PushAll(tasks *tween.Runner, lines []string) {
	for _, l := range lines {
		b.Push(tasks, l)
	}
}

func (b *MessageBox) next(tasks *tween.Runner) {
	if len(b.queue) == 0 {
		b.handle = nil
		return
	}
	line := b.queue[0]
	b.queue = b.queue[1:]
	b.typing = line
	b.current = ""

	if tasks.Cancelled() {
		b.commit()
		b.handle = nil
		b.queue = nil
		return
	}
	b.handle = tasks.Go(tween.Typewriter(line, b.perChar, func(s string) {
		b.current = s
	}), func() {
		b.commit()
		b.next(tasks)
	})
}

func (b *MessageBox) commit() {
	b.history = append(b.history, b.typing)
	if b.MaxLines > 0 && len(b.history) > b.MaxLines {
		b.history = b.history[len(b.history)-b.MaxLines:]
	}
	b.typing, b.current = "", ""
}

// Busy reports whether lines are still being revealed
func (b *MessageBox) Busy() bool {
	return b.handle != nil
}

// Skip reveals every queued line immediately
func (b *MessageBox) Skip() {
	if b.handle == nil {
		return
	}
	b.handle.Cancel()
	b.handle = nil
	b.commit()
	for _, l := range b.queue {
		b.typing = l
		b.commit()
	}
	b.queue = nil
}

// Clear empties the box
func (b *MessageBox) Clear() {
	if b.handle != nil {
		b.handle.Cancel()
		b.handle = nil
	}
	b.history, b.queue = nil, nil
	b.typing, b.current = "", ""
}

// Lines returns the fully revealed lines, oldest first
func (b *MessageBox) Lines() []string {
	return append([]string(nil), b.history...)
}

// Typing returns the partially revealed line
func (b *MessageBox) Typing() string {
	return b.current
}

// Draw renders the box
func (b *MessageBox) Draw(screen render.Image, r render.Renderer) {
	r.FillRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), b.bgColor)
	r.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), 2, color.RGBA{120, 120, 140, 255})

	lines := b.history
	if b.handle != nil {
		lines = append(append([]string(nil), lines...), b.current)
	}
	if b.MaxLines > 0 && len(lines) > b.MaxLines {
		lines = lines[len(lines)-b.MaxLines:]
	}
	y := b.Y + b.padding
	for _, l := range lines {
		r.DrawText(screen, l, b.X+b.padding, y, b.textColor, 1)
		y += b.lineHeight
	}
}

// wrapText splits text into lines that fit maxWidth, assuming 7 pixel glyphs.
func wrapText(text string, maxWidth int) []string {
	charsPerLine := maxWidth / 7
	if charsPerLine < 20 {
		charsPerLine = 20
	}

	words := strings.Fields(text)
	var lines []string
	var currentLine string

	for _, word := range words {
		if len(currentLine)+len(word)+1 > charsPerLine {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		} else {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	return lines
}
