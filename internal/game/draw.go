package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/scene"
)

var (
	colorHPBar    = color.RGBA{200, 50, 50, 255}
	colorMPBar    = color.RGBA{50, 100, 220, 255}
	colorBarBack  = color.RGBA{40, 40, 40, 255}
	colorPanel    = color.RGBA{10, 10, 20, 220}
	colorBorder   = color.RGBA{120, 120, 140, 255}
	colorText     = color.RGBA{230, 230, 230, 255}
	colorHighText = color.RGBA{255, 255, 150, 255}
)

// drawSprite draws a named texture scaled to size x size with its top-left
// corner at (x, y).
func drawSprite(sc *scene.Context, screen render.Image, name string, x, y, size float64) {
	img := sc.Textures.Texture(name)
	if img == nil {
		return
	}
	w, h := img.Size()
	if w == 0 || h == 0 {
		return
	}
	op := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	op.GeoM.Scale(size/float64(w), size/float64(h))
	op.GeoM.Translate(x, y)
	screen.DrawImage(img, op)
}

// drawBar draws a filled gauge of current/max
func drawBar(r render.Renderer, screen render.Image, x, y, w, h float32, current, max int, clr color.Color) {
	r.FillRect(screen, x, y, w, h, colorBarBack)
	if max > 0 && current > 0 {
		fill := w * float32(current) / float32(max)
		if fill > w {
			fill = w
		}
		r.FillRect(screen, x, y, fill, h, clr)
	}
	r.StrokeRect(screen, x, y, w, h, 1, colorBorder)
}

// drawHUD renders the player's name, level, HP, MP and experience.
func drawHUD(sc *scene.Context, screen render.Image) {
	r := sc.Renderer
	p := sc.Record.Player()

	r.FillRect(screen, 10, 10, 220, 78, colorPanel)
	r.StrokeRect(screen, 10, 10, 220, 78, 2, colorBorder)
	r.DrawText(screen, fmt.Sprintf("%s  Lv %d", p.Name, p.Level), 20, 16, colorHighText, 1)

	r.DrawText(screen, fmt.Sprintf("HP %d/%d", p.HP, p.MaxHP), 20, 34, colorText, 1)
	drawBar(r, screen, 120, 36, 100, 10, p.HP, p.MaxHP, colorHPBar)
	r.DrawText(screen, fmt.Sprintf("MP %d/%d", p.MP, p.MaxMP), 20, 50, colorText, 1)
	drawBar(r, screen, 120, 52, 100, 10, p.MP, p.MaxMP, colorMPBar)
	r.DrawText(screen, fmt.Sprintf("EXP %d/%d", p.Exp, p.Level*100), 20, 66, colorText, 1)
}

func drawToasts(sc *scene.Context, screen render.Image, t *toasts) {
	y := sc.Height - 30
	for i := len(t.list) - 1; i >= 0; i-- {
		msg := t.list[i]
		alpha := uint8(255)
		if msg.TimeLeft < 1 {
			alpha = uint8(255 * msg.TimeLeft)
		}
		w, _ := sc.Renderer.MeasureText(msg.Text, 1)
		x := (sc.Width - w) / 2
		sc.Renderer.FillRect(screen, float32(x-8), float32(y-4), float32(w+16), 20, color.RGBA{0, 0, 0, alpha / 2})
		sc.Renderer.DrawText(screen, msg.Text, x, y, color.RGBA{255, 255, 255, alpha}, 1)
		y -= 24
	}
}
