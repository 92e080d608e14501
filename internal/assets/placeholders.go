package assets

import (
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"
)

// TileSize is the standard size for placeholder textures
const TileSize = 32

// Palette defines the placeholder colors per texture family
var Palette = struct {
	Floor      color.RGBA
	Wall       color.RGBA
	Grass      color.RGBA
	Player     color.RGBA
	Enemy      color.RGBA
	EnemyMagic color.RGBA
	Chest      color.RGBA
	Scroll     color.RGBA
	Area       color.RGBA
	Border     color.RGBA
	Background color.RGBA
}{
	Floor:      color.RGBA{70, 65, 60, 255},    // Dark stone gray
	Wall:       color.RGBA{130, 125, 115, 255}, // Lighter stone
	Grass:      color.RGBA{60, 110, 60, 255},
	Player:     color.RGBA{0, 255, 100, 255}, // Bright green
	Enemy:      color.RGBA{255, 50, 50, 255}, // Bright red
	EnemyMagic: color.RGBA{200, 0, 200, 255}, // Magenta
	Chest:      color.RGBA{255, 215, 0, 255}, // Gold
	Scroll:     color.RGBA{80, 60, 140, 255}, // Mystic purple
	Area:       color.RGBA{220, 140, 50, 255},
	Border:     color.RGBA{200, 200, 200, 255},
	Background: color.RGBA{30, 28, 25, 255},
}

// Placeholder draws a stand-in for a missing texture. The shape and color
// follow the name prefix so a missing enemy still reads as an enemy.
func Placeholder(name string) *image.RGBA {
	switch {
	case name == "player":
		return CreateCircle(Palette.Player, Darken(Palette.Player, 0.5))
	case strings.HasPrefix(name, "enemy_dragon"), strings.HasPrefix(name, "enemy_spirit"):
		return CreateCircle(Palette.EnemyMagic, Darken(Palette.EnemyMagic, 0.5))
	case strings.HasPrefix(name, "enemy_"):
		return CreateCircle(Palette.Enemy, Darken(Palette.Enemy, 0.5))
	case strings.HasPrefix(name, "chest"):
		return CreateBorderedTile(Palette.Chest, Darken(Palette.Chest, 0.6), 3)
	case strings.HasPrefix(name, "scroll"):
		return CreatePatternedTile(Palette.Scroll, Lighten(Palette.Scroll, 0.5), "cross")
	case strings.HasPrefix(name, "area_"):
		return CreatePatternedTile(Palette.Area, Darken(Palette.Area, 0.6), "diagonal")
	case strings.HasPrefix(name, "wall"):
		return CreatePatternedTile(Palette.Wall, Darken(Palette.Wall, 0.8), "grid")
	case strings.HasPrefix(name, "floor"):
		return CreatePatternedTile(Palette.Floor, Darken(Palette.Floor, 0.8), "dots")
	case strings.HasPrefix(name, "grass"):
		return CreatePatternedTile(Palette.Grass, Lighten(Palette.Grass, 0.2), "dots")
	default:
		c := hashColor(name)
		return CreateBorderedTile(c, Palette.Border, 1)
	}
}

func hashColor(name string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.RGBA{uint8(64 + v%160), uint8(64 + (v>>8)%160), uint8(64 + (v>>16)%160), 255}
}

// CreateSolidTile creates a simple solid-colored tile
func CreateSolidTile(col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a tile with a border
func CreateBorderedTile(fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := CreateSolidTile(fillColor)
	for i := 0; i < borderWidth; i++ {
		for x := 0; x < TileSize; x++ {
			img.Set(x, i, borderColor)
			img.Set(x, TileSize-1-i, borderColor)
		}
		for y := 0; y < TileSize; y++ {
			img.Set(i, y, borderColor)
			img.Set(TileSize-1-i, y, borderColor)
		}
	}
	return img
}

// CreatePatternedTile creates a tile with a simple pattern
func CreatePatternedTile(baseColor, patternColor color.RGBA, pattern string) *image.RGBA {
	img := CreateSolidTile(baseColor)

	switch pattern {
	case "grid":
		for i := 0; i < TileSize; i += 8 {
			for x := 0; x < TileSize; x++ {
				img.Set(x, i, patternColor)
				img.Set(i, x, patternColor)
			}
		}
	case "dots":
		quarter := TileSize / 4
		threeQuarter := 3 * TileSize / 4
		dots := []image.Point{{quarter, quarter}, {threeQuarter, quarter}, {quarter, threeQuarter}, {threeQuarter, threeQuarter}}
		for _, p := range dots {
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					img.Set(p.X+dx, p.Y+dy, patternColor)
				}
			}
		}
	case "cross":
		mid := TileSize / 2
		for i := 2; i < TileSize-2; i++ {
			img.Set(mid, i, patternColor)
			img.Set(i, mid, patternColor)
		}
	case "diagonal":
		for i := 0; i < TileSize; i++ {
			img.Set(i, i, patternColor)
			img.Set(i, TileSize-1-i, patternColor)
		}
	}

	return img
}

// CreateCircle creates a circular sprite on a transparent background
func CreateCircle(fillColor, outlineColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))

	center := TileSize / 2
	radius := TileSize/2 - 2

	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			dx := x - center
			dy := y - center
			distSq := dx*dx + dy*dy

			if distSq <= radius*radius {
				img.Set(x, y, fillColor)
			} else if distSq <= (radius+1)*(radius+1) {
				img.Set(x, y, outlineColor)
			}
		}
	}

	return img
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of a color
func Lighten(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}
