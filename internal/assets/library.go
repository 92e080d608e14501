// Package assets resolves textures by name. A texture that was never loaded
// or failed to load is replaced by a generated placeholder, so a missing
// file is never fatal.
package assets

import (
	"path/filepath"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"chosenoffset.com/deepruins/internal/render"
)

// Manifest maps texture names to file names relative to the asset directory.
var Manifest = map[string]string{
	"player":             "player.png",
	"grass":              "grass.png",
	"wall":               "wall.png",
	"floor":              "floor.png",
	"chest":              "chest.png",
	"scroll":             "scroll.png",
	"area_ancient_ruins": "area_ruins.png",
	"area_lava_cavern":   "area_lava.png",
	"area_dark_temple":   "area_temple.png",
	"area_magic_tower":   "area_tower.png",
	"enemy_troll":        "troll.png",
	"enemy_skeleton":     "skeleton.png",
	"enemy_dragon_red":   "dragon_red.png",
	"enemy_dragon_blue":  "dragon_blue.png",
	"enemy_goblin":       "goblin.png",
	"enemy_slime":        "slime.png",
	"enemy_spirit":       "spirit.png",
}

// Library caches textures by name
type Library struct {
	renderer render.Renderer
	loader   render.ResourceLoader

	mu       sync.Mutex
	textures map[string]render.Image
	warned   map[string]bool
}

// NewLibrary creates an empty library. A nil loader means every texture is
// a placeholder.
func NewLibrary(renderer render.Renderer, loader render.ResourceLoader) *Library {
	return &Library{
		renderer: renderer,
		loader:   loader,
		textures: make(map[string]render.Image),
		warned:   make(map[string]bool),
	}
}

// Load reads a texture from disk under a name. On failure the name maps to
// a placeholder and false is returned.
func (l *Library) Load(name, path string) bool {
	if l.loader != nil {
		img, err := l.loader.LoadImage(path)
		if err == nil {
			l.mu.Lock()
			l.textures[name] = img
			l.mu.Unlock()
			return true
		}
		log.WithField("texture", name).Warnf("Failed to load %s: %v, using placeholder", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.warned[name] = true
	l.textures[name] = l.renderer.NewImageFromImage(Placeholder(name))
	return false
}

// LoadManifest loads every manifest entry from dir and returns how many
// real files were found.
func (l *Library) LoadManifest(dir string) int {
	if dir == "" {
		log.Info("No asset directory configured, using placeholders")
		return 0
	}

	names := make([]string, 0, len(Manifest))
	for name := range Manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		if l.Load(name, filepath.Join(dir, Manifest[name])) {
			loaded++
		}
	}
	log.Infof("Loaded %d/%d textures", loaded, len(names))
	return loaded
}

// Texture returns the image registered under name, generating and caching a
// placeholder the first time an unknown name is requested.
func (l *Library) Texture(name string) render.Image {
	l.mu.Lock()
	defer l.mu.Unlock()

	if img, ok := l.textures[name]; ok {
		return img
	}
	if !l.warned[name] {
		log.WithField("texture", name).Warn("Missing texture, using placeholder")
		l.warned[name] = true
	}
	img := l.renderer.NewImageFromImage(Placeholder(name))
	l.textures[name] = img
	return img
}

// Dispose releases every cached texture
func (l *Library) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, img := range l.textures {
		img.Dispose()
		delete(l.textures, name)
	}
}
