// Package dungeon implements grid-based dungeon traversal: maze generation,
// entity placement with stable ids, facing-relative movement and encounter
// sampling.
package dungeon

import (
	"chosenoffset.com/deepruins/internal/dice"
)

// Cell is a grid coordinate
type Cell struct {
	X, Y int
}

// Maze is a grid where true marks a wall
type Maze struct {
	W, H  int
	walls [][]bool
}

// Generate carves a perfect maze by randomized depth-first search from (1,1),
// then opens an entrance on the west edge at (0,1) and an exit on the east
// edge at (w-1,h-2). Width and height must be odd and at least 5.
func Generate(w, h int, roller *dice.Roller) *Maze {
	m := &Maze{W: w, H: h, walls: make([][]bool, h)}
	for y := range m.walls {
		m.walls[y] = make([]bool, w)
		for x := range m.walls[y] {
			m.walls[y][x] = true
		}
	}

	dirs := []Cell{{0, -2}, {2, 0}, {0, 2}, {-2, 0}}
	start := Cell{1, 1}
	m.walls[start.Y][start.X] = false
	stack := []Cell{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		var options []Cell
		for _, d := range dirs {
			next := Cell{cur.X + d.X, cur.Y + d.Y}
			if next.X > 0 && next.X < w-1 && next.Y > 0 && next.Y < h-1 && m.walls[next.Y][next.X] {
				options = append(options, next)
			}
		}
		if len(options) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := options[roller.Intn(len(options))]
		m.walls[(cur.Y+next.Y)/2][(cur.X+next.X)/2] = false
		m.walls[next.Y][next.X] = false
		stack = append(stack, next)
	}

	entrance, exit := m.Entrance(), m.Exit()
	m.walls[entrance.Y][entrance.X] = false
	m.walls[exit.Y][exit.X] = false
	return m
}

// Entrance is the opening on the west edge
func (m *Maze) Entrance() Cell {
	return Cell{0, 1}
}

// Exit is the opening on the east edge
func (m *Maze) Exit() Cell {
	return Cell{m.W - 1, m.H - 2}
}

// IsWall reports whether a cell is solid. Cells outside the grid are walls.
func (m *Maze) IsWall(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return true
	}
	return m.walls[y][x]
}

// Passages lists every open cell in row-major order
func (m *Maze) Passages() []Cell {
	var out []Cell
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.walls[y][x] {
				out = append(out, Cell{x, y})
			}
		}
	}
	return out
}
