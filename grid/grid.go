// Package grid extracts connected cell groups from occupancy grids and
// maps them into world coordinates.
package grid

import (
	"math"

	"github.com/edwinhayes/ropose/msgs/nav_msgs"
)

const (
	//MinSideMeters is the smallest bounding-box side a cell group may have
	//and still count as an obstacle; anything smaller is sensor noise.
	MinSideMeters = 0.09
	//MaxDiagonalMeters is the largest bounding-box diagonal a cell group
	//may have and still count as an obstacle; anything larger is assumed
	//to be structure such as a wall.
	MaxDiagonalMeters = 1.5
)

//Cell is one occupancy grid cell with its row-major position and value.
type Cell struct {
	Row   int
	Col   int
	Value int8
}

//Group is a connected set of cells with a deterministic id assigned in
//extraction order.
type Group struct {
	ID    int
	Cells []Cell
}

//Box is an axis-aligned bounding box in world coordinates.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (b Box) Width() float64 {
	return b.MaxX - b.MinX
}

func (b Box) Height() float64 {
	return b.MaxY - b.MinY
}

func (b Box) Diagonal() float64 {
	return math.Hypot(b.Width(), b.Height())
}

//ObstacleSized reports whether the box passes the noise rule: both sides
//at least MinSideMeters and the diagonal at most MaxDiagonalMeters.
func (b Box) ObstacleSized() bool {
	return b.Width() >= MinSideMeters &&
		b.Height() >= MinSideMeters &&
		b.Diagonal() <= MaxDiagonalMeters
}

//Filter returns every cell whose occupancy value satisfies pred, in
//row-major order.
func Filter(g *nav_msgs.OccupancyGrid, pred func(int8) bool) []Cell {
	cells := []Cell{}
	width := int(g.Info.Width)
	height := int(g.Info.Height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			if i >= len(g.Data) {
				return cells
			}
			if pred(g.Data[i]) {
				cells = append(cells, Cell{Row: row, Col: col, Value: g.Data[i]})
			}
		}
	}
	return cells
}

//CellToWorld maps a cell to the world position of its center, with the
//world origin at the center of the grid: x grows with the column and y
//shrinks with the row.
func CellToWorld(c Cell, meta nav_msgs.MapMetaData) (float64, float64) {
	res := float64(meta.Resolution)
	x := -((float64(meta.Width)/2 - float64(c.Col)) * res)
	y := (float64(meta.Height)/2 - float64(c.Row)) * res
	return x, y
}

//ExtractGroups filters the grid through pred and clusters the surviving
//cells with an iterative flood fill. Two cells belong to the same group
//when their row and column each differ by less than kernel.
func ExtractGroups(g *nav_msgs.OccupancyGrid, pred func(int8) bool, kernel int) []Group {
	if kernel < 1 {
		kernel = 1
	}
	cells := Filter(g, pred)
	assigned := make([]bool, len(cells))
	groups := []Group{}
	for i := range cells {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		queue := []int{i}
		var members []Cell
		for len(queue) > 0 {
			ci := queue[0]
			queue = queue[1:]
			members = append(members, cells[ci])
			for j := range cells {
				if assigned[j] {
					continue
				}
				if abs(cells[j].Row-cells[ci].Row) < kernel && abs(cells[j].Col-cells[ci].Col) < kernel {
					assigned[j] = true
					queue = append(queue, j)
				}
			}
		}
		groups = append(groups, Group{ID: len(groups), Cells: members})
	}
	return groups
}

//Bounds returns the world-space bounding box of the group's cell centers.
func (g Group) Bounds(meta nav_msgs.MapMetaData) Box {
	box := Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, c := range g.Cells {
		x, y := CellToWorld(c, meta)
		box.MinX = math.Min(box.MinX, x)
		box.MinY = math.Min(box.MinY, y)
		box.MaxX = math.Max(box.MaxX, x)
		box.MaxY = math.Max(box.MaxY, y)
	}
	return box
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
