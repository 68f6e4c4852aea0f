package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DedS3t/tycoon-backend/app/models"
)

//go:embed board.json
var boardJSON []byte

// Graph is the immutable board. Lookups never mutate it, so one Graph is shared
// by every session.
type Graph struct {
	start int
	last  int
	tiles map[int]models.Tile
	order []int
	sizes map[string]int
	adj   map[int][]int
}

// LoadBoard parses the embedded board definition.
func LoadBoard() *Graph {
	g, err := Parse(boardJSON)
	if err != nil {
		panic(err)
	}
	return g
}

func Parse(data []byte) (*Graph, error) {
	var def models.Board
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return New(def)
}

// New validates a board definition: every edge target exists, every tile has
// an exit and at most one Any edge per arrival tile.
func New(def models.Board) (*Graph, error) {
	g := &Graph{
		start: def.StartTile,
		last:  def.LastTile,
		tiles: make(map[int]models.Tile, len(def.Tiles)),
		sizes: make(map[string]int),
		adj:   make(map[int][]int),
	}
	for _, tile := range def.Tiles {
		if _, dup := g.tiles[tile.Id]; dup {
			return nil, fmt.Errorf("duplicate tile %d", tile.Id)
		}
		g.tiles[tile.Id] = tile
		g.order = append(g.order, tile.Id)
		if tile.IsProperty() {
			g.sizes[tile.Division]++
		}
	}
	if _, ok := g.tiles[g.start]; !ok {
		return nil, errors.New("start tile not on board")
	}
	for _, tile := range def.Tiles {
		if len(tile.Edges) == 0 {
			return nil, fmt.Errorf("tile %d has no edges", tile.Id)
		}
		unconditional := make(map[int]bool)
		for _, edge := range tile.Edges {
			if _, ok := g.tiles[edge.To]; !ok {
				return nil, fmt.Errorf("tile %d: edge to unknown tile %d", tile.Id, edge.To)
			}
			g.link(tile.Id, edge.To)
			if edge.Roll != models.RollAny {
				continue
			}
			if unconditional[edge.From] {
				return nil, fmt.Errorf("tile %d: more than one unconditional edge from %d", tile.Id, edge.From)
			}
			unconditional[edge.From] = true
		}
	}
	return g, nil
}

func (g *Graph) StartTile() int { return g.start }
func (g *Graph) LastTile() int  { return g.last }

func (g *Graph) GetById(id int) (models.Tile, error) {
	tile, ok := g.tiles[id]
	if !ok {
		return models.Tile{}, errors.New("not found")
	}
	return tile, nil
}

// Tiles returns the tiles in board order.
func (g *Graph) Tiles() []models.Tile {
	out := make([]models.Tile, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tiles[id])
	}
	return out
}

// DivisionSize is the number of property tiles in a division.
func (g *Graph) DivisionSize(division string) int {
	return g.sizes[division]
}

// EdgesFrom returns the edges usable on tileId having arrived from arrivedFrom.
// Edges keyed on the exact arrival come before the direction-free ones.
func (g *Graph) EdgesFrom(tileId, arrivedFrom int) []models.Edge {
	tile, ok := g.tiles[tileId]
	if !ok {
		return nil
	}
	var exact, open []models.Edge
	for _, edge := range tile.Edges {
		switch {
		case edge.From == 0:
			open = append(open, edge)
		case edge.From == arrivedFrom:
			exact = append(exact, edge)
		}
	}
	return append(exact, open...)
}

// Neighbours lists tiles adjacent to id ignoring edge direction and conditions.
func (g *Graph) Neighbours(id int) []int {
	return g.adj[id]
}

func (g *Graph) link(a, b int) {
	if a == b {
		return
	}
	for _, n := range g.adj[a] {
		if n == b {
			return
		}
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}
