package models

// Player is both the in-memory authoritative record and the players table row.
type Player struct {
	tableName struct{} `pg:"players"`

	Id         string `pg:",pk" json:"id"`
	Game_id    string `json:"gameId"`
	Name       string `json:"name"`
	Piece      string `json:"piece"`
	Money      int    `pg:",use_zero" json:"money"`
	Loan       int    `pg:",use_zero" json:"loan"`
	Properties []int  `pg:",array" json:"properties"`
	TileId     int    `pg:",use_zero" json:"tileId"`
	PrevTile   int    `pg:",use_zero" json:"prevTile"`
	HasRolled  bool   `pg:",use_zero" json:"hasRolled"`
	HasMoved   bool   `pg:",use_zero" json:"hasMoved"`
	Ready      bool   `pg:",use_zero" json:"ready"`
	Connected  bool   `pg:",use_zero" json:"connected"`
	Left       bool   `pg:",use_zero" json:"-"`
	Version    int    `pg:",use_zero" json:"-"`
}

// Columns written by the storage layer.
const (
	ColMoney      = "money"
	ColLoan       = "loan"
	ColProperties = "properties"
	ColTile       = "tile_id"
	ColPrevTile   = "prev_tile"
	ColHasRolled  = "has_rolled"
	ColHasMoved   = "has_moved"
	ColReady      = "ready"
	ColConnected  = "connected"
	ColLeft       = "left"
	ColPiece      = "piece"
)

// AllColumns is the full mutable row.
var AllColumns = []string{
	ColMoney, ColLoan, ColProperties, ColTile, ColPrevTile,
	ColHasRolled, ColHasMoved, ColReady, ColConnected, ColLeft, ColPiece,
}

func (p *Player) Clone() *Player {
	c := *p
	c.Properties = append([]int(nil), p.Properties...)
	return &c
}

func (p *Player) Owns(tileId int) bool {
	for _, id := range p.Properties {
		if id == tileId {
			return true
		}
	}
	return false
}

func (p *Player) AddProperty(tileId int) {
	if !p.Owns(tileId) {
		p.Properties = append(p.Properties, tileId)
	}
}

func (p *Player) RemoveProperty(tileId int) {
	out := p.Properties[:0]
	for _, id := range p.Properties {
		if id != tileId {
			out = append(out, id)
		}
	}
	p.Properties = out
}

// Settle turns negative money into loan.
func (p *Player) Settle() {
	if p.Money < 0 {
		p.Loan += -p.Money
		p.Money = 0
	}
}

type PlayerDto struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	Piece      string `json:"piece"`
	Money      int    `json:"money"`
	Loan       int    `json:"loan"`
	Properties []int  `json:"properties"`
	TileId     int    `json:"tileId"`
	Connected  bool   `json:"connected"`
}

func (p *Player) Dto() PlayerDto {
	return PlayerDto{
		Id:         p.Id,
		Name:       p.Name,
		Piece:      p.Piece,
		Money:      p.Money,
		Loan:       p.Loan,
		Properties: append([]int(nil), p.Properties...),
		TileId:     p.TileId,
		Connected:  p.Connected,
	}
}
