package models

type TileKind string

const (
	TileProperty TileKind = "property"
	TileEvent    TileKind = "event"
)

// Event tile actions.
const (
	ActionStart    = "start"
	ActionCasino   = "casino"
	ActionConflict = "conflict"
	ActionTeleport = "teleport"
	ActionPark     = "park"
)

type RollClass string

const (
	RollAny    RollClass = "any"
	RollBelow7 RollClass = "below7"
	RollAbove7 RollClass = "above7"
)

// Edge leaves a tile. From is the tile the token must have arrived from, 0 when
// the edge applies regardless of arrival direction.
type Edge struct {
	From int       `json:"from,omitempty"`
	Roll RollClass `json:"roll"`
	To   int       `json:"to"`
}

type Tile struct {
	Id       int      `json:"id"`
	Name     string   `json:"name"`
	Kind     TileKind `json:"kind"`
	Division string   `json:"division,omitempty"`
	Action   string   `json:"action,omitempty"`
	Cost     int      `json:"cost,omitempty"`
	Rent     int      `json:"rent,omitempty"`
	Edges    []Edge   `json:"edges"`
}

func (t Tile) IsProperty() bool {
	return t.Kind == TileProperty
}

// IsSpecial reports whether the tile triggers its own rule on landing.
func (t Tile) IsSpecial() bool {
	return t.Kind == TileEvent && t.Action != "" && t.Action != ActionPark
}

type Board struct {
	StartTile int    `json:"startTile"`
	LastTile  int    `json:"lastTile"`
	Tiles     []Tile `json:"tiles"`
}
