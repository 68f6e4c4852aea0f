package engine

import (
	"github.com/DedS3t/tycoon-backend/platform/board"
)

const techDivision = "tech"

// techFlagships is the named trio checked before the generic tech counts.
var techFlagships = []int{37, 36, 41}

// RentMultiplier scales a property's base rent by how much of its division the
// owner holds. Tech has its own table.
func RentMultiplier(g *board.Graph, owned []int, division string) int {
	count, flagships := 0, 0
	for _, id := range owned {
		tile, err := g.GetById(id)
		if err != nil || !tile.IsProperty() || tile.Division != division {
			continue
		}
		count++
		for _, f := range techFlagships {
			if f == id {
				flagships++
			}
		}
	}

	if division == techDivision {
		switch {
		case count >= 6:
			return 5
		case count == 5:
			return 4
		case flagships == len(techFlagships):
			return 3
		case flagships >= 2:
			return 2
		case count >= 3:
			return 2
		}
		return 1
	}

	switch {
	case count >= 6:
		return 5
	case count >= 5:
		return 3
	case count >= 3:
		return 2
	}
	return 1
}
