package engine

const (
	StartingMoney      = 10000
	StartBonus         = 2000
	StartBonusIndebted = 1000
	StompAmount        = 500
	MinBorrow          = 100
	// MaxAmount bounds a single stake, bank loan or player loan.
	MaxAmount          = 1000000000
	MinPlayers         = 2
	MaxPlayers         = 6

	// conflict search
	MaxSearchDepth = 12
	LoopWindow     = 3

	TieCeiling = 2000

	CasinoPayout      = 2
	CasinoSevenPayout = 3
)

// maxBalance keeps money and loan well clear of int overflow.
var maxBalance = int(^uint(0) >> 2)

func overflows(balance, add int) bool {
	return add > maxBalance-balance
}

var TieDenominations = []int{100, 200, 500, 1000, 2000}

var Pieces = []string{"car", "hat", "dog", "ship", "boot", "iron"}

const (
	BetBelow = "below7"
	BetSeven = "exactly7"
	BetAbove = "above7"
)

func validPiece(piece string) bool {
	for _, p := range Pieces {
		if p == piece {
			return true
		}
	}
	return false
}
