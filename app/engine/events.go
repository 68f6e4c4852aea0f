package engine

import "github.com/DedS3t/tycoon-backend/app/models"

// Outbound event names. Clients depend on these exact strings.
const (
	EventLobbyUpdate        = "lobbyUpdate"
	EventGameStart          = "gameStart"
	EventDiceResult         = "diceResult"
	EventPlayerMoved        = "playerMoved"
	EventBranchChoices      = "branchChoices"
	EventMovementDone       = "movementDone"
	EventStartBonus         = "startBonus"
	EventRentPaid           = "rentPaid"
	EventRentBonus          = "rentBonus"
	EventStomped            = "stomped"
	EventPurchaseSuccess    = "purchaseSuccess"
	EventPurchaseFailed     = "purchaseFailed"
	EventPropertyUpdated    = "propertyUpdated"
	EventCasinoResult       = "casinoResult"
	EventLoanUpdated        = "loanUpdated"
	EventRPSStart           = "stonePaperScissorsStart"
	EventRPSResult          = "stonePaperScissorsResult"
	EventRPSTie             = "stonePaperScissorsTie"
	EventRPSTieResolved     = "stonePaperScissorsTieResolved"
	EventTradeOffer         = "tradeOffer"
	EventTradeAccepted      = "tradeAccepted"
	EventTradeRejected      = "tradeRejected"
	EventTurnEnded          = "turnEnded"
	EventPlayersStateUpdate = "playersStateUpdate"
	EventGameOver           = "gameOver"
	EventError              = "error-message"
)

type LobbyPlayer struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Piece     string `json:"piece,omitempty"`
	Ready     bool   `json:"ready"`
	Connected bool   `json:"connected"`
}

type LobbyUpdate struct {
	GameId  string        `json:"gameId"`
	Status  string        `json:"status"`
	Players []LobbyPlayer `json:"players"`
}

type GameStart struct {
	Players         []models.PlayerDto `json:"players"`
	CurrentPlayerId string             `json:"currentPlayerId"`
}

type DiceResult struct {
	PlayerId string `json:"playerId"`
	Dice     [2]int `json:"dice"`
	Total    int    `json:"total"`
}

type PlayerMoved struct {
	PlayerId  string `json:"playerId"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Remaining int    `json:"remaining"`
	Teleport  bool   `json:"teleport,omitempty"`
}

type BranchOption struct {
	Index  int    `json:"index"`
	TileId int    `json:"tileId"`
	Name   string `json:"name"`
}

type BranchChoices struct {
	PlayerId  string         `json:"playerId"`
	TileId    int            `json:"tileId"`
	Remaining int            `json:"remaining"`
	Options   []BranchOption `json:"options"`
}

type MovementDone struct {
	PlayerId string `json:"playerId"`
	TileId   int    `json:"tileId"`
}

type MoneyEvent struct {
	PlayerId   string `json:"playerId"`
	OtherId    string `json:"otherId,omitempty"`
	TileId     int    `json:"tileId,omitempty"`
	Amount     int    `json:"amount"`
	Multiplier int    `json:"multiplier,omitempty"`
}

type PurchaseResult struct {
	PlayerId string `json:"playerId"`
	TileId   int    `json:"tileId"`
	Cost     int    `json:"cost,omitempty"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type PropertyUpdated struct {
	PlayerId string `json:"playerId"`
	TileId   int    `json:"tileId"`
	Action   string `json:"action"`
	Refund   int    `json:"refund"`
}

type CasinoResult struct {
	PlayerId string `json:"playerId"`
	Bet      string `json:"bet"`
	Stake    int    `json:"stake"`
	Dice     [2]int `json:"dice"`
	Total    int    `json:"total"`
	Won      bool   `json:"won"`
	Payout   int    `json:"payout"`
}

type LoanUpdate struct {
	PlayerId string       `json:"playerId"`
	Kind     string       `json:"kind"`
	Money    int          `json:"money"`
	Loan     int          `json:"loan"`
	Details  *models.Loan `json:"details,omitempty"`
}

type RPSStart struct {
	LanderId   string   `json:"landerId"`
	TileId     int      `json:"tileId"`
	Contenders []string `json:"contenders"`
}

type RPSResult struct {
	LanderId string            `json:"landerId"`
	Choices  map[string]Choice `json:"choices"`
	Outcomes map[string]string `json:"outcomes"`
}

type RPSTie struct {
	LanderId     string `json:"landerId"`
	TiedPlayerId string `json:"tiedPlayerId"`
	Options      int    `json:"options"`
}

type RPSTieResolved struct {
	LanderId     string `json:"landerId"`
	TiedPlayerId string `json:"tiedPlayerId"`
	Amount       int    `json:"amount"`
}

type TradeRejected struct {
	OfferId string `json:"offerId"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}

type TurnEnded struct {
	PlayerId     string `json:"playerId"`
	NextPlayerId string `json:"nextPlayerId"`
}

type GameOver struct {
	WinnerId   string `json:"winnerId,omitempty"`
	WinnerName string `json:"winnerName,omitempty"`
}

type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// report tells a player about a failed side effect they did not ask for
// directly, such as rent that could not be saved.
func (s *Session) report(playerId string, err error) {
	s.sendTo(playerId, EventError, ErrorMessage{Code: CodeOf(err), Message: err.Error()})
}
