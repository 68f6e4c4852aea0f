package socket

import "github.com/DedS3t/tycoon-backend/app/models"

// Inbound event names.
const (
	EventJoinLobby      = "joinLobby"
	EventSelectPiece    = "selectPiece"
	EventPlayerReady    = "playerReady"
	EventRollDice       = "rollDice"
	EventBranchChoice   = "branchChoice"
	EventEndTurn        = "endTurn"
	EventBuyProperty    = "buyProperty"
	EventUpdateProperty = "updateProperty"
	EventCasinoRoll     = "casinoRoll"
	EventBorrowMoney    = "borrowMoney"
	EventPayoffLoan     = "payoffLoan"
	EventTeleport       = "teleport"
	EventRPSChoice      = "stonePaperScissorsChoice"
	EventRPSTieAmount   = "stonePaperScissorsTieAmount"
	EventTradeRequest   = "tradeRequest"
	EventTradeResponse  = "tradeResponse"
	EventQuitGame       = "quitGame"
	EventLoanRequest    = "loanRequest"
	EventLoanResponse   = "loanResponse"
	EventLoanRepay      = "loanRepay"
	EventJoinedLobby    = "joinedLobby"
)

// Transport failure codes.
const (
	CodeBadRequest   = "badRequest"
	CodeNotJoined    = "notJoined"
	CodeGameNotFound = "gameNotFound"
)

type joinLobbyReq struct {
	GameId string `json:"gameId"`
	Name   string `json:"name"`
}

type joinedLobby struct {
	Player models.PlayerDto       `json:"player"`
	Token  string                 `json:"token"`
	State  models.SessionSnapshot `json:"state"`
}

type pieceReq struct {
	Piece string `json:"piece"`
}

type readyReq struct {
	Ready bool `json:"ready"`
}

type indexReq struct {
	Index int `json:"index"`
}

type tileReq struct {
	TileId int    `json:"tileId"`
	Action string `json:"action"`
}

type casinoReq struct {
	Bet   string `json:"bet"`
	Stake int    `json:"stake"`
}

type amountReq struct {
	Amount int `json:"amount"`
}

type choiceReq struct {
	Choice string `json:"choice"`
}

type tieAmountReq struct {
	TiedPlayerId string `json:"tiedPlayerId"`
	Index        int    `json:"index"`
}

type responseReq struct {
	OfferId string `json:"offerId"`
	LoanId  string `json:"loanId"`
	Accept  bool   `json:"accept"`
}

type loanReq struct {
	LenderId     string `json:"lenderId"`
	Amount       int    `json:"amount"`
	ReturnAmount int    `json:"returnAmount"`
}
