package engine

import (
	"errors"
	"fmt"
)

// Failure codes sent back to the player that initiated an action.
const (
	CodeNotInGame         = "notInGame"
	CodeGameNotStarted    = "gameNotStarted"
	CodeGameInProgress    = "gameInProgress"
	CodeGameFull          = "gameFull"
	CodeNameTaken         = "nameTaken"
	CodeInvalidName       = "invalidName"
	CodeInvalidPiece      = "invalidPiece"
	CodePieceTaken        = "pieceTaken"
	CodePieceRequired     = "pieceRequired"
	CodeNotYourTurn       = "notYourTurn"
	CodeAlreadyRolled     = "alreadyRolled"
	CodeNotMoved          = "notMoved"
	CodePendingDecision   = "pendingDecision"
	CodeNoPendingDecision = "noPendingDecision"
	CodeInvalidChoice     = "invalidChoice"
	CodeConflictPending   = "conflictPending"
	CodeNotOnTile         = "notOnTile"
	CodeNotProperty       = "notProperty"
	CodeAlreadyOwned      = "alreadyOwned"
	CodeNotOwner          = "notOwner"
	CodeInsufficientFunds = "insufficientFunds"
	CodeInvalidAmount     = "invalidAmount"
	CodeAlreadyPlayed     = "alreadyPlayed"
	CodeNoLoan            = "noLoan"
	CodeLoanNotFound      = "loanNotFound"
	CodeInvalidLoanState  = "invalidLoanState"
	CodeTradeNotFound     = "tradeNotFound"
	CodeInvalidTrade      = "invalidTrade"
	CodeNotAllowed        = "notAllowed"
	CodeBusy              = "busy"
	CodeCommitFailed      = "commitFailed"
	CodeStuck             = "stuck"
)

// Failure is a recoverable, user-facing error. Nothing was changed when one is
// returned.
type Failure struct {
	Code    string
	Message string
	// Reported is set when the engine already told the affected players.
	Reported bool
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func fail(code, format string, args ...interface{}) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the failure code of err, or commitFailed for anything else.
func CodeOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return CodeCommitFailed
}

var errStuck = errors.New("no outgoing edge")
