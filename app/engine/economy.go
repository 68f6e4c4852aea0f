package engine

import (
	"context"
	"errors"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
)

func (s *Session) requireRunning(playerId string) (*models.Player, error) {
	if s.status != models.GameInProgress {
		return nil, fail(CodeGameNotStarted, "game is not running")
	}
	return s.mustPlayer(playerId)
}

// moving reports whether any of the players is halfway through a roll.
func (s *Session) moving(players ...*models.Player) bool {
	if s.move == nil || s.move.landed {
		return false
	}
	for _, p := range players {
		if p.Id == s.move.playerId {
			return true
		}
	}
	return false
}

// durable reads a player's committed row inside tx.
func durable(ctx context.Context, tx database.Tx, p *models.Player) (*models.Player, error) {
	row, err := tx.Player(ctx, p.Id)
	if errors.Is(err, database.ErrNotFound) {
		return p, nil
	}
	return row, err
}

// BuyProperty buys the tile the player is standing on. Ownership and funds are
// checked again against the committed rows, so two buyers racing for the same
// tile cannot both win.
func (s *Session) BuyProperty(ctx context.Context, playerId string, tileId int) error {
	s.lock()
	defer s.unlock()

	err := s.buy(ctx, playerId, tileId)
	if err != nil {
		var f *Failure
		if !errors.As(err, &f) {
			f = fail(CodeCommitFailed, "%v", err)
		}
		s.sendTo(playerId, EventPurchaseFailed, PurchaseResult{PlayerId: playerId, TileId: tileId, Code: f.Code, Reason: f.Message})
		f.Reported = true
		return f
	}
	return nil
}

func (s *Session) buy(ctx context.Context, playerId string, tileId int) error {
	p, err := s.requireRunning(playerId)
	if err != nil {
		return err
	}
	tile, err := s.graph.GetById(tileId)
	if err != nil || !tile.IsProperty() {
		return fail(CodeNotProperty, "tile %d cannot be bought", tileId)
	}
	if p.TileId != tile.Id {
		return fail(CodeNotOnTile, "you are not on %s", tile.Name)
	}
	if s.moving(p) {
		return fail(CodeBusy, "finish moving first")
	}
	if owner := s.ownerOf(tile.Id); owner != nil {
		return fail(CodeAlreadyOwned, "%s is already owned", tile.Name)
	}
	if p.Money < tile.Cost {
		return fail(CodeInsufficientFunds, "%s costs %d", tile.Name, tile.Cost)
	}

	return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		row, err := durable(ctx, tx, p)
		if err != nil {
			return err
		}
		if row.Money < tile.Cost {
			return fail(CodeInsufficientFunds, "%s costs %d", tile.Name, tile.Cost)
		}
		for _, o := range s.players {
			other, err := durable(ctx, tx, o)
			if err != nil {
				return err
			}
			if other.Owns(tile.Id) {
				return fail(CodeAlreadyOwned, "%s is already owned", tile.Name)
			}
		}
		p.Money -= tile.Cost
		p.AddProperty(tile.Id)
		s.record("buy", p.Id, map[string]interface{}{"tile": tile.Id, "cost": tile.Cost})
		s.broadcast(EventPurchaseSuccess, PurchaseResult{PlayerId: p.Id, TileId: tile.Id, Cost: tile.Cost})
		return nil
	})
}

const ActionSell = "sell"

// UpdateProperty changes a property the player owns. Selling refunds the cost.
func (s *Session) UpdateProperty(ctx context.Context, playerId string, tileId int, action string) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireRunning(playerId)
	if err != nil {
		return err
	}
	if action != ActionSell {
		return fail(CodeInvalidChoice, "unknown property action %q", action)
	}
	tile, err := s.graph.GetById(tileId)
	if err != nil || !p.Owns(tileId) {
		return fail(CodeNotOwner, "you do not own tile %d", tileId)
	}
	if s.moving(p) {
		return fail(CodeBusy, "finish moving first")
	}

	return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.Money += tile.Cost
		p.RemoveProperty(tile.Id)
		s.record("sell", p.Id, map[string]interface{}{"tile": tile.Id, "refund": tile.Cost})
		s.broadcast(EventPropertyUpdated, PropertyUpdated{PlayerId: p.Id, TileId: tile.Id, Action: "sold", Refund: tile.Cost})
		return nil
	})
}

func casinoWins(bet string, total int) (bool, int) {
	switch bet {
	case BetBelow:
		return total < 7, CasinoPayout
	case BetSeven:
		return total == 7, CasinoSevenPayout
	case BetAbove:
		return total > 7, CasinoPayout
	}
	return false, 0
}

// CasinoRoll bets stake on a fresh roll. The stake is taken, a win pays the
// stake times the payout back; a shortfall becomes loan.
func (s *Session) CasinoRoll(ctx context.Context, playerId, bet string, stake int) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireTurn(playerId)
	if err != nil {
		return err
	}
	if !p.HasMoved {
		return fail(CodeNotMoved, "finish moving first")
	}
	here, _ := s.graph.GetById(p.TileId)
	if here.Action != models.ActionCasino {
		return fail(CodeNotOnTile, "you are not at the casino")
	}
	if s.turn.casinoPlayed {
		return fail(CodeAlreadyPlayed, "one bet per visit")
	}
	if _, mult := casinoWins(bet, 0); mult == 0 {
		return fail(CodeInvalidChoice, "unknown bet %q", bet)
	}
	if stake <= 0 || stake > MaxAmount {
		return fail(CodeInvalidAmount, "stake must be between 1 and %d", MaxAmount)
	}
	if overflows(p.Money, stake*CasinoSevenPayout) || overflows(p.Loan, stake) {
		return fail(CodeInvalidAmount, "stake too large for your balance")
	}

	d1, d2 := s.dice()
	total := d1 + d2
	won, mult := casinoWins(bet, total)
	payout := 0
	if won {
		payout = stake * mult
	}
	err = s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.Money += payout - stake
		p.Settle()
		s.record("casino", p.Id, map[string]interface{}{"bet": bet, "stake": stake, "total": total, "payout": payout})
		s.broadcast(EventCasinoResult, CasinoResult{
			PlayerId: p.Id,
			Bet:      bet,
			Stake:    stake,
			Dice:     [2]int{d1, d2},
			Total:    total,
			Won:      won,
			Payout:   payout,
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.turn.casinoPlayed = true
	return nil
}

// BorrowMoney takes a bank loan.
func (s *Session) BorrowMoney(ctx context.Context, playerId string, amount int) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireRunning(playerId)
	if err != nil {
		return err
	}
	if amount < MinBorrow || amount > MaxAmount {
		return fail(CodeInvalidAmount, "borrow between %d and %d", MinBorrow, MaxAmount)
	}
	if overflows(p.Money, amount) || overflows(p.Loan, amount) {
		return fail(CodeInvalidAmount, "loan too large for your balance")
	}
	return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.Money += amount
		p.Loan += amount
		s.record("borrow", p.Id, map[string]interface{}{"amount": amount})
		s.broadcast(EventLoanUpdated, LoanUpdate{PlayerId: p.Id, Kind: "bank", Money: p.Money, Loan: p.Loan})
		return nil
	})
}

// PayoffLoan repays up to amount of the bank loan.
func (s *Session) PayoffLoan(ctx context.Context, playerId string, amount int) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireRunning(playerId)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fail(CodeInvalidAmount, "amount must be positive")
	}
	if p.Loan == 0 {
		return fail(CodeNoLoan, "you have no loan")
	}
	paid := amount
	if paid > p.Loan {
		paid = p.Loan
	}
	if p.Money < paid {
		return fail(CodeInsufficientFunds, "you need %d to pay that off", paid)
	}
	return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		row, err := durable(ctx, tx, p)
		if err != nil {
			return err
		}
		if row.Money < paid {
			return fail(CodeInsufficientFunds, "you need %d to pay that off", paid)
		}
		p.Money -= paid
		p.Loan -= paid
		s.record("payoff", p.Id, map[string]interface{}{"amount": paid})
		s.broadcast(EventLoanUpdated, LoanUpdate{PlayerId: p.Id, Kind: "bank", Money: p.Money, Loan: p.Loan})
		return nil
	})
}
