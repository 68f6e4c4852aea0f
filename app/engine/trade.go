package engine

import (
	"context"
	"errors"
	"time"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
	uuid "github.com/satori/go.uuid"
)

type offer struct {
	models.TradeOffer
	timer *time.Timer
}

// Reasons a trade is refused at acceptance time.
const (
	ReasonDeclined           = "declined"
	ReasonExpired            = "expired"
	ReasonPlayerLeft         = "playerLeft"
	ReasonOfferedNotOwned    = "offeredPropertyNotOwned"
	ReasonAskedNotOwned      = "askedPropertyNotOwned"
	ReasonOfferorCannotPay   = "offerorInsufficientFunds"
	ReasonRecipientCannotPay = "recipientInsufficientFunds"
	ReasonDuplicateProperty  = "duplicateProperty"
	ReasonNegativeMoney      = "negativeMoney"
	ReasonEmptyTrade         = "emptyTrade"
)

// tradeProblem checks o against the given versions of both parties. It returns
// "" when the trade can settle.
func tradeProblem(o models.TradeOffer, from, to *models.Player) string {
	for _, id := range o.OfferProperties {
		if !from.Owns(id) {
			return ReasonOfferedNotOwned
		}
	}
	for _, id := range o.AskProperties {
		if !to.Owns(id) {
			return ReasonAskedNotOwned
		}
	}
	if from.Money < o.OfferMoney {
		return ReasonOfferorCannotPay
	}
	if to.Money < o.AskMoney {
		return ReasonRecipientCannotPay
	}
	return ""
}

func shapeProblem(o models.TradeOffer) string {
	if o.OfferMoney < 0 || o.AskMoney < 0 {
		return ReasonNegativeMoney
	}
	if o.OfferMoney == 0 && o.AskMoney == 0 && len(o.OfferProperties) == 0 && len(o.AskProperties) == 0 {
		return ReasonEmptyTrade
	}
	seen := make(map[int]bool)
	for _, id := range append(append([]int(nil), o.OfferProperties...), o.AskProperties...) {
		if seen[id] {
			return ReasonDuplicateProperty
		}
		seen[id] = true
	}
	return ""
}

// ProposeTrade records an offer from fromId and forwards it to o.ToId.
// Trades can be proposed at any time, not only on your turn.
func (s *Session) ProposeTrade(ctx context.Context, fromId string, o models.TradeOffer) (models.TradeOffer, error) {
	s.lock()
	defer s.unlock()

	from, err := s.requireRunning(fromId)
	if err != nil {
		return models.TradeOffer{}, err
	}
	to, err := s.mustPlayer(o.ToId)
	if err != nil {
		return models.TradeOffer{}, err
	}
	if to == from {
		return models.TradeOffer{}, fail(CodeNotAllowed, "you cannot trade with yourself")
	}
	if reason := shapeProblem(o); reason != "" {
		return models.TradeOffer{}, fail(CodeInvalidTrade, "%s", reason)
	}
	if reason := tradeProblem(o, from, to); reason != "" {
		return models.TradeOffer{}, fail(CodeInvalidTrade, "%s", reason)
	}

	o.Id = uuid.NewV4().String()
	o.FromId = from.Id
	err = s.apply(ctx, nil, func(tx database.Tx) error {
		s.record("tradeRequest", from.Id, map[string]interface{}{"offer": o.Id, "to": to.Id})
		return nil
	})
	if err != nil {
		return models.TradeOffer{}, err
	}
	pending := &offer{TradeOffer: o}
	s.offers[o.Id] = pending
	if s.timeout > 0 {
		pending.timer = time.AfterFunc(s.timeout, func() { s.expireOffer(o.Id) })
	}
	s.sendTo(to.Id, EventTradeOffer, o)
	s.sendTo(from.Id, EventTradeOffer, o)
	return o, nil
}

// RespondTrade settles or declines an offer. Ownership and funds are checked
// against the committed rows of both parties at this moment, not when the
// offer was made.
func (s *Session) RespondTrade(ctx context.Context, toId, offerId string, accept bool) error {
	s.lock()
	defer s.unlock()

	to, err := s.requireRunning(toId)
	if err != nil {
		return err
	}
	o, ok := s.offers[offerId]
	if !ok {
		return fail(CodeTradeNotFound, "no such offer")
	}
	if o.ToId != to.Id {
		return fail(CodeNotOwner, "this offer was not made to you")
	}
	from, err := s.mustPlayer(o.FromId)
	if err != nil {
		return err
	}

	if !accept {
		err = s.apply(ctx, nil, func(tx database.Tx) error {
			s.record("tradeDeclined", to.Id, map[string]interface{}{"offer": o.Id})
			return nil
		})
		if err != nil {
			return err
		}
		s.dropOffer(o, CodeInvalidTrade, ReasonDeclined)
		return nil
	}

	if s.moving(from, to) {
		return fail(CodeBusy, "wait until the current move settles")
	}
	err = s.apply(ctx, []*models.Player{from, to}, func(tx database.Tx) error {
		if reason := tradeProblem(o.TradeOffer, from, to); reason != "" {
			return fail(CodeInvalidTrade, "%s", reason)
		}
		fromRow, err := durable(ctx, tx, from)
		if err != nil {
			return err
		}
		toRow, err := durable(ctx, tx, to)
		if err != nil {
			return err
		}
		if reason := tradeProblem(o.TradeOffer, fromRow, toRow); reason != "" {
			return fail(CodeInvalidTrade, "%s", reason)
		}

		from.Money += o.AskMoney - o.OfferMoney
		to.Money += o.OfferMoney - o.AskMoney
		for _, id := range o.OfferProperties {
			from.RemoveProperty(id)
			to.AddProperty(id)
		}
		for _, id := range o.AskProperties {
			to.RemoveProperty(id)
			from.AddProperty(id)
		}
		s.record("tradeAccepted", to.Id, map[string]interface{}{"offer": o.Id, "from": from.Id})
		s.broadcast(EventTradeAccepted, o.TradeOffer)
		return nil
	})
	if err != nil {
		// Only a stale offer is withdrawn. A failed commit leaves it open.
		var f *Failure
		if errors.As(err, &f) && f.Code == CodeInvalidTrade {
			s.dropOffer(o, f.Code, f.Message)
			f.Reported = true
			return f
		}
		return err
	}
	s.dropOffer(o, "", "")
	return nil
}

// dropOffer forgets an offer, telling both sides why when code is set.
func (s *Session) dropOffer(o *offer, code, reason string) {
	if o.timer != nil {
		o.timer.Stop()
	}
	delete(s.offers, o.Id)
	if code == "" {
		return
	}
	msg := TradeRejected{OfferId: o.Id, Code: code, Reason: reason}
	s.sendTo(o.FromId, EventTradeRejected, msg)
	s.sendTo(o.ToId, EventTradeRejected, msg)
}

func (s *Session) expireOffer(id string) {
	s.lock()
	defer s.unlock()
	if o, ok := s.offers[id]; ok {
		s.log.WithField("offer", id).Info("trade offer expired")
		s.dropOffer(o, CodeInvalidTrade, ReasonExpired)
	}
}

// Offers lists open trade offers involving playerId.
func (s *Session) Offers(playerId string) []models.TradeOffer {
	s.lock()
	defer s.unlock()
	var out []models.TradeOffer
	for _, o := range s.offers {
		if o.FromId == playerId || o.ToId == playerId {
			out = append(out, o.TradeOffer)
		}
	}
	return out
}
