package engine

import (
	"testing"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeSwapsMoneyAndProperties(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]
	f.set(a, func(p *models.Player) { p.Properties = []int{4} })
	f.set(b, func(p *models.Player) { p.Properties = []int{9, 10} })

	offer, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{
		ToId:            b,
		OfferMoney:      500,
		OfferProperties: []int{4},
		AskProperties:   []int{9},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, offer.Id)
	assert.Equal(t, a, offer.FromId)
	offers := f.rec.named(EventTradeOffer)
	require.Len(t, offers, 2)
	assert.Equal(t, b, offers[0].to)

	requireCode(t, CodeNotOwner, f.s.RespondTrade(f.ctx, a, offer.Id, true))
	require.NoError(t, f.s.RespondTrade(f.ctx, b, offer.Id, true))

	pa, pb := f.get(a), f.get(b)
	assert.Equal(t, StartingMoney-500, pa.Money)
	assert.Equal(t, []int{9}, pa.Properties)
	assert.Equal(t, StartingMoney+500, pb.Money)
	assert.ElementsMatch(t, []int{10, 4}, pb.Properties)
	assert.Equal(t, []int{9}, f.row(a).Properties)
	assert.Len(t, f.rec.named(EventTradeAccepted), 1)

	requireCode(t, CodeTradeNotFound, f.s.RespondTrade(f.ctx, b, offer.Id, true))
}

func TestTradeInvalidatedBySale(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]
	f.set(a, func(p *models.Player) { p.Properties = []int{4} })

	offer, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{
		ToId:            b,
		OfferProperties: []int{4},
		AskMoney:        1000,
	})
	require.NoError(t, err)
	require.NoError(t, f.s.UpdateProperty(f.ctx, a, 4, ActionSell))
	moneyA := f.get(a).Money

	err = f.s.RespondTrade(f.ctx, b, offer.Id, true)
	requireCode(t, CodeInvalidTrade, err)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ReasonOfferedNotOwned, failure.Message)
	assert.True(t, failure.Reported)

	assert.Equal(t, moneyA, f.get(a).Money)
	assert.Equal(t, StartingMoney, f.get(b).Money)
	assert.Empty(t, f.get(b).Properties)

	rejected := f.rec.named(EventTradeRejected)
	require.Len(t, rejected, 2)
	assert.Equal(t, ReasonOfferedNotOwned, rejected[0].payload.(TradeRejected).Reason)
	requireCode(t, CodeTradeNotFound, f.s.RespondTrade(f.ctx, b, offer.Id, true))
}

func TestTradeRechecksCommittedRows(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]
	f.set(b, func(p *models.Player) { p.Properties = []int{9} })

	offer, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{
		ToId:          b,
		OfferMoney:    2000,
		AskProperties: []int{9},
	})
	require.NoError(t, err)

	stale := f.row(b)
	stale.Properties = nil
	f.store.SetPlayerRow(stale)

	requireCode(t, CodeInvalidTrade, f.s.RespondTrade(f.ctx, b, offer.Id, true))
	assert.Equal(t, StartingMoney, f.get(a).Money)
	assert.Equal(t, []int{9}, f.get(b).Properties)
}

func TestTradeDeclined(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]

	offer, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b, OfferMoney: 100})
	require.NoError(t, err)
	require.NoError(t, f.s.RespondTrade(f.ctx, b, offer.Id, false))

	rejected := f.rec.named(EventTradeRejected)
	require.Len(t, rejected, 2)
	assert.Equal(t, ReasonDeclined, rejected[0].payload.(TradeRejected).Reason)
	assert.Equal(t, StartingMoney, f.get(a).Money)
	assert.Empty(t, f.s.Offers(a))
}

func TestTradeProposalValidation(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]

	_, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: a, OfferMoney: 1})
	requireCode(t, CodeNotAllowed, err)
	_, err = f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b})
	requireCode(t, CodeInvalidTrade, err)
	_, err = f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b, OfferMoney: -5})
	requireCode(t, CodeInvalidTrade, err)
	_, err = f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b, OfferProperties: []int{4}})
	requireCode(t, CodeInvalidTrade, err)
	_, err = f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b, OfferMoney: StartingMoney + 1})
	requireCode(t, CodeInvalidTrade, err)
	_, err = f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: "nobody", OfferMoney: 1})
	requireCode(t, CodeNotInGame, err)
}

func TestTradeCancelledWhenPartyQuits(t *testing.T) {
	f := started(t, 3)
	a, b := f.ids[0], f.ids[1]

	offer, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b, OfferMoney: 100})
	require.NoError(t, err)
	require.NoError(t, f.s.Quit(f.ctx, a))

	rejected := f.rec.named(EventTradeRejected)
	require.Len(t, rejected, 2)
	assert.Equal(t, ReasonPlayerLeft, rejected[0].payload.(TradeRejected).Reason)
	requireCode(t, CodeTradeNotFound, f.s.RespondTrade(f.ctx, b, offer.Id, true))
}

func TestTradeSurvivesFailedCommit(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]

	offer, err := f.s.ProposeTrade(f.ctx, a, models.TradeOffer{ToId: b, OfferMoney: 300})
	require.NoError(t, err)

	f.store.FailNextCommits(1)
	requireCode(t, CodeCommitFailed, f.s.RespondTrade(f.ctx, b, offer.Id, true))
	assert.Empty(t, f.rec.named(EventTradeRejected))
	assert.Empty(t, f.rec.named(EventTradeAccepted))
	require.Len(t, f.s.Offers(b), 1)
	assert.Equal(t, StartingMoney, f.get(a).Money)

	require.NoError(t, f.s.RespondTrade(f.ctx, b, offer.Id, true))
	assert.Equal(t, StartingMoney-300, f.get(a).Money)
	assert.Equal(t, StartingMoney+300, f.get(b).Money)
	assert.Len(t, f.rec.named(EventTradeAccepted), 1)
	assert.Empty(t, f.s.Offers(b))
}
