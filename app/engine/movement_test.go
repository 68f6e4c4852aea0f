package engine

import (
	"testing"
	"time"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTile(t *testing.T) {
	branch := []models.Edge{
		{Roll: models.RollBelow7, To: 9},
		{Roll: models.RollAbove7, To: 33},
	}
	tests := []struct {
		name    string
		edges   []models.Edge
		total   int
		dest    int
		options []int
	}{
		{"any wins", []models.Edge{{Roll: models.RollBelow7, To: 3}, {Roll: models.RollAny, To: 4}}, 2, 4, nil},
		{"below", branch, 6, 9, nil},
		{"above", branch, 8, 33, nil},
		{"seven is ambiguous", branch, 7, 0, []int{9, 33}},
		{"seven with one conditional exit", []models.Edge{{Roll: models.RollBelow7, To: 9}}, 7, 9, nil},
		{"no matching class falls back to first", []models.Edge{{Roll: models.RollAbove7, To: 33}}, 3, 33, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, options, err := NextTile(tt.edges, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.dest, dest)
			assert.Equal(t, tt.options, options)
		})
	}

	_, _, err := NextTile(nil, 4)
	assert.Equal(t, errStuck, err)
}

func TestRollWalksExactlyTotalSteps(t *testing.T) {
	want := map[int]int{2: 3, 3: 4, 4: 5, 5: 6, 6: 7, 7: 8, 8: 33, 9: 34, 10: 35, 11: 36, 12: 37}
	for total := 2; total <= 12; total++ {
		f := started(t, 2)
		a := total / 2
		f.rollTo(f.ids[0], a, total-a)

		p := f.get(f.ids[0])
		assert.Equal(t, want[total], p.TileId, "total %d", total)
		assert.True(t, p.HasMoved, "total %d", total)
		assert.Len(t, f.rec.named(EventPlayerMoved), total, "total %d", total)
		assert.Len(t, f.rec.named(EventMovementDone), 1)
		assert.Equal(t, PhaseMoved, f.s.Phase())
	}
}

func TestBranchSuspendsAndResumes(t *testing.T) {
	f := started(t, 2)
	me := f.ids[0]
	f.place(me, 5, 4)
	f.rollTo(me, 3, 4)

	p := f.get(me)
	assert.Equal(t, 8, p.TileId)
	assert.False(t, p.HasMoved)
	assert.Equal(t, PhaseMoving, f.s.Phase())

	prompts := f.rec.named(EventBranchChoices)
	require.Len(t, prompts, 1)
	assert.Equal(t, me, prompts[0].to)
	choices := prompts[0].payload.(BranchChoices)
	assert.Equal(t, 4, choices.Remaining)
	require.Len(t, choices.Options, 2)
	assert.Equal(t, 9, choices.Options[0].TileId)
	assert.Equal(t, 33, choices.Options[1].TileId)

	snap := f.s.Snapshot()
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, []int{9, 33}, snap.Pending[0].Options)

	requireCode(t, CodePendingDecision, f.s.EndTurn(f.ctx, me))
	requireCode(t, CodeInvalidChoice, f.s.BranchChoice(f.ctx, me, 2))
	requireCode(t, CodeNoPendingDecision, f.s.BranchChoice(f.ctx, f.ids[1], 0))

	require.NoError(t, f.s.BranchChoice(f.ctx, me, 1))
	p = f.get(me)
	assert.Equal(t, 36, p.TileId)
	assert.True(t, p.HasMoved)
	assert.Len(t, f.rec.named(EventPlayerMoved), 7)
	assert.Empty(t, f.s.Snapshot().Pending)

	require.NoError(t, f.s.EndTurn(f.ctx, me))
	assert.Equal(t, f.ids[1], f.s.CurrentPlayerId())
}

func TestStartBonusOncePerRoll(t *testing.T) {
	f := started(t, 2)
	me := f.ids[0]
	f.place(me, 30, 29)
	f.rollTo(me, 3, 3)

	p := f.get(me)
	assert.Equal(t, 4, p.TileId)
	assert.Equal(t, StartingMoney+StartBonus, p.Money)
	assert.Len(t, f.rec.named(EventStartBonus), 1)
	assert.Equal(t, p.Money, f.row(me).Money)
}

func TestStartBonusWhileIndebted(t *testing.T) {
	f := started(t, 2)
	me := f.ids[0]
	f.set(me, func(p *models.Player) {
		p.TileId, p.PrevTile, p.Loan = 31, 30, 700
	})
	f.rollTo(me, 1, 1)

	p := f.get(me)
	assert.Equal(t, 1, p.TileId)
	assert.Equal(t, StartingMoney+StartBonusIndebted, p.Money)
	assert.Equal(t, 700, p.Loan)
}

func TestCorridorFollowsArrivalDirection(t *testing.T) {
	f := started(t, 2)
	me := f.ids[0]
	f.place(me, 45, 46)
	f.rollTo(me, 1, 1)
	assert.Equal(t, 13, f.get(me).TileId)
	require.NoError(t, f.s.EndTurn(f.ctx, me))

	other := f.ids[1]
	f.place(other, 45, 12)
	f.rollTo(other, 1, 1)
	assert.Equal(t, 26, f.get(other).TileId)
}

func TestStuckMovementRollsBack(t *testing.T) {
	g, err := board.New(models.Board{
		StartTile: 1,
		LastTile:  2,
		Tiles: []models.Tile{
			{Id: 1, Name: "Start", Kind: models.TileEvent, Action: models.ActionStart, Edges: []models.Edge{{Roll: models.RollAny, To: 2}}},
			{Id: 2, Name: "Dead End", Kind: models.TileEvent, Action: models.ActionPark, Edges: []models.Edge{{From: 3, Roll: models.RollAny, To: 1}}},
			{Id: 3, Name: "Loop", Kind: models.TileEvent, Action: models.ActionPark, Edges: []models.Edge{{Roll: models.RollAny, To: 2}}},
		},
	})
	require.NoError(t, err)
	f := newFixtureOn(t, g, 2)
	f.start()
	me := f.ids[0]

	f.dice.push(1, 2)
	requireCode(t, CodeStuck, f.s.RollDice(f.ctx, me))

	p := f.get(me)
	assert.Equal(t, 1, p.TileId)
	assert.False(t, p.HasRolled)
	assert.Empty(t, f.rec.named(EventDiceResult))
}

func TestBranchDecisionTimesOut(t *testing.T) {
	f := started(t, 2, WithDecisionTimeout(20*time.Millisecond))
	me := f.ids[0]
	f.place(me, 5, 4)
	f.rollTo(me, 3, 4)

	require.Eventually(t, func() bool {
		return f.get(me).HasMoved
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 12, f.get(me).TileId)
}

func TestTeleport(t *testing.T) {
	f := started(t, 2)
	me, owner := f.ids[0], f.ids[1]
	f.set(owner, func(p *models.Player) { p.Properties = []int{36} })
	f.place(me, 19, 18)

	requireCode(t, CodeNotMoved, f.s.Teleport(f.ctx, me, 36))
	f.rollTo(me, 1, 1)
	require.Equal(t, 21, f.get(me).TileId)

	requireCode(t, CodeInvalidChoice, f.s.Teleport(f.ctx, me, 99))
	require.NoError(t, f.s.Teleport(f.ctx, me, 36))

	p := f.get(me)
	assert.Equal(t, 36, p.TileId)
	assert.Equal(t, 0, p.PrevTile)
	assert.Equal(t, StartingMoney-1000, p.Money)
	assert.Equal(t, StartingMoney+1000, f.get(owner).Money)
	assert.Empty(t, f.rec.named(EventStartBonus))

	requireCode(t, CodeNotOnTile, f.s.Teleport(f.ctx, me, 5))
}
