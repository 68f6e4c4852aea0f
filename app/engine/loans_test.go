package engine

import (
	"testing"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanLifecycle(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]

	loan, err := f.s.RequestLoan(f.ctx, a, b, 1000, 1200)
	require.NoError(t, err)
	assert.Equal(t, models.LoanPending, loan.Status)
	assert.Equal(t, StartingMoney, f.get(a).Money)

	requireCode(t, CodeNotOwner, f.s.RespondLoan(f.ctx, a, loan.Id, true))
	requireCode(t, CodeInvalidLoanState, f.s.RepayLoan(f.ctx, a, loan.Id))

	require.NoError(t, f.s.RespondLoan(f.ctx, b, loan.Id, true))
	assert.Equal(t, StartingMoney+1000, f.get(a).Money)
	assert.Equal(t, StartingMoney-1000, f.get(b).Money)
	assert.Equal(t, StartingMoney-1000, f.row(b).Money)

	loans := f.s.Loans()
	require.Len(t, loans, 1)
	assert.Equal(t, models.LoanActive, loans[0].Status)
	assert.Len(t, f.s.Snapshot().Loans, 1)

	require.NoError(t, f.s.RepayLoan(f.ctx, a, loan.Id))
	assert.Equal(t, StartingMoney-200, f.get(a).Money)
	assert.Equal(t, StartingMoney+200, f.get(b).Money)
	assert.Equal(t, models.LoanCompleted, f.s.Loans()[0].Status)

	requireCode(t, CodeInvalidLoanState, f.s.RepayLoan(f.ctx, a, loan.Id))
	assert.Len(t, f.rec.named(EventLoanUpdated), 6)
}

func TestLoanRejected(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]

	loan, err := f.s.RequestLoan(f.ctx, a, b, 1000, 1000)
	require.NoError(t, err)
	require.NoError(t, f.s.RespondLoan(f.ctx, b, loan.Id, false))

	assert.Empty(t, f.s.Loans())
	assert.Equal(t, StartingMoney, f.get(a).Money)
	updates := f.rec.named(EventLoanUpdated)
	last := updates[len(updates)-1].payload.(LoanUpdate)
	assert.Equal(t, models.LoanRejected, last.Details.Status)
	requireCode(t, CodeLoanNotFound, f.s.RespondLoan(f.ctx, b, loan.Id, true))
}

func TestLoanValidation(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]

	_, err := f.s.RequestLoan(f.ctx, a, a, 100, 100)
	requireCode(t, CodeNotAllowed, err)
	_, err = f.s.RequestLoan(f.ctx, a, b, 0, 0)
	requireCode(t, CodeInvalidAmount, err)
	_, err = f.s.RequestLoan(f.ctx, a, b, 500, 400)
	requireCode(t, CodeInvalidAmount, err)

	loan, err := f.s.RequestLoan(f.ctx, a, b, 5000, 6000)
	require.NoError(t, err)
	f.set(b, func(p *models.Player) { p.Money = 4000 })
	requireCode(t, CodeInsufficientFunds, f.s.RespondLoan(f.ctx, b, loan.Id, true))
	assert.Equal(t, StartingMoney, f.get(a).Money)
}

func TestLoansArePersistedWithSession(t *testing.T) {
	f := started(t, 2)
	a, b := f.ids[0], f.ids[1]
	stored := func() []models.Loan {
		row, ok := f.store.SessionRow(f.s.Id())
		require.True(t, ok)
		return row.Loans
	}

	loan, err := f.s.RequestLoan(f.ctx, a, b, 1000, 1100)
	require.NoError(t, err)
	require.Len(t, stored(), 1)
	assert.Equal(t, models.LoanPending, stored()[0].Status)

	f.store.FailNextCommits(1)
	requireCode(t, CodeCommitFailed, f.s.RespondLoan(f.ctx, b, loan.Id, true))
	assert.Equal(t, models.LoanPending, f.s.Loans()[0].Status)
	assert.Equal(t, models.LoanPending, stored()[0].Status)

	require.NoError(t, f.s.RespondLoan(f.ctx, b, loan.Id, true))
	assert.Equal(t, models.LoanActive, stored()[0].Status)

	require.NoError(t, f.s.RepayLoan(f.ctx, a, loan.Id))
	assert.Equal(t, models.LoanCompleted, stored()[0].Status)

	rejected, err := f.s.RequestLoan(f.ctx, b, a, 500, 500)
	require.NoError(t, err)
	require.Len(t, stored(), 2)
	require.NoError(t, f.s.RespondLoan(f.ctx, a, rejected.Id, false))
	require.Len(t, stored(), 1)
	assert.Equal(t, loan.Id, stored()[0].Id)
}
