package engine

import (
	"context"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
	uuid "github.com/satori/go.uuid"
)

func (s *Session) loanUpdate(l models.Loan, money map[string]*models.Player) {
	for _, id := range []string{l.BorrowerId, l.LenderId} {
		p := money[id]
		u := LoanUpdate{PlayerId: id, Kind: "player", Details: &l}
		if p != nil {
			u.Money, u.Loan = p.Money, p.Loan
		}
		s.sendTo(id, EventLoanUpdated, u)
	}
}

// RequestLoan asks lender for amount, to be paid back as returnAmount.
func (s *Session) RequestLoan(ctx context.Context, borrowerId, lenderId string, amount, returnAmount int) (models.Loan, error) {
	s.lock()
	defer s.unlock()

	borrower, err := s.requireRunning(borrowerId)
	if err != nil {
		return models.Loan{}, err
	}
	lender, err := s.mustPlayer(lenderId)
	if err != nil {
		return models.Loan{}, err
	}
	if lender == borrower {
		return models.Loan{}, fail(CodeNotAllowed, "you cannot borrow from yourself")
	}
	if amount <= 0 || returnAmount < amount || returnAmount > MaxAmount {
		return models.Loan{}, fail(CodeInvalidAmount, "return amount must be between the amount borrowed and %d", MaxAmount)
	}

	loan := models.Loan{
		Id:           uuid.NewV4().String(),
		BorrowerId:   borrower.Id,
		LenderId:     lender.Id,
		Amount:       amount,
		ReturnAmount: returnAmount,
		Status:       models.LoanPending,
	}
	err = s.apply(ctx, nil, func(tx database.Tx) error {
		s.loans[loan.Id] = &loan
		s.record("loanRequest", borrower.Id, map[string]interface{}{"loan": loan.Id, "lender": lender.Id, "amount": amount, "returnAmount": returnAmount})
		return nil
	})
	if err != nil {
		return models.Loan{}, err
	}
	s.loanUpdate(loan, map[string]*models.Player{borrower.Id: borrower, lender.Id: lender})
	return loan, nil
}

// RespondLoan lets the lender accept or reject a pending request. Accepting
// moves the money immediately.
func (s *Session) RespondLoan(ctx context.Context, lenderId, loanId string, accept bool) error {
	s.lock()
	defer s.unlock()

	lender, err := s.requireRunning(lenderId)
	if err != nil {
		return err
	}
	loan, ok := s.loans[loanId]
	if !ok {
		return fail(CodeLoanNotFound, "no such loan")
	}
	if loan.LenderId != lender.Id {
		return fail(CodeNotOwner, "this loan was not asked of you")
	}
	if loan.Status != models.LoanPending {
		return fail(CodeInvalidLoanState, "loan is %s", loan.Status)
	}
	borrower, err := s.mustPlayer(loan.BorrowerId)
	if err != nil {
		return err
	}

	if !accept {
		err = s.apply(ctx, nil, func(tx database.Tx) error {
			delete(s.loans, loan.Id)
			s.record("loanRejected", lender.Id, map[string]interface{}{"loan": loan.Id})
			return nil
		})
		if err != nil {
			return err
		}
		rejected := *loan
		rejected.Status = models.LoanRejected
		s.loanUpdate(rejected, map[string]*models.Player{borrower.Id: borrower, lender.Id: lender})
		return nil
	}

	if s.moving(lender, borrower) {
		return fail(CodeBusy, "wait until the current move settles")
	}
	if lender.Money < loan.Amount {
		return fail(CodeInsufficientFunds, "you need %d to lend", loan.Amount)
	}
	err = s.apply(ctx, []*models.Player{lender, borrower}, func(tx database.Tx) error {
		row, err := durable(ctx, tx, lender)
		if err != nil {
			return err
		}
		if row.Money < loan.Amount {
			return fail(CodeInsufficientFunds, "you need %d to lend", loan.Amount)
		}
		lender.Money -= loan.Amount
		borrower.Money += loan.Amount
		loan.Status = models.LoanActive
		s.record("loanAccepted", lender.Id, map[string]interface{}{"loan": loan.Id, "amount": loan.Amount})
		return nil
	})
	if err != nil {
		return err
	}
	s.loanUpdate(*loan, map[string]*models.Player{borrower.Id: borrower, lender.Id: lender})
	return nil
}

// RepayLoan pays an active loan back in full.
func (s *Session) RepayLoan(ctx context.Context, borrowerId, loanId string) error {
	s.lock()
	defer s.unlock()

	borrower, err := s.requireRunning(borrowerId)
	if err != nil {
		return err
	}
	loan, ok := s.loans[loanId]
	if !ok {
		return fail(CodeLoanNotFound, "no such loan")
	}
	if loan.BorrowerId != borrower.Id {
		return fail(CodeNotOwner, "this is not your loan")
	}
	if loan.Status != models.LoanActive {
		return fail(CodeInvalidLoanState, "loan is %s", loan.Status)
	}
	lender, err := s.mustPlayer(loan.LenderId)
	if err != nil {
		return err
	}
	if s.moving(lender, borrower) {
		return fail(CodeBusy, "wait until the current move settles")
	}
	if borrower.Money < loan.ReturnAmount {
		return fail(CodeInsufficientFunds, "you need %d to repay", loan.ReturnAmount)
	}
	err = s.apply(ctx, []*models.Player{lender, borrower}, func(tx database.Tx) error {
		row, err := durable(ctx, tx, borrower)
		if err != nil {
			return err
		}
		if row.Money < loan.ReturnAmount {
			return fail(CodeInsufficientFunds, "you need %d to repay", loan.ReturnAmount)
		}
		borrower.Money -= loan.ReturnAmount
		lender.Money += loan.ReturnAmount
		loan.Status = models.LoanCompleted
		s.record("loanRepaid", borrower.Id, map[string]interface{}{"loan": loan.Id, "amount": loan.ReturnAmount})
		return nil
	})
	if err != nil {
		return err
	}
	s.loanUpdate(*loan, map[string]*models.Player{borrower.Id: borrower, lender.Id: lender})
	return nil
}

// Loans lists the interpersonal loans that are not rejected.
func (s *Session) Loans() []models.Loan {
	s.lock()
	defer s.unlock()
	out := make([]models.Loan, 0, len(s.loans))
	for _, l := range s.loans {
		out = append(out, *l)
	}
	return out
}
