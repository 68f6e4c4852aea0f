package models

type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	LoanRejected  LoanStatus = "rejected"
)

// Loan is money lent between two players, separate from Player.Loan which is
// owed to the bank.
type Loan struct {
	Id           string     `json:"id"`
	BorrowerId   string     `json:"borrowerId"`
	LenderId     string     `json:"lenderId"`
	Amount       int        `json:"amount"`
	ReturnAmount int        `json:"returnAmount"`
	Status       LoanStatus `json:"status"`
}

type TradeOffer struct {
	Id              string `json:"id"`
	FromId          string `json:"fromId"`
	ToId            string `json:"toId"`
	OfferMoney      int    `json:"offerMoney"`
	OfferProperties []int  `json:"offerProperties"`
	AskMoney        int    `json:"askMoney"`
	AskProperties   []int  `json:"askProperties"`
}
