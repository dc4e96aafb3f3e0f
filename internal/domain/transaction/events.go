package transaction

import (
	"time"

	"github.com/google/uuid"
)

// 事件路由键
const (
	RoutingKeyIssued   = "book.issued"
	RoutingKeyReturned = "book.returned"
)

// Event 借还事件,借还事务提交后发布
type Event struct {
	EventID    string     `json:"eventId"`
	Type       string     `json:"type"`
	OccurredAt time.Time  `json:"occurredAt"`
	TxnID      uint       `json:"transactionId"`
	TxnNo      string     `json:"txnNo"`
	BookID     uint       `json:"bookId"`
	MemberID   uint       `json:"memberId"`
	OperatorID uint       `json:"operatorId"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Fine       int64      `json:"fine"`
}

// NewIssuedEvent 借出事件
func NewIssuedEvent(t *Transaction, at time.Time) Event {
	return newEvent(RoutingKeyIssued, t, t.IssuedBy, at)
}

// NewReturnedEvent 归还事件
func NewReturnedEvent(t *Transaction, at time.Time) Event {
	return newEvent(RoutingKeyReturned, t, t.ReturnedBy, at)
}

func newEvent(typ string, t *Transaction, operator uint, at time.Time) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       typ,
		OccurredAt: at,
		TxnID:      t.ID,
		TxnNo:      t.TxnNo,
		BookID:     t.BookID,
		MemberID:   t.MemberID,
		OperatorID: operator,
		DueDate:    t.DueDate,
		ReturnDate: t.ReturnDate,
		Fine:       t.Fine,
	}
}
