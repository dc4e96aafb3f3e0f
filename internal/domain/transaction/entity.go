package transaction

import (
	"time"
)

// Status 借阅状态
// 只有一条合法转换: issued → returned,returned是终态
type Status string

const (
	StatusIssued   Status = "issued"   // 借出中
	StatusReturned Status = "returned" // 已归还
)

// IsValid 是否为已知状态
func (s Status) IsValid() bool {
	return s == StatusIssued || s == StatusReturned
}

// Transaction 借阅记录(聚合根)
// 1. 只能由借出操作通过NewTransaction创建
// 2. 只能由归还操作通过MarkReturned修改(ReturnDate、Status、Fine、ReturnedBy)
// 3. 不删除,作为审计记录保留
type Transaction struct {
	ID         uint
	TxnNo      string // 借阅单号(ULID,全局唯一且按时间有序)
	BookID     uint
	MemberID   uint
	IssueDate  time.Time
	DueDate    time.Time
	ReturnDate *time.Time // 未归还时为nil
	Status     Status
	Fine       int64 // 借出中恒为0,归还时计算后冻结
	IssuedBy   uint  // 经办借出的馆员
	ReturnedBy uint  // 经办归还的馆员,未归还时为0
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTransaction 创建借出记录(工厂方法)
func NewTransaction(txnNo string, bookID, memberID, issuedBy uint, issueDate, dueDate time.Time) (*Transaction, error) {
	if dueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	return &Transaction{
		TxnNo:     txnNo,
		BookID:    bookID,
		MemberID:  memberID,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Status:    StatusIssued,
		Fine:      0,
		IssuedBy:  issuedBy,
		CreatedAt: issueDate,
		UpdatedAt: issueDate,
	}, nil
}

// IsReturned 是否已归还
func (t *Transaction) IsReturned() bool {
	return t.Status == StatusReturned
}

// MarkReturned 归还(领域行为)
// 已归还时返回ErrAlreadyReturned且不修改任何字段
func (t *Transaction) MarkReturned(at time.Time, fine int64, returnedBy uint) error {
	if t.IsReturned() {
		return ErrAlreadyReturned
	}
	if fine < 0 {
		fine = 0
	}

	returnDate := at
	t.ReturnDate = &returnDate
	t.Status = StatusReturned
	t.Fine = fine
	t.ReturnedBy = returnedBy
	t.UpdatedAt = at
	return nil
}

// IsOverdue 借出中且已过应还日(按自然日判断)
func (t *Transaction) IsOverdue(policy FinePolicy, now time.Time) bool {
	return !t.IsReturned() && policy.DaysLate(t.DueDate, now) > 0
}

// DaysOverdue 逾期天数,已归还时按归还日计算
func (t *Transaction) DaysOverdue(policy FinePolicy, now time.Time) int64 {
	if t.IsReturned() && t.ReturnDate != nil {
		return policy.DaysLate(t.DueDate, *t.ReturnDate)
	}
	return policy.DaysLate(t.DueDate, now)
}

// AccruedFine 截至now的罚金
// 已归还返回冻结的Fine;借出中返回若此刻归还应缴的金额,只用于展示,不落库
func (t *Transaction) AccruedFine(policy FinePolicy, now time.Time) int64 {
	if t.IsReturned() {
		return t.Fine
	}
	return policy.Calculate(t.DueDate, now)
}

// IsBorrowedBy 是否为该会员的借阅
func (t *Transaction) IsBorrowedBy(memberID uint) bool {
	return t.MemberID == memberID
}
