package circulation_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/librarydesk/internal/application/circulation"
	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
)

func (f *fixture) returnReq(txnID uint) circulation.ReturnBookRequest {
	return circulation.ReturnBookRequest{TransactionID: txnID, ReturnedBy: f.librarian.ID}
}

// 场景B: 逾期3天,罚金30
func TestReturnBook_OverdueFine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	f.clock.Set(day(2024, 1, 1, 10, 0))
	issued, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 10, 0, 0)))
	require.NoError(t, err)

	f.clock.Set(day(2024, 1, 13, 15, 30))
	resp, err := f.ret.Execute(ctx, f.returnReq(issued.ID))
	require.NoError(t, err)

	assert.Equal(t, "returned", resp.Status)
	assert.Equal(t, int64(30), resp.Fine)
	assert.Equal(t, int64(3), resp.DaysOverdue)
	assert.False(t, resp.Overdue)
	require.NotNil(t, resp.ReturnDate)
	assert.True(t, resp.ReturnDate.Equal(day(2024, 1, 13, 15, 30)))
	assert.Equal(t, "百年孤独", resp.BookTitle)
	assert.Equal(t, 1, f.quantity(t, b.ID))

	stored, err := f.txns.FindByID(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), stored.Fine)
	assert.Equal(t, f.librarian.ID, stored.ReturnedBy)

	assert.Equal(t, []string{transaction.RoutingKeyIssued, transaction.RoutingKeyReturned}, f.publisher.published())
	assert.Equal(t, float64(30), testutil.ToFloat64(f.metrics.FinesTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.BooksOnLoan))
}

// 场景C: 应还日当天归还,不罚款
func TestReturnBook_OnDueDateNoFine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	issued, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 10, 0, 0)))
	require.NoError(t, err)

	f.clock.Set(day(2024, 1, 10, 23, 59))
	resp, err := f.ret.Execute(ctx, f.returnReq(issued.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Fine)
}

func TestReturnBook_OneMinutePastMidnightIsOneDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	issued, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 10, 0, 0)))
	require.NoError(t, err)

	f.clock.Set(day(2024, 1, 11, 0, 1))
	resp, err := f.ret.Execute(ctx, f.returnReq(issued.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.Fine)
}

// 场景D: 借阅记录不存在
func TestReturnBook_UnknownTransaction(t *testing.T) {
	f := newFixture(t)

	_, err := f.ret.Execute(context.Background(), f.returnReq(404))
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, f.publisher.published())
}

func TestReturnBook_DoubleReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	issued, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 10, 0, 0)))
	require.NoError(t, err)

	f.clock.Set(day(2024, 1, 12, 9, 0))
	first, err := f.ret.Execute(ctx, f.returnReq(issued.ID))
	require.NoError(t, err)

	// 第二次归还被拒绝,罚金和归还时间保持第一次的值
	f.clock.Set(day(2024, 1, 20, 9, 0))
	_, err = f.ret.Execute(ctx, f.returnReq(issued.ID))
	assert.ErrorIs(t, err, transaction.ErrAlreadyReturned)

	stored, err := f.txns.FindByID(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Fine, stored.Fine)
	assert.True(t, stored.ReturnDate.Equal(*first.ReturnDate))
	assert.Equal(t, 1, f.quantity(t, b.ID))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReturnsTotal.WithLabelValues(metrics.ResultRejected)))
}

// 并发归还同一条记录只有一个成功;sqlite单连接下事务串行,行锁等待不会出现
func TestReturnBook_ConcurrentReturns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	issued, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 10, 0, 0)))
	require.NoError(t, err)

	const workers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ret.Execute(context.Background(), f.returnReq(issued.ID))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, transaction.ErrAlreadyReturned) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 1, f.quantity(t, b.ID))
}

func TestReturnBook_RollbackOnLedgerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	issued, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 10, 0, 0)))
	require.NoError(t, err)

	f.rebuild(t, failingLedger{f.ledger})
	_, err = f.ret.Execute(ctx, f.returnReq(issued.ID))
	require.Error(t, err)

	stored, err := f.txns.FindByID(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusIssued, stored.Status)
	assert.Nil(t, stored.ReturnDate)
	assert.Equal(t, 0, f.quantity(t, b.ID))
}

// 守恒: 任意借还序列后,可借数量 + 借出中记录数 = 初始库存
func TestCirculation_InventoryConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const initial = 3
	b := f.addBook(t, "9787544253994", initial)
	m := f.addMember(t, "s1@lib.cn")

	rng := rand.New(rand.NewSource(42))
	var open []uint
	for step := 0; step < 40; step++ {
		f.clock.Advance(time.Duration(rng.Intn(72)) * time.Hour)

		if rng.Intn(2) == 0 {
			resp, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, f.clock.Now().AddDate(0, 0, 7)))
			if err == nil {
				open = append(open, resp.ID)
			} else {
				require.ErrorIs(t, err, book.ErrOutOfStock)
				require.Len(t, open, initial)
			}
		} else if len(open) > 0 {
			i := rng.Intn(len(open))
			resp, err := f.ret.Execute(ctx, f.returnReq(open[i]))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, resp.Fine, int64(0))
			open = append(open[:i], open[i+1:]...)
		}

		issued, err := f.txns.CountByStatus(ctx, transaction.StatusIssued)
		require.NoError(t, err)
		q := f.quantity(t, b.ID)
		require.GreaterOrEqual(t, q, 0)
		require.Equal(t, initial, q+int(issued))
	}
}
