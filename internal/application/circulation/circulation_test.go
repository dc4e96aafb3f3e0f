package circulation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/librarydesk/internal/application/circulation"
	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb/rdbtest"
	"github.com/xiebiao/librarydesk/pkg/clock"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []transaction.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, event.(transaction.Event))
	return p.err
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

type fixture struct {
	db        *gorm.DB
	clock     *clock.Fake
	books     book.Repository
	ledger    book.Ledger
	txns      transaction.Repository
	users     user.Repository
	publisher *recordingPublisher
	stats     *countingInvalidator
	metrics   *metrics.Metrics
	issue     *circulation.IssueBookUseCase
	ret       *circulation.ReturnBookUseCase
	librarian *user.User
}

var policy = transaction.FinePolicy{PerDay: 10, Location: time.UTC}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := rdbtest.New(t)
	f := &fixture{
		db:        db,
		clock:     clock.NewFake(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		books:     rdb.NewBookRepository(db),
		ledger:    rdb.NewInventoryLedger(db),
		txns:      rdb.NewTransactionRepository(db),
		users:     rdb.NewUserRepository(db),
		publisher: &recordingPublisher{},
		stats:     &countingInvalidator{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	f.rebuild(t, f.ledger)

	f.librarian = user.NewUser("馆员", "librarian@lib.cn", "hash", user.RoleLibrarian)
	require.NoError(t, f.users.Create(context.Background(), f.librarian))
	return f
}

// rebuild 用指定的台账重建用例(测试回滚时注入会失败的台账)
func (f *fixture) rebuild(t *testing.T, ledger book.Ledger) {
	t.Helper()
	tx := rdb.NewTxManager(f.db)
	log := zap.NewNop()
	f.issue = circulation.NewIssueBookUseCase(tx, f.books, ledger, f.txns, f.users,
		transaction.NewULIDGenerator(), f.clock, policy, f.publisher, f.stats, f.metrics, log)
	f.ret = circulation.NewReturnBookUseCase(tx, ledger, f.txns, f.clock, policy, f.publisher, f.stats, f.metrics, log)
}

func (f *fixture) addBook(t *testing.T, isbn string, quantity int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "百年孤独", "马尔克斯", "小说", quantity, "南海出版公司", "", f.librarian.ID)
	require.NoError(t, f.books.Create(context.Background(), b))
	return b
}

func (f *fixture) addMember(t *testing.T, email string) *user.User {
	t.Helper()
	u := user.NewUser("学生"+email[:2], email, "hash", user.RoleStudent)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) quantity(t *testing.T, bookID uint) int {
	t.Helper()
	n, err := f.ledger.Available(context.Background(), bookID)
	require.NoError(t, err)
	return n
}

func (f *fixture) issueReq(bookID, memberID uint, due time.Time) circulation.IssueBookRequest {
	return circulation.IssueBookRequest{BookID: bookID, MemberID: memberID, DueDate: due, IssuedBy: f.librarian.ID}
}

func day(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestIssueBook_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "9787544253994", 2)
	m := f.addMember(t, "s1@lib.cn")

	resp, err := f.issue.Execute(ctx, f.issueReq(b.ID, m.ID, day(2024, 1, 15, 0, 0)))
	require.NoError(t, err)

	assert.Equal(t, "issued", resp.Status)
	assert.Len(t, resp.TxnNo, 26)
	assert.Equal(t, "百年孤独", resp.BookTitle)
	assert.Equal(t, m.Email, resp.MemberEmail)
	assert.Equal(t, int64(0), resp.Fine)
	assert.True(t, resp.IssueDate.Equal(f.clock.Now()))
	assert.Equal(t, 1, f.quantity(t, b.ID))

	assert.Equal(t, []string{transaction.RoutingKeyIssued}, f.publisher.published())
	assert.Equal(t, 1, f.stats.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.IssuesTotal.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.BooksOnLoan))
}

// 场景A: 最后一本书被并发借出,只有一个成功
// rdbtest是单连接sqlite,事务在连接池上整体串行,FOR UPDATE不会真正发生争用;
// 这里覆盖的是事务边界和条件UPDATE。行锁争用需要在MySQL/Postgres上验证
func TestIssueBook_ConcurrentLastCopy(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "9787544253994", 1)

	const workers = 8
	members := make([]*user.User, workers)
	for i := range members {
		members[i] = f.addMember(t, string(rune('a'+i))+"x@lib.cn")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		outOfStk  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(m *user.User) {
			defer wg.Done()
			_, err := f.issue.Execute(context.Background(), f.issueReq(b.ID, m.ID, day(2024, 1, 15, 0, 0)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, book.ErrOutOfStock):
				outOfStk++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(members[i])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, outOfStk)
	assert.Equal(t, 0, f.quantity(t, b.ID))

	issued, err := f.txns.CountByStatus(context.Background(), transaction.StatusIssued)
	require.NoError(t, err)
	assert.Equal(t, int64(1), issued)
	assert.Equal(t, float64(workers-1), testutil.ToFloat64(f.metrics.IssuesTotal.WithLabelValues(metrics.ResultRejected)))
}

func TestIssueBook_OutOfStock(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "9787544253994", 0)
	m := f.addMember(t, "s1@lib.cn")

	_, err := f.issue.Execute(context.Background(), f.issueReq(b.ID, m.ID, day(2024, 1, 15, 0, 0)))
	assert.ErrorIs(t, err, book.ErrOutOfStock)
	assert.Empty(t, f.publisher.published())
	assert.Equal(t, 0, f.stats.calls)
}

// 场景D: 图书不存在,不产生借阅记录
func TestIssueBook_UnknownBook(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "s1@lib.cn")

	_, err := f.issue.Execute(context.Background(), f.issueReq(404, m.ID, day(2024, 1, 15, 0, 0)))
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	_, total, err := f.txns.List(context.Background(), transaction.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIssueBook_UnknownMember(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "9787544253994", 1)

	_, err := f.issue.Execute(context.Background(), f.issueReq(b.ID, 404, day(2024, 1, 15, 0, 0)))
	assert.ErrorIs(t, err, circulation.ErrMemberNotFound)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 1, f.quantity(t, b.ID))
}

func TestIssueBook_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	_, err := f.issue.Execute(context.Background(), f.issueReq(b.ID, m.ID, time.Time{}))
	assert.ErrorIs(t, err, transaction.ErrInvalidDueDate)

	_, err = f.issue.Execute(context.Background(), f.issueReq(0, m.ID, day(2024, 1, 15, 0, 0)))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestIssueBook_PublishFailureDoesNotRollback(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker unreachable")
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")

	_, err := f.issue.Execute(context.Background(), f.issueReq(b.ID, m.ID, day(2024, 1, 15, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, 0, f.quantity(t, b.ID))
}

// failingLedger 扣减时失败,验证借阅记录随事务回滚
type failingLedger struct {
	book.Ledger
}

func (failingLedger) Decrement(context.Context, uint) error {
	return apperrors.WrapDB(errors.New("lock wait timeout"), "更新库存失败")
}

func (failingLedger) Increment(context.Context, uint) error {
	return apperrors.WrapDB(errors.New("lock wait timeout"), "更新库存失败")
}

func TestIssueBook_RollbackOnLedgerFailure(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "9787544253994", 1)
	m := f.addMember(t, "s1@lib.cn")
	f.rebuild(t, failingLedger{f.ledger})

	_, err := f.issue.Execute(context.Background(), f.issueReq(b.ID, m.ID, day(2024, 1, 15, 0, 0)))
	require.Error(t, err)
	assert.True(t, apperrors.IsInfrastructure(err))

	_, total, err := f.txns.List(context.Background(), transaction.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1, f.quantity(t, b.ID))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.IssuesTotal.WithLabelValues(metrics.ResultError)))
}
