package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/pkg/clock"
)

// StatsKey 仪表盘统计缓存键
const StatsKey = "dashboard:stats"

// Cache JSON缓存(redis.JSONCache)
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalBooks    int64     `json:"totalBooks"`
	TotalMembers  int64     `json:"totalMembers"` // 不含管理员
	IssuedBooks   int64     `json:"issuedBooks"`
	ReturnedToday int64     `json:"returnedToday"`
	OverdueBooks  int64     `json:"overdueBooks"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// StatsCache 统计缓存,借还后由circulation调用Invalidate
type StatsCache struct {
	cache Cache
}

// NewStatsCache 创建统计缓存
func NewStatsCache(cache Cache) *StatsCache {
	return &StatsCache{cache: cache}
}

// Invalidate 删除统计缓存
func (s *StatsCache) Invalidate(ctx context.Context) error {
	if s == nil || s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, StatsKey)
}

// DashboardStatsUseCase 仪表盘统计
// 先读Redis缓存,未命中或Redis不可用时直接查库;缓存只是加速,不影响正确性
type DashboardStatsUseCase struct {
	books    book.Repository
	users    user.Repository
	txns     transaction.Repository
	cache    Cache
	ttl      time.Duration
	clock    clock.Clock
	location *time.Location
	log      *zap.Logger
}

// NewDashboardStatsUseCase 创建统计用例,loc决定"今天"从几点开始
func NewDashboardStatsUseCase(
	books book.Repository,
	users user.Repository,
	txns transaction.Repository,
	cache Cache,
	ttl time.Duration,
	clk clock.Clock,
	loc *time.Location,
	log *zap.Logger,
) *DashboardStatsUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardStatsUseCase{
		books:    books,
		users:    users,
		txns:     txns,
		cache:    cache,
		ttl:      ttl,
		clock:    clk,
		location: loc,
		log:      log,
	}
}

func (uc *DashboardStatsUseCase) Execute(ctx context.Context) (*DashboardStats, error) {
	// 1. 读缓存
	if uc.cache != nil {
		var cached DashboardStats
		hit, err := uc.cache.Get(ctx, StatsKey, &cached)
		if err != nil {
			uc.log.Warn("读取统计缓存失败,降级查库", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	// 2. 查库
	stats, err := uc.compute(ctx)
	if err != nil {
		return nil, err
	}

	// 3. 回写缓存
	if uc.cache != nil && uc.ttl > 0 {
		if err := uc.cache.Set(ctx, StatsKey, stats, uc.ttl); err != nil {
			uc.log.Warn("写入统计缓存失败", zap.Error(err))
		}
	}
	return stats, nil
}

func (uc *DashboardStatsUseCase) compute(ctx context.Context) (*DashboardStats, error) {
	now := uc.clock.Now()
	midnight := startOfDay(now, uc.location)

	var (
		stats = &DashboardStats{GeneratedAt: now}
		err   error
	)
	if stats.TotalBooks, err = uc.books.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMembers, err = uc.users.CountMembers(ctx); err != nil {
		return nil, err
	}
	if stats.IssuedBooks, err = uc.txns.CountByStatus(ctx, transaction.StatusIssued); err != nil {
		return nil, err
	}
	if stats.ReturnedToday, err = uc.txns.CountReturnedSince(ctx, midnight); err != nil {
		return nil, err
	}
	// 应还日早于今天零点,即按自然日至少逾期一天
	if stats.OverdueBooks, err = uc.txns.CountOverdue(ctx, midnight); err != nil {
		return nil, err
	}
	return stats, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
