package transaction

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// NumberGenerator 借阅单号生成器
type NumberGenerator interface {
	Next(at time.Time) (string, error)
}

// ulidGenerator ULID单号:26位,前10位是毫秒时间戳,按时间有序且不可预测
// 同一毫秒内由Monotonic熵源保证单调递增,熵源非并发安全,需要加锁
type ulidGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGenerator 创建ULID单号生成器
func NewULIDGenerator() NumberGenerator {
	return &ulidGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGenerator) Next(at time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at), g.entropy)
	if err != nil {
		return "", ErrTxnNoGenerate
	}
	return id.String(), nil
}
