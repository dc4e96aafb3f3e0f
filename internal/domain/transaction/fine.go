package transaction

import "time"

// DefaultFinePerDay 每逾期一天的罚金
const DefaultFinePerDay int64 = 10

// FinePolicy 逾期罚金规则
// 按自然日计费:应还日与归还日都先截断到当天零点再比较,
// 归还当天晚于应还日的每一天计一次PerDay,不封顶,无宽限期。
type FinePolicy struct {
	PerDay   int64
	Location *time.Location // 自然日的划分时区,nil时使用应还日期自带的时区
}

// DefaultFinePolicy 默认规则:每天10,按应还日期所在时区划分自然日
var DefaultFinePolicy = FinePolicy{PerDay: DefaultFinePerDay}

// Calculate 计算罚金,纯函数
func (p FinePolicy) Calculate(due, returned time.Time) int64 {
	days := p.DaysLate(due, returned)
	if days <= 0 {
		return 0
	}
	return days * p.PerDay
}

// DaysLate 归还日晚于应还日的自然日天数,按时或提前归还返回0
func (p FinePolicy) DaysLate(due, returned time.Time) int64 {
	loc := p.Location
	if loc == nil {
		loc = due.Location()
	}

	d := civilDate(due, loc)
	r := civilDate(returned, loc)
	if !r.After(d) {
		return 0
	}
	// 两端都是UTC零点,相减恰为整天数,不受夏令时影响
	return int64(r.Sub(d) / (24 * time.Hour))
}

// CalculateFine 使用默认规则计算罚金
func CalculateFine(due, returned time.Time) int64 {
	return DefaultFinePolicy.Calculate(due, returned)
}

// civilDate 取t在loc中的日历日期,以UTC零点表示
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
