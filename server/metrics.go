package server

import (
	"sync/atomic"
)

// WorldMetrics 记录运行期的关键指标（用于监控与调试）
type WorldMetrics struct {
	TickCount   int64 // 统计的 Tick 次数
	TotalTickNs int64 // Tick 累计耗时（纳秒）

	ActionsAccepted   int64 // 通过权限校验并写入缓冲的动作
	ActionsOverwrote  int64 // 同一 tick 内被后到动作覆盖的
	Unauthorized      int64 // actor / side 不匹配
	InvalidAppend     int64 // 词典拒绝
	StaleReferences   int64 // MatchNotFound / PlayerNotFound
	RateLimited       int64 // 连接级限流丢弃
	ChanFullDiscarded int64 // 入站通道满被丢弃
	SendDropped       int64 // 出站队列满被丢弃

	Strikes          int64
	Points           int64
	Parries          int64
	MatchesCreated   int64
	MatchesDestroyed int64
	Clients          int64 // 当前连接数
}

func (m *WorldMetrics) IncAccepted()          { atomic.AddInt64(&m.ActionsAccepted, 1) }
func (m *WorldMetrics) IncOverwrote()         { atomic.AddInt64(&m.ActionsOverwrote, 1) }
func (m *WorldMetrics) IncUnauthorized()      { atomic.AddInt64(&m.Unauthorized, 1) }
func (m *WorldMetrics) IncInvalidAppend()     { atomic.AddInt64(&m.InvalidAppend, 1) }
func (m *WorldMetrics) IncStale()             { atomic.AddInt64(&m.StaleReferences, 1) }
func (m *WorldMetrics) IncRateLimited()       { atomic.AddInt64(&m.RateLimited, 1) }
func (m *WorldMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *WorldMetrics) IncSendDropped()       { atomic.AddInt64(&m.SendDropped, 1) }
func (m *WorldMetrics) IncMatchesCreated()    { atomic.AddInt64(&m.MatchesCreated, 1) }
func (m *WorldMetrics) IncMatchesDestroyed()  { atomic.AddInt64(&m.MatchesDestroyed, 1) }
func (m *WorldMetrics) AddClients(n int64)    { atomic.AddInt64(&m.Clients, n) }

// IncStrike point 为 true 表示有人得分，否则为 parry
func (m *WorldMetrics) IncStrike(point bool) {
	atomic.AddInt64(&m.Strikes, 1)
	if point {
		atomic.AddInt64(&m.Points, 1)
	} else {
		atomic.AddInt64(&m.Parries, 1)
	}
}

func (m *WorldMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *WorldMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"avg_tick_ms":         avgMs,
		"actions_accepted":    atomic.LoadInt64(&m.ActionsAccepted),
		"actions_overwrote":   atomic.LoadInt64(&m.ActionsOverwrote),
		"unauthorized":        atomic.LoadInt64(&m.Unauthorized),
		"invalid_append":      atomic.LoadInt64(&m.InvalidAppend),
		"stale_references":    atomic.LoadInt64(&m.StaleReferences),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"send_dropped":        atomic.LoadInt64(&m.SendDropped),
		"strikes":             atomic.LoadInt64(&m.Strikes),
		"points":              atomic.LoadInt64(&m.Points),
		"parries":             atomic.LoadInt64(&m.Parries),
		"matches_created":     atomic.LoadInt64(&m.MatchesCreated),
		"matches_destroyed":   atomic.LoadInt64(&m.MatchesDestroyed),
		"clients":             atomic.LoadInt64(&m.Clients),
	}
}
