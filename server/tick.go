package server

import (
	"context"
	"time"
)

// Run 以 interval 为周期单线程推进世界，直到 ctx 结束；退出时关闭所有连接
func (w *World) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	Log.Infow("world started", "interval", interval, "arena_size", w.ArenaSize())
	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-ticker.C:
			// 核心循环：处理输入 → 结算 → 下发
			rep := w.Tick()
			if len(rep.Spawned) > 0 || len(rep.Destroyed) > 0 {
				Log.Debugw("membership changed", "tick", rep.Tick, "spawned", len(rep.Spawned), "destroyed", len(rep.Destroyed))
			}
		}
	}
}

// shutdown 先关闭 done 放行阻塞中的 Connect / Disconnect，
// 再在锁内标记停止，最后关闭已登记与仍在排队的连接
func (w *World) shutdown() {
	close(w.done)
	w.stopMu.Lock()
	w.stopped = true
	w.stopMu.Unlock()

	for c, v := range w.views {
		_ = v.conn.Close()
		delete(w.views, c)
	}
	for {
		select {
		case ev := <-w.connectCh:
			_ = ev.conn.Close()
		default:
			Log.Infow("world stopped", "tick", w.CurrentTick(), "players", w.reg.NumPlayers(), "matches", w.reg.NumMatches())
			return
		}
	}
}
