package server

import (
	"wordfight/game"
	"wordfight/store"
)

// 拆除原因，写入对局结果
const (
	ReasonDisconnect    = "disconnect"
	ReasonMemberMissing = "member missing"
)

func (w *World) connect(ev connectEvent) {
	p, created := w.reg.AddPlayer(ev.client, ev.name)
	if !created {
		Log.Warnw("duplicate connect ignored", "client", ev.client)
		return
	}
	v := newClientView(ev.client, p.ID, ev.conn, ev.codec)
	w.views[ev.client] = v
	w.metrics.AddClients(1)
	w.membershipDirty = true

	w.sendWelcome(v, p)
	Log.Infow("player joined lobby", "client", ev.client, "player", p.ID, "name", p.Name, "codec", ev.codec.Name())
}

// disconnect 先拆除其所在对局（对手回大厅），再移除玩家
func (w *World) disconnect(ev leaveEvent, rep *TickReport) {
	p := w.reg.PlayerByClient(ev.client)
	if p == nil {
		Log.Debugw("leave for unknown client", "client", ev.client, "error", ErrPlayerNotFound)
		return
	}
	if p.InMatch() {
		if m := w.reg.Match(p.Match); m != nil {
			w.teardownMatch(m, ReasonDisconnect, rep)
		}
	}
	w.reg.RemovePlayer(p.ID)
	if v, ok := w.views[ev.client]; ok {
		_ = v.conn.Close()
		delete(w.views, ev.client)
	}
	w.metrics.AddClients(-1)
	w.membershipDirty = true
	Log.Infow("player left", "client", ev.client, "player", p.ID, "reason", ev.reason)
}

func (w *World) spawnMatch(left, right *Player, size int) *Match {
	m := w.reg.AddMatch(&Match{
		RecordID: newRecordID(),
		Players:  [2]EntityID{left.ID, right.ID},
		Arena:    game.NewArena(size),
		Started:  w.now(),
	})
	left.Match, left.Side = m.ID, game.Left
	right.Match, right.Side = m.ID, game.Right
	w.markDirty(left.ID, right.ID, m.ID)
	w.membershipDirty = true
	w.metrics.IncMatchesCreated()
	Log.Infow("match created", "match", m.ID, "left", left.ID, "right", right.ID, "arena_size", size)
	return m
}

// teardownMatch 移除对局与 Arena，仍在线的成员回到大厅（分数保留），并提交结果
func (w *World) teardownMatch(m *Match, reason string, rep *TickReport) {
	var names [2]string
	for _, side := range [2]game.Side{game.Left, game.Right} {
		p := w.reg.Player(m.Member(side))
		if p == nil || p.Match != m.ID {
			continue
		}
		names[side] = p.Name
		p.Match = NoEntity
		p.Side = game.Left
		w.markDirty(p.ID)
	}
	w.reg.RemoveMatch(m.ID)
	w.membershipDirty = true
	w.metrics.IncMatchesDestroyed()
	rep.Destroyed = append(rep.Destroyed, m.ID)

	if w.results != nil {
		ok := w.results.Record(store.MatchResult{
			ID:          m.RecordID.String(),
			ArenaSize:   m.Arena.Size(),
			LeftName:    names[game.Left],
			RightName:   names[game.Right],
			LeftPoints:  m.Points[game.Left],
			RightPoints: m.Points[game.Right],
			Strikes:     m.Strikes,
			Reason:      reason,
			StartedAt:   m.Started,
			EndedAt:     w.now(),
		})
		if !ok {
			Log.Warnw("match result dropped", "match", m.ID, "record", m.RecordID)
		}
	}
	Log.Infow("match destroyed", "match", m.ID, "reason", reason, "strikes", m.Strikes,
		"left_points", m.Points[game.Left], "right_points", m.Points[game.Right])
}

// reapMatches 任一成员缺失或已不指向本对局的对局被拆除
func (w *World) reapMatches(rep *TickReport) {
	for _, m := range w.reg.Matches() {
		present := 0
		for _, id := range m.Players {
			if p := w.reg.Player(id); p != nil && p.Match == m.ID {
				present++
			}
		}
		if present < 2 {
			Log.Warnw("reaping match with missing member", "match", m.ID, "present", present)
			w.teardownMatch(m, ReasonMemberMissing, rep)
		}
	}
}

// resolve 按对局 id 顺序结算；对局之间互不影响
func (w *World) resolve(rep *TickReport) {
	for _, m := range w.reg.Matches() {
		res := m.Arena.Step()
		for _, side := range [2]game.Side{game.Left, game.Right} {
			if res.Changed[side] {
				w.markDirty(m.Member(side))
			}
		}
		if !res.Struck {
			continue
		}
		m.Strikes++
		ev := StrikeEvent{Match: m.ID, Strike: res.Strike}
		if res.Strike.Outcome == game.Point {
			winner := w.reg.Player(m.Member(res.Strike.Winner))
			if winner == nil {
				w.metrics.IncStale()
				Log.Warnw("strike winner missing", "match", m.ID, "side", res.Strike.Winner, "error", ErrPlayerNotFound)
			} else {
				winner.Score++
				m.Points[res.Strike.Winner]++
				ev.Winner = winner.ID
				w.markDirty(winner.ID)
			}
		}
		w.metrics.IncStrike(res.Strike.Outcome == game.Point)
		rep.Strikes = append(rep.Strikes, ev)
		Log.Infow("strike", "match", m.ID, "strike", res.Strike.String(), "tick", rep.Tick)
	}
}
