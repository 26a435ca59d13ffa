package server

import (
	"sort"

	"wordfight/protocol"
)

// IDTable 客户端本地 id 与服务端实体 id 的双向映射。
// 实体变为可见时分配，变为不可见时回收；本地 id 单调递增、不复用。
type IDTable struct {
	next     uint32
	toLocal  map[EntityID]uint32
	toServer map[uint32]EntityID
}

func NewIDTable() *IDTable {
	return &IDTable{
		toLocal:  make(map[EntityID]uint32),
		toServer: make(map[uint32]EntityID),
	}
}

// Reveal 为实体分配本地 id，已存在则原样返回
func (t *IDTable) Reveal(id EntityID) uint32 {
	if l, ok := t.toLocal[id]; ok {
		return l
	}
	t.next++
	t.toLocal[id] = t.next
	t.toServer[t.next] = id
	return t.next
}

func (t *IDTable) Hide(id EntityID) {
	if l, ok := t.toLocal[id]; ok {
		delete(t.toServer, l)
		delete(t.toLocal, id)
	}
}

func (t *IDTable) Local(id EntityID) (uint32, bool) {
	l, ok := t.toLocal[id]
	return l, ok
}

func (t *IDTable) Server(local uint32) (EntityID, bool) {
	id, ok := t.toServer[local]
	return id, ok
}

func (t *IDTable) Len() int { return len(t.toLocal) }

// Sync 使映射恰好覆盖 vis 中的可见实体
func (t *IDTable) Sync(vis VisibilitySet) {
	for id := range t.toLocal {
		if !vis[id] {
			t.Hide(id)
		}
	}
	for _, id := range vis.IDs() {
		t.Reveal(id)
	}
}

// clientView 每个连接的复制状态
type clientView struct {
	client  ClientID
	player  EntityID
	conn    Conn
	codec   protocol.Codec
	visible VisibilitySet
	ids     *IDTable
	changed bool
}

func newClientView(client ClientID, player EntityID, conn Conn, codec protocol.Codec) *clientView {
	v := &clientView{
		client:  client,
		player:  player,
		conn:    conn,
		codec:   codec,
		visible: VisibilitySet{player: true},
		ids:     NewIDTable(),
		changed: true,
	}
	v.ids.Reveal(player)
	return v
}

func (w *World) sendWelcome(v *clientView, p *Player) {
	local, _ := v.ids.Local(p.ID)
	w.send(v, protocol.MsgWelcome, protocol.Welcome{
		You:      local,
		Name:     p.Name,
		TickRate: w.tickRate,
		Codec:    v.codec.Name(),
	})
}

// replicate 仅向可见集变化或可见实体有改动的客户端下发状态
func (w *World) replicate() {
	clients := make([]ClientID, 0, len(w.views))
	for c := range w.views {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })

	for _, c := range clients {
		v := w.views[c]
		if !v.changed && !w.touches(v) {
			continue
		}
		st, ok := w.buildState(v)
		if !ok {
			continue
		}
		w.send(v, protocol.MsgState, st)
		v.changed = false
	}
}

func (w *World) touches(v *clientView) bool {
	for id := range w.dirty {
		if v.visible[id] {
			return true
		}
	}
	return false
}

// buildState 只包含该客户端可见的实体，id 全部换成本地 id
func (w *World) buildState(v *clientView) (protocol.State, bool) {
	self := w.reg.Player(v.player)
	if self == nil {
		return protocol.State{}, false
	}
	st := protocol.State{Tick: w.CurrentTick(), You: w.playerView(v, self)}
	if self.InMatch() && v.visible[self.Match] {
		if m := w.reg.Match(self.Match); m != nil {
			local, _ := v.ids.Local(m.ID)
			mv := &protocol.MatchView{ID: local, ArenaSize: m.Arena.Size()}
			if opp := w.reg.Player(m.Member(self.Side.Opposite())); opp != nil && v.visible[opp.ID] {
				mv.Opponent = w.playerView(v, opp)
			}
			st.Match = mv
		}
		return st, true
	}
	for _, p := range w.reg.Players() {
		if p.ID != self.ID && !p.InMatch() && v.visible[p.ID] {
			st.Lobby = append(st.Lobby, w.playerView(v, p))
		}
	}
	return st, true
}

func (w *World) playerView(v *clientView, p *Player) protocol.PlayerView {
	local, _ := v.ids.Local(p.ID)
	pv := protocol.PlayerView{ID: local, Name: p.Name, Score: p.Score}
	if p.InMatch() {
		pv.Side = p.Side.String()
		pv.Word = w.wordOf(p).String()
	}
	return pv
}

func (w *World) send(v *clientView, t string, payload any) {
	b, err := v.codec.Encode(t, payload)
	if err != nil {
		Log.Errorw("encode failed", "client", v.client, "type", t, "error", err)
		return
	}
	if err := v.conn.Send(b); err != nil {
		w.metrics.IncSendDropped()
		Log.Debugw("send dropped", "client", v.client, "type", t, "error", err)
	}
}
