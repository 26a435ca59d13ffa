package server

import "sort"

// Registry 玩家与对局的实体表，以稳定 id 索引。
// Player -> Match 与 Match -> Players 是两份独立的查找，由生命周期逻辑保持一致。
// 只在 Tick 线程中访问。
type Registry struct {
	nextID   EntityID
	players  map[EntityID]*Player
	byClient map[ClientID]EntityID
	matches  map[EntityID]*Match
}

func NewRegistry() *Registry {
	return &Registry{
		players:  make(map[EntityID]*Player),
		byClient: make(map[ClientID]EntityID),
		matches:  make(map[EntityID]*Match),
	}
}

func (r *Registry) allocID() EntityID {
	r.nextID++
	return r.nextID
}

// AddPlayer 为连接创建大厅中的玩家；同一连接重复加入返回已有玩家
func (r *Registry) AddPlayer(client ClientID, name string) (*Player, bool) {
	if id, ok := r.byClient[client]; ok {
		return r.players[id], false
	}
	p := &Player{ID: r.allocID(), Client: client, Name: name}
	r.players[p.ID] = p
	r.byClient[client] = p.ID
	return p, true
}

func (r *Registry) RemovePlayer(id EntityID) {
	if p, ok := r.players[id]; ok {
		delete(r.byClient, p.Client)
		delete(r.players, id)
	}
}

func (r *Registry) Player(id EntityID) *Player { return r.players[id] }

func (r *Registry) PlayerByClient(client ClientID) *Player {
	id, ok := r.byClient[client]
	if !ok {
		return nil
	}
	return r.players[id]
}

// AddMatch 分配 id 并登记
func (r *Registry) AddMatch(m *Match) *Match {
	m.ID = r.allocID()
	r.matches[m.ID] = m
	return m
}

func (r *Registry) RemoveMatch(id EntityID) { delete(r.matches, id) }

func (r *Registry) Match(id EntityID) *Match { return r.matches[id] }

// Lobby 未配对的玩家，按连接先后升序
func (r *Registry) Lobby() []*Player {
	var out []*Player
	for _, p := range r.players {
		if !p.InMatch() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

// Players 全部玩家，按实体 id 升序
func (r *Registry) Players() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Matches 全部对局，按实体 id 升序，保证每个 tick 的处理顺序确定
func (r *Registry) Matches() []*Match {
	out := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) NumPlayers() int { return len(r.players) }

func (r *Registry) NumMatches() int { return len(r.matches) }
