package server

import "sort"

// VisibilitySet 某个客户端对每个实体的可见性
type VisibilitySet map[EntityID]bool

func (s VisibilitySet) Visible(id EntityID) bool { return s[id] }

// IDs 可见实体，升序
func (s VisibilitySet) IDs() []EntityID {
	out := make([]EntityID, 0, len(s))
	for id, ok := range s {
		if ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sameVisible 只比较可见的部分
func sameVisible(a, b VisibilitySet) bool {
	n := 0
	for id, ok := range a {
		if !ok {
			continue
		}
		if !b[id] {
			return false
		}
		n++
	}
	for _, ok := range b {
		if ok {
			n--
		}
	}
	return n == 0
}

// computeVisibility 对每个玩家与对局实体给出 self 的可见性：
// 自己总是可见；对局中只见自己的对局和对手；大厅中只见大厅里的其他人。
func computeVisibility(reg *Registry, self *Player) VisibilitySet {
	vis := make(VisibilitySet, reg.NumPlayers()+reg.NumMatches())
	for _, m := range reg.Matches() {
		vis[m.ID] = self.InMatch() && self.Match == m.ID
	}
	for _, p := range reg.Players() {
		switch {
		case p.ID == self.ID:
			vis[p.ID] = true
		case self.InMatch():
			vis[p.ID] = p.Match == self.Match
		default:
			vis[p.ID] = !p.InMatch()
		}
	}
	return vis
}

// recomputeVisibility 成员关系变化后重算所有客户端；可见集变化的客户端本 tick 必发状态
func (w *World) recomputeVisibility() {
	for _, v := range w.views {
		self := w.reg.Player(v.player)
		if self == nil {
			continue
		}
		next := computeVisibility(w.reg, self)
		if !sameVisible(v.visible, next) {
			v.changed = true
			v.ids.Sync(next)
		}
		v.visible = next
	}
}
