package server

import "github.com/google/uuid"

// matchmake 大厅按连接先后两两配对，每对第一个为 Left；奇数时最后一个继续等待。
// 新对局使用当前配置的 arena size。
func (w *World) matchmake(rep *TickReport) {
	lobby := w.reg.Lobby()
	if len(lobby) < 2 {
		return
	}
	size := w.ArenaSize()
	for i := 0; i+1 < len(lobby); i += 2 {
		m := w.spawnMatch(lobby[i], lobby[i+1], size)
		rep.Spawned = append(rep.Spawned, m.ID)
	}
}

func newRecordID() uuid.UUID { return uuid.New() }
