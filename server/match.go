package server

import (
	"time"

	"github.com/google/uuid"

	"wordfight/game"
)

// Match 一场对局：恰好一个 Arena，按 Side 索引的两名玩家。
// 只由配对创建；任一成员离开即整体拆除。
type Match struct {
	ID       EntityID
	RecordID uuid.UUID // 持久化结果的主键
	Players  [2]EntityID
	Arena    *game.Arena
	Points   [2]int // 本场各侧得分
	Strikes  int
	Started  time.Time
}

// Member 指定侧的玩家
func (m *Match) Member(side game.Side) EntityID { return m.Players[side] }
