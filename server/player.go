package server

import (
	"fmt"

	"wordfight/game"
)

// ClientID 连接标识，由传输层按连接先后递增分配，配对时按它排序
type ClientID uint64

// EntityID 服务端内部实体 id（玩家与对局共用一个号段），从不直接发给客户端
type EntityID uint64

// NoEntity 空引用
const NoEntity EntityID = 0

// Player 服务端权威的玩家实体。Match 为 NoEntity 表示在大厅。
// 词由所在对局的 Arena 持有，按 Side 取。
type Player struct {
	ID     EntityID
	Client ClientID
	Name   string
	Side   game.Side // 仅在对局中有意义
	Score  int       // 单调不减
	Match  EntityID
}

// InMatch 是否已配对
func (p *Player) InMatch() bool { return p.Match != NoEntity }

func (p *Player) String() string {
	return fmt.Sprintf("player#%d(client=%d)", p.ID, p.Client)
}
