package server

import (
	"fmt"

	"wordfight/game"
	"wordfight/protocol"
)

// Input 客户端动作（意图），由 Tick 线程做权限校验后写入对局缓冲。
// Actor / Match 是该客户端视角下的本地 id。
type Input struct {
	Client ClientID
	Actor  uint32
	Side   game.Side
	Match  uint32
	Action game.Action
}

// InputFromMessage 把线上的 action 消息转为 Input；格式非法直接报错，由读协程丢弃
func InputFromMessage(client ClientID, msg protocol.Action) (Input, error) {
	side, err := game.ParseSide(msg.Side)
	if err != nil {
		return Input{}, err
	}
	var act game.Action
	switch msg.Kind {
	case protocol.KindAppend:
		l, err := game.ParseLetter(msg.Letter)
		if err != nil {
			return Input{}, err
		}
		act = game.Append(l)
	case protocol.KindDelete:
		act = game.Delete()
	default:
		return Input{}, fmt.Errorf("unknown action kind %q", msg.Kind)
	}
	return Input{Client: client, Actor: msg.Actor, Side: side, Match: msg.Match, Action: act}, nil
}
