package protocol

// 服务端 -> 客户端

type Welcome struct {
	You      uint32 `json:"you" msgpack:"you"`
	Name     string `json:"name" msgpack:"name"`
	TickRate int    `json:"tickRate" msgpack:"tickRate"`
	Codec    string `json:"codec" msgpack:"codec"`
}

type PlayerView struct {
	ID    uint32 `json:"id" msgpack:"id"`
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Side  string `json:"side,omitempty" msgpack:"side,omitempty"`
	Word  string `json:"word" msgpack:"word"`
	Score int    `json:"score" msgpack:"score"`
}

type MatchView struct {
	ID        uint32     `json:"id" msgpack:"id"`
	ArenaSize int        `json:"arenaSize" msgpack:"arenaSize"`
	Opponent  PlayerView `json:"opponent" msgpack:"opponent"`
}

// State 只包含该客户端可见的实体
type State struct {
	Tick  uint64       `json:"tick" msgpack:"tick"`
	You   PlayerView   `json:"you" msgpack:"you"`
	Match *MatchView   `json:"match,omitempty" msgpack:"match,omitempty"`
	Lobby []PlayerView `json:"lobby,omitempty" msgpack:"lobby,omitempty"`
}
