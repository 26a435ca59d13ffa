package protocol

// 客户端 -> 服务端

// Action 对自己的词追加或删除一个字母。
// Actor / Match 是本连接视角下的本地实体 id（来自 welcome / state），不是服务端 id；
// Match 必填，取自最近一次 state 的 match.id。
type Action struct {
	Kind   string `json:"kind" msgpack:"kind"`
	Letter string `json:"letter,omitempty" msgpack:"letter,omitempty"`
	Actor  uint32 `json:"actor" msgpack:"actor"`
	Side   string `json:"side" msgpack:"side"`
	Match  uint32 `json:"match" msgpack:"match"`
}
