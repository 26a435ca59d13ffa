package protocol

const (
	MsgAction  = "action"
	MsgWelcome = "welcome"
	MsgState   = "state"
)

const (
	KindAppend = "append"
	KindDelete = "delete"

	SideLeft  = "left"
	SideRight = "right"
)

// Envelope 线上的外层结构：类型 + 原始负载（按连接协商的编码）
type Envelope struct {
	T string
	P []byte
}
