package game

import "errors"

var (
	// ErrNotYetFull 两侧字母总数尚未达到竞技场容量，继续累积（不是故障）
	ErrNotYetFull = errors.New("arena not yet full")
	// ErrInvalidAppend 词典不接受追加后的前缀，动作被丢弃
	ErrInvalidAppend = errors.New("append rejected by dictionary")
)
