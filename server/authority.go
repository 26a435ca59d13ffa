package server

import (
	"errors"
	"fmt"

	"wordfight/game"
)

var (
	// ErrUnauthorized actor 不属于发送方，或 side 与 actor 不符；静默丢弃，不告知客户端哪一项失败
	ErrUnauthorized = errors.New("unauthorized action")
	// ErrMatchNotFound 玩家不在对局中或对局已被拆除
	ErrMatchNotFound = errors.New("match not found")
	// ErrPlayerNotFound 发送方或 actor 已不存在
	ErrPlayerNotFound = errors.New("player not found")
)

// ingest 权限校验：actor 的拥有者必须是发送方，声明的对局是 actor 当前的对局，
// 且 actor 当前的 Side 与声明一致。
// 通过后以 actor 的对局与 Side 写入该对局的单槽缓冲（后到覆盖先到），不修改任何词或分数。
func (w *World) ingest(in Input) error {
	v, ok := w.views[in.Client]
	if !ok {
		return fmt.Errorf("client %d: %w", in.Client, ErrPlayerNotFound)
	}
	if !in.Action.Valid() {
		return fmt.Errorf("malformed action %v: %w", in.Action, ErrUnauthorized)
	}
	actorID, ok := v.ids.Server(in.Actor)
	if !ok {
		return fmt.Errorf("unknown actor %d: %w", in.Actor, ErrUnauthorized)
	}
	actor := w.reg.Player(actorID)
	if actor == nil {
		return fmt.Errorf("actor %d: %w", actorID, ErrPlayerNotFound)
	}
	if actor.Client != in.Client {
		return fmt.Errorf("actor %d not owned by client %d: %w", actorID, in.Client, ErrUnauthorized)
	}
	if !actor.InMatch() {
		return fmt.Errorf("%v in lobby: %w", actor, ErrMatchNotFound)
	}
	m := w.reg.Match(actor.Match)
	if m == nil {
		return fmt.Errorf("%v match %d: %w", actor, actor.Match, ErrMatchNotFound)
	}
	// 本地 id 不复用：旧对局的 id 在拆除后不再映射，即使同 tick 重新配对也不会落到新对局
	claimed, ok := v.ids.Server(in.Match)
	if !ok || claimed != m.ID {
		return fmt.Errorf("%v claimed match %d: %w", actor, in.Match, ErrMatchNotFound)
	}
	if actor.Side != in.Side {
		return fmt.Errorf("%v claimed side %v: %w", actor, in.Side, ErrUnauthorized)
	}
	if err := in.Action.Check(m.Arena.Word(actor.Side), w.dict); err != nil {
		return err
	}

	if m.Arena.Buffer(actor.Side, in.Action) {
		w.metrics.IncOverwrote()
	}
	w.metrics.IncAccepted()
	return nil
}

// logRejected 被拒绝的动作只记日志与计数，不回送客户端
func (w *World) logRejected(in Input, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		w.metrics.IncUnauthorized()
		Log.Debugw("action rejected", "client", in.Client, "action", in.Action.String(), "error", err)
	case errors.Is(err, game.ErrInvalidAppend):
		w.metrics.IncInvalidAppend()
		Log.Debugw("append rejected by dictionary", "client", in.Client, "error", err)
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrPlayerNotFound):
		w.metrics.IncStale()
		Log.Warnw("stale reference, action skipped", "client", in.Client, "error", err)
	default:
		Log.Errorw("action ingest failed", "client", in.Client, "error", err)
	}
}
