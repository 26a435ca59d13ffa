package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"wordfight/game"
	"wordfight/protocol"
	"wordfight/store"
)

// Conn 出站连接：Tick 线程只通过它非阻塞地投递已编码的帧
type Conn interface {
	Send([]byte) error
	Close() error
}

// ResultSink 对局拆除时接收结果（非阻塞）
type ResultSink interface {
	Record(store.MatchResult) bool
}

type connectEvent struct {
	client ClientID
	name   string
	conn   Conn
	codec  protocol.Codec
}

type leaveEvent struct {
	client ClientID
	reason string
}

// StrikeEvent 某场对局本 tick 的击打；Winner 仅在 Point 时非空
type StrikeEvent struct {
	Match  EntityID
	Strike game.Strike
	Winner EntityID
}

// TickReport 每个 tick 结束时产出一次，供日志与测试消费
type TickReport struct {
	Tick      uint64
	Accepted  int
	Rejected  int
	Strikes   []StrikeEvent
	Spawned   []EntityID
	Destroyed []EntityID
}

// WorldOptions 构造参数
type WorldOptions struct {
	ArenaSize  int
	TickRate   int
	Dictionary game.Dictionary // nil 表示不启用词典规则
	Results    ResultSink      // nil 表示不记录
}

// World 权威状态：所有 Word / Score / 对局成员关系 / Arena 只在 Tick 中被修改。
// 网络协程只通过 Connect / Disconnect / Submit 三个通道入口交互。
type World struct {
	reg     *Registry
	dict    game.Dictionary
	results ResultSink
	metrics *WorldMetrics

	arenaSize atomic.Int64
	tickRate  int
	tick      atomic.Uint64

	connectCh chan connectEvent
	leaveCh   chan leaveEvent
	inputCh   chan Input
	done      chan struct{}

	stopMu  sync.Mutex // 保证 shutdown 之后不会再有连接进入 connectCh
	stopped bool

	views           map[ClientID]*clientView
	dirty           map[EntityID]bool
	membershipDirty bool

	now func() time.Time
}

// NewWorld 创建世界；arena size 只影响之后创建的对局
func NewWorld(opts WorldOptions) *World {
	w := &World{
		reg:       NewRegistry(),
		dict:      opts.Dictionary,
		results:   opts.Results,
		metrics:   &WorldMetrics{},
		tickRate:  opts.TickRate,
		connectCh: make(chan connectEvent, 64),
		leaveCh:   make(chan leaveEvent, 64),
		inputCh:   make(chan Input, 1024), // 足够缓冲，避免网络读阻塞影响 Tick
		done:      make(chan struct{}),
		views:     make(map[ClientID]*clientView),
		dirty:     make(map[EntityID]bool),
		now:       time.Now,
	}
	w.arenaSize.Store(int64(opts.ArenaSize))
	return w
}

func (w *World) Metrics() *WorldMetrics { return w.metrics }

func (w *World) TickRate() int { return w.tickRate }

// CurrentTick 已完成的 tick 数，可在任意协程读取
func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ArenaSize() int { return int(w.arenaSize.Load()) }

// SetArenaSize 热更新新对局的容量，进行中的对局保持原值
func (w *World) SetArenaSize(n int) error {
	if n < 2 {
		return fmt.Errorf("arena size %d: must be at least 2", n)
	}
	w.arenaSize.Store(int64(n))
	return nil
}

// Connect 传输层通知新连接；在下一个 Tick 中生成大厅玩家，世界已停止时直接关闭 conn
func (w *World) Connect(client ClientID, name string, conn Conn, codec protocol.Codec) {
	w.stopMu.Lock()
	defer w.stopMu.Unlock()
	if w.stopped {
		_ = conn.Close()
		return
	}
	select {
	case w.connectCh <- connectEvent{client: client, name: name, conn: conn, codec: codec}:
	case <-w.done:
		_ = conn.Close()
	}
}

// Disconnect 请求在 Tick 线程中移除玩家，避免并发改动世界状态。
// 为保证移除一定生效采用阻塞写入；世界已停止时直接返回。
func (w *World) Disconnect(client ClientID, reason string) {
	select {
	case w.leaveCh <- leaveEvent{client: client, reason: reason}:
	case <-w.done:
	}
}

// Submit 入站动作（不立即生效），通道满时丢弃，保证 Tick 准时
func (w *World) Submit(in Input) bool {
	select {
	case w.inputCh <- in:
		return true
	default:
		w.metrics.IncChanFullDiscarded()
		return false
	}
}

// Tick 推进一个模拟步：
// 连接 -> 动作校验入缓冲 -> 各对局结算 -> 断线与拆除 -> 配对 -> 可见性 -> 下发
func (w *World) Tick() TickReport {
	start := time.Now()
	rep := TickReport{Tick: w.tick.Load() + 1}

	w.drainConnects()
	w.drainInputs(&rep)
	w.resolve(&rep)
	w.drainLeaves(&rep)
	w.reapMatches(&rep)
	w.matchmake(&rep)
	if w.membershipDirty {
		w.recomputeVisibility()
		w.membershipDirty = false
	}
	w.tick.Store(rep.Tick)
	w.replicate()
	clear(w.dirty)

	w.metrics.AddTick(time.Since(start).Nanoseconds())
	return rep
}

func (w *World) markDirty(ids ...EntityID) {
	for _, id := range ids {
		if id != NoEntity {
			w.dirty[id] = true
		}
	}
}

func (w *World) drainConnects() {
	for {
		select {
		case ev := <-w.connectCh:
			w.connect(ev)
		default:
			return
		}
	}
}

func (w *World) drainInputs(rep *TickReport) {
	for {
		select {
		case in := <-w.inputCh:
			if err := w.ingest(in); err != nil {
				rep.Rejected++
				w.logRejected(in, err)
				continue
			}
			rep.Accepted++
		default:
			return
		}
	}
}

func (w *World) drainLeaves(rep *TickReport) {
	for {
		select {
		case ev := <-w.leaveCh:
			w.disconnect(ev, rep)
		default:
			return
		}
	}
}

// wordOf 玩家当前的词；大厅中为空
func (w *World) wordOf(p *Player) game.Word {
	if !p.InMatch() {
		return nil
	}
	m := w.reg.Match(p.Match)
	if m == nil {
		return nil
	}
	return m.Arena.Word(p.Side)
}
