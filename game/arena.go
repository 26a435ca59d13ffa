package game

import "fmt"

// Outcome 击打结果
type Outcome uint8

const (
	// Parry 平局或同 tick 双方同时溢出，不加分
	Parry Outcome = iota + 1
	// Point 一方得一分
	Point
)

func (o Outcome) String() string {
	switch o {
	case Parry:
		return "parry"
	case Point:
		return "point"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Strike 一次击打的结算；Winner 仅在 Point 时有意义
type Strike struct {
	Outcome Outcome
	Winner  Side
}

func (s Strike) String() string {
	if s.Outcome == Point {
		return "point(" + s.Winner.String() + ")"
	}
	return s.Outcome.String()
}

// Evaluate 根据两侧的词判定击打。
// total < size 返回 ErrNotYetFull；total > size（只可能由同一 tick 双方同时追加造成）为 Parry；
// total == size 时比较最后一个字母，空词视为最小。
func Evaluate(size int, left, right Word) (Strike, error) {
	total := left.Len() + right.Len()
	if total < size {
		return Strike{}, fmt.Errorf("%d+%d of %d: %w", left.Len(), right.Len(), size, ErrNotYetFull)
	}
	if total > size {
		return Strike{Outcome: Parry}, nil
	}
	switch compareLast(left, right) {
	case 1:
		return Strike{Outcome: Point, Winner: Left}, nil
	case -1:
		return Strike{Outcome: Point, Winner: Right}, nil
	default:
		return Strike{Outcome: Parry}, nil
	}
}

func compareLast(left, right Word) int {
	l, lok := left.Last()
	r, rok := right.Last()
	switch {
	case lok && !rok:
		return 1
	case !lok && rok:
		return -1
	case !lok && !rok:
		return 0
	case l > r:
		return 1
	case l < r:
		return -1
	}
	return 0
}

// Arena 一场对局共享的定长区域：每侧一个词，以及每侧一个单槽动作缓冲
type Arena struct {
	size    int
	words   [2]Word
	pending [2]Action
	queued  [2]bool
}

// NewArena size 在对局生命周期内固定
func NewArena(size int) *Arena {
	return &Arena{size: size}
}

func (a *Arena) Size() int { return a.size }

// Word 返回该侧词的副本
func (a *Arena) Word(side Side) Word { return a.words[side].Clone() }

// Len 该侧词长
func (a *Arena) Len(side Side) int { return a.words[side].Len() }

// SetWord 直接设置某侧的词（预置状态 / 测试）
func (a *Arena) SetWord(side Side, w Word) { a.words[side] = w.Clone() }

// Buffer 写入该侧本 tick 的动作；同一 tick 内后到的覆盖先到的，返回是否发生覆盖
func (a *Arena) Buffer(side Side, act Action) bool {
	overwrote := a.queued[side]
	a.pending[side] = act
	a.queued[side] = true
	return overwrote
}

// Pending 该侧当前缓冲的动作
func (a *Arena) Pending(side Side) (Action, bool) {
	return a.pending[side], a.queued[side]
}

// Resolution 一个 tick 的结算结果
type Resolution struct {
	Changed [2]bool // 该侧的词是否变化（含击打清空）
	Struck  bool
	Strike  Strike
}

// Step 一个 tick 的结算：先应用两侧各至多一个缓冲动作，再统一判定。
// 两侧都应用完之后才判定，结果与动作到达先后无关。
// 发生击打（Parry / Point）时两侧的词清空，回到累积状态。
func (a *Arena) Step() Resolution {
	var res Resolution
	applied := false
	for _, side := range [2]Side{Left, Right} {
		if !a.queued[side] {
			continue
		}
		applied = true
		res.Changed[side] = a.pending[side].Apply(&a.words[side])
		a.pending[side] = Action{}
		a.queued[side] = false
	}
	if !applied {
		return res
	}
	strike, err := Evaluate(a.size, a.words[Left], a.words[Right])
	if err != nil {
		return res
	}
	res.Struck = true
	res.Strike = strike
	for _, side := range [2]Side{Left, Right} {
		if a.words[side].Len() > 0 {
			res.Changed[side] = true
		}
		a.words[side].Clear()
	}
	return res
}
