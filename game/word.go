package game

import (
	"fmt"
	"strings"
)

// Word 一名玩家当前输入的字母序列，只通过 Push / Pop 修改，击打结算时整体清空
type Word []Letter

// ParseWord 将字符串解析为 Word（测试与预置状态使用）
func ParseWord(s string) (Word, error) {
	w := make(Word, 0, len(s))
	for _, r := range s {
		l, ok := LetterFromRune(r)
		if !ok {
			return nil, fmt.Errorf("parse word %q: invalid character %q", s, r)
		}
		w = append(w, l)
	}
	return w, nil
}

func (w Word) Len() int { return len(w) }

// Last 最后一个字母；空词返回 false
func (w Word) Last() (Letter, bool) {
	if len(w) == 0 {
		return 0, false
	}
	return w[len(w)-1], true
}

func (w *Word) Push(l Letter) {
	*w = append(*w, l)
}

// Pop 删除最后一个字母，空词时为 no-op
func (w *Word) Pop() (Letter, bool) {
	l, ok := w.Last()
	if !ok {
		return 0, false
	}
	*w = (*w)[:len(*w)-1]
	return l, true
}

func (w *Word) Clear() {
	*w = (*w)[:0]
}

// Clone 返回独立副本，避免外部持有内部切片
func (w Word) Clone() Word {
	out := make(Word, len(w))
	copy(out, w)
	return out
}

func (w Word) String() string {
	var b strings.Builder
	b.Grow(len(w))
	for _, l := range w {
		b.WriteRune(l.Rune())
	}
	return b.String()
}
