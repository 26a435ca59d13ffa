package game

import "fmt"

// ActionKind 客户端能对自己的词做的两种操作
type ActionKind uint8

const (
	ActionAppend ActionKind = iota + 1
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionAppend:
		return "append"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
}

// Action 一次输入动作；Letter 仅对 Append 有意义
type Action struct {
	Kind   ActionKind
	Letter Letter
}

func Append(l Letter) Action { return Action{Kind: ActionAppend, Letter: l} }

func Delete() Action { return Action{Kind: ActionDelete} }

func (a Action) Valid() bool {
	switch a.Kind {
	case ActionAppend:
		return a.Letter.Valid()
	case ActionDelete:
		return true
	}
	return false
}

func (a Action) String() string {
	if a.Kind == ActionAppend {
		return "append(" + a.Letter.String() + ")"
	}
	return a.Kind.String()
}

// Check 在接受 Append 前询问词典 word+letter 是否仍是某个单词的前缀。
// dict 为 nil 表示不启用词典规则。
func (a Action) Check(w Word, dict Dictionary) error {
	if a.Kind != ActionAppend || dict == nil {
		return nil
	}
	candidate := w.String() + a.Letter.String()
	if !dict.IsPrefix(candidate) {
		return fmt.Errorf("%q: %w", candidate, ErrInvalidAppend)
	}
	return nil
}

// Apply 作用到词上，返回词是否发生变化（空词上的 Delete 不变）
func (a Action) Apply(w *Word) bool {
	switch a.Kind {
	case ActionAppend:
		w.Push(a.Letter)
		return true
	case ActionDelete:
		_, ok := w.Pop()
		return ok
	}
	return false
}
