package game

import (
	"errors"
	"testing"
)

func mustWord(t *testing.T, s string) Word {
	t.Helper()
	w, err := ParseWord(s)
	if err != nil {
		t.Fatalf("parse word %q: %v", s, err)
	}
	return w
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		left, right string
		want        Strike
		notYetFull  bool
	}{
		{name: "below capacity", size: 7, left: "ALP", right: "ALP", notYetFull: true},
		{name: "right last letter larger", size: 7, left: "ALPH", right: "ALP", want: Strike{Outcome: Point, Winner: Right}},
		{name: "left last letter larger", size: 7, left: "ALPS", right: "ALP", want: Strike{Outcome: Point, Winner: Left}},
		{name: "right side empty", size: 7, left: "ALPHABE", right: "", want: Strike{Outcome: Point, Winner: Left}},
		{name: "left side empty", size: 3, left: "", right: "CAT", want: Strike{Outcome: Point, Winner: Right}},
		{name: "equal last letters", size: 7, left: "SASS", right: "SAS", want: Strike{Outcome: Parry}},
		{name: "overflow", size: 7, left: "ALPZ", right: "ALPA", want: Strike{Outcome: Parry}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.size, mustWord(t, tt.left), mustWord(t, tt.right))
			if tt.notYetFull {
				if !errors.Is(err, ErrNotYetFull) {
					t.Fatalf("err = %v, want ErrNotYetFull", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("strike = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArenaStepNoStrikeBelowCapacity(t *testing.T) {
	a := NewArena(7)
	a.SetWord(Left, mustWord(t, "AL"))
	a.SetWord(Right, mustWord(t, "ALP"))

	a.Buffer(Left, Append(P))
	res := a.Step()
	if res.Struck {
		t.Fatalf("unexpected strike %v at total 6", res.Strike)
	}
	if !res.Changed[Left] || res.Changed[Right] {
		t.Fatalf("changed = %v, want [true false]", res.Changed)
	}
	if a.Len(Left) != 3 || a.Len(Right) != 3 {
		t.Fatalf("sizes = (%d,%d), want (3,3)", a.Len(Left), a.Len(Right))
	}
}

func TestArenaStepPointResetsWords(t *testing.T) {
	a := NewArena(7)
	a.SetWord(Left, mustWord(t, "ALP"))
	a.SetWord(Right, mustWord(t, "ALP"))

	a.Buffer(Left, Append(H))
	res := a.Step()
	if !res.Struck {
		t.Fatalf("expected strike at total 7")
	}
	if res.Strike != (Strike{Outcome: Point, Winner: Right}) {
		t.Fatalf("strike = %v, want point(right)", res.Strike)
	}
	if a.Len(Left) != 0 || a.Len(Right) != 0 {
		t.Fatalf("words not cleared: %q %q", a.Word(Left), a.Word(Right))
	}
	if !res.Changed[Left] || !res.Changed[Right] {
		t.Fatalf("both sides should be reported changed after a strike")
	}
}

func TestArenaStepSimultaneousOverflowIsParry(t *testing.T) {
	a := NewArena(7)
	a.SetWord(Left, mustWord(t, "ALP"))
	a.SetWord(Right, mustWord(t, "ALP"))

	a.Buffer(Right, Append(Z))
	a.Buffer(Left, Append(A))
	res := a.Step()
	if !res.Struck || res.Strike.Outcome != Parry {
		t.Fatalf("res = %+v, want parry", res)
	}
	if a.Len(Left) != 0 || a.Len(Right) != 0 {
		t.Fatalf("words not cleared after parry")
	}
}

func TestArenaStepIsOrderIndependent(t *testing.T) {
	run := func(first, second Side) Resolution {
		a := NewArena(4)
		a.SetWord(Left, mustWord(t, "A"))
		a.SetWord(Right, mustWord(t, "B"))
		acts := map[Side]Action{Left: Append(C), Right: Append(D)}
		a.Buffer(first, acts[first])
		a.Buffer(second, acts[second])
		return a.Step()
	}
	lr := run(Left, Right)
	rl := run(Right, Left)
	if lr != rl {
		t.Fatalf("resolution depends on arrival order: %+v vs %+v", lr, rl)
	}
	if lr.Strike != (Strike{Outcome: Point, Winner: Right}) {
		t.Fatalf("strike = %v, want point(right)", lr.Strike)
	}
}

func TestArenaBufferLatestWins(t *testing.T) {
	a := NewArena(7)
	if a.Buffer(Left, Append(A)) {
		t.Fatalf("first buffer should not report overwrite")
	}
	if !a.Buffer(Left, Append(B)) {
		t.Fatalf("second buffer should report overwrite")
	}
	a.Step()
	if got := a.Word(Left).String(); got != "B" {
		t.Fatalf("left word = %q, want %q", got, "B")
	}
	if _, ok := a.Pending(Left); ok {
		t.Fatalf("pending slot should be empty after step")
	}
}

func TestArenaDeleteOnEmptyIsNoop(t *testing.T) {
	a := NewArena(7)
	a.Buffer(Right, Delete())
	res := a.Step()
	if res.Struck || res.Changed[Right] {
		t.Fatalf("delete on empty word should not change anything: %+v", res)
	}
}

func TestArenaWithoutActionsDoesNotEvaluate(t *testing.T) {
	a := NewArena(2)
	a.SetWord(Left, mustWord(t, "A"))
	a.SetWord(Right, mustWord(t, "B"))
	if res := a.Step(); res.Struck {
		t.Fatalf("strike evaluated on a tick with no buffered actions")
	}
}
