package game

import (
	"fmt"
	"unicode"
)

// Letter 字母表中的一个字母（A..Z），按字母序全序，用于击打时比较大小
type Letter uint8

const (
	A Letter = iota
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
)

// AlphabetSize 字母表大小
const AlphabetSize = 26

// Valid 是否属于 A..Z
func (l Letter) Valid() bool { return l < AlphabetSize }

// Rune 大写字符形式
func (l Letter) Rune() rune { return rune('A' + l) }

func (l Letter) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Letter(%d)", uint8(l))
	}
	return string(l.Rune())
}

// LetterFromRune 大小写均可；非字母返回 false
func LetterFromRune(r rune) (Letter, bool) {
	r = unicode.ToUpper(r)
	if r < 'A' || r > 'Z' {
		return 0, false
	}
	return Letter(r - 'A'), true
}

// ParseLetter 解析单个字母的字符串（客户端上行的 letter 字段）
func ParseLetter(s string) (Letter, error) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, fmt.Errorf("parse letter %q: want exactly one character", s)
	}
	l, ok := LetterFromRune(rs[0])
	if !ok {
		return 0, fmt.Errorf("parse letter %q: not in A..Z", s)
	}
	return l, nil
}
