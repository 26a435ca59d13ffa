package game

import "fmt"

// Side 对局中的两个固定位置
type Side uint8

const (
	Left Side = iota
	Right
)

// Opposite 对方位置（not Side）
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) Valid() bool { return s == Left || s == Right }

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// ParseSide 解析线上的 "left" / "right"
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "Left", "LEFT":
		return Left, nil
	case "right", "Right", "RIGHT":
		return Right, nil
	}
	return 0, fmt.Errorf("parse side %q: want left or right", s)
}
