package seat

import "fmt"

// Button is a pointer button in the closed set understood by applications.
type Button uint8

const (
	ButtonPrimary Button = iota + 1
	ButtonSecondary
	ButtonAuxiliary
	ButtonX1
	ButtonX2
	ButtonPenEraser
	ButtonB7
	ButtonB8
	ButtonB9
	ButtonB10
	ButtonB11
	ButtonB12
	ButtonB13
	ButtonB14
	ButtonB15
	ButtonB16
	ButtonB17
	ButtonB18
	ButtonB19
	ButtonB20
	ButtonB21
	ButtonB22
	ButtonB23
	ButtonB24
	ButtonB25
	ButtonB26
	ButtonB27
	ButtonB28
	ButtonB29
	ButtonB30
	ButtonB31
	ButtonB32
)

// Linux input event codes.
const (
	codeLeft    = 0x110
	codeRight   = 0x111
	codeMiddle  = 0x112
	codeSide    = 0x113
	codeExtra   = 0x114
	codeForward = 0x115
	codeTask    = 0x117
	codeB10     = 0x118
	codeB32     = 0x12e
	codeRubber  = 0x14b
)

// ButtonFromCode maps an evdev button code to a Button. Codes outside the
// known set report false.
func ButtonFromCode(code uint32) (Button, bool) {
	switch {
	case code == codeLeft:
		return ButtonPrimary, true
	case code == codeRight:
		return ButtonSecondary, true
	case code == codeMiddle:
		return ButtonAuxiliary, true
	case code == codeSide:
		return ButtonX1, true
	case code == codeExtra:
		return ButtonX2, true
	case code >= codeForward && code <= codeTask:
		return ButtonB7 + Button(code-codeForward), true
	case code >= codeB10 && code <= codeB32:
		return ButtonB10 + Button(code-codeB10), true
	case code == codeRubber:
		return ButtonPenEraser, true
	default:
		return 0, false
	}
}

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonAuxiliary:
		return "auxiliary"
	case ButtonX1:
		return "x1"
	case ButtonX2:
		return "x2"
	case ButtonPenEraser:
		return "pen_eraser"
	}
	if b >= ButtonB7 && b <= ButtonB32 {
		return fmt.Sprintf("b%d", int(b-ButtonB7)+7)
	}
	return "none"
}
