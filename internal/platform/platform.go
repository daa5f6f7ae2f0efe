// Package platform resolves the host operating system and the user's shell
// family once, at the process boundary, into small closed variants that the
// rest of the program consumes without sniffing strings again.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform는 호스트 운영체제 계열이다.
type Platform int

const (
	// Other는 macOS/Linux 외의 모든 OS다.
	Other Platform = iota
	// Darwin은 macOS 계열이다.
	Darwin
	// Linux는 Linux 계열이다.
	Linux
)

func (p Platform) String() string {
	switch p {
	case Darwin:
		return "darwin"
	case Linux:
		return "linux"
	default:
		return "other"
	}
}

// FromGOOS는 GOOS 형식 또는 uname 형식의 OS 식별자를 Platform으로 변환한다.
func FromGOOS(goos string) Platform {
	switch strings.ToLower(strings.TrimSpace(goos)) {
	case "darwin", "macos", "osx":
		return Darwin
	case "linux":
		return Linux
	default:
		return Other
	}
}

// Current는 실행 중인 바이너리의 Platform을 반환한다.
func Current() Platform {
	return FromGOOS(runtime.GOOS)
}

// Family는 셸 계열이다.
type Family int

const (
	// Unknown은 지원 목록에 없는 셸이다.
	Unknown Family = iota
	// Bash는 bash 계열이다.
	Bash
	// Zsh는 zsh 계열이다.
	Zsh
)

func (f Family) String() string {
	switch f {
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	default:
		return "unknown"
	}
}

// ParseFamily는 셸 경로 또는 이름을 Family로 변환한다.
func ParseFamily(shellPath string) Family {
	switch filepath.Base(strings.TrimSpace(shellPath)) {
	case "bash", "-bash":
		return Bash
	case "zsh", "-zsh":
		return Zsh
	default:
		return Unknown
	}
}

// DetectFamily는 $SHELL 환경변수로 현재 사용자의 셸 계열을 감지한다.
func DetectFamily() Family {
	return ParseFamily(os.Getenv("SHELL"))
}

// Binary는 fresh session 검사에 사용할 셸 실행 파일 이름이다.
func (f Family) Binary() string {
	switch f {
	case Zsh:
		return "zsh"
	default:
		return "bash"
	}
}
