package setup

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/hbjs97/vagrant-shim/internal/platform"
)

// Candidates는 셸 계열별 프로필 후보를 우선순위 순으로 반환한다.
func Candidates(family platform.Family, home string) []string {
	switch family {
	case platform.Zsh:
		return []string{filepath.Join(home, ".zshrc"), filepath.Join(home, ".zprofile")}
	case platform.Bash:
		return []string{filepath.Join(home, ".bashrc"), filepath.Join(home, ".bash_profile")}
	default:
		return []string{filepath.Join(home, ".profile")}
	}
}

// LocateProfile은 수정할 프로필 파일의 절대 경로를 결정한다.
// override가 있으면 그대로 사용하고, 없으면 존재하는 첫 후보를, 둘 다 없으면 첫 후보를 반환한다.
func LocateProfile(family platform.Family, home, override string, exists func(string) bool) string {
	if override != "" {
		if abs, err := filepath.Abs(override); err == nil {
			return abs
		}
		return override
	}

	candidates := Candidates(family, home)
	for _, c := range candidates {
		if exists(c) {
			return c
		}
	}
	return candidates[0]
}

// FileExists는 fsys 위에서 path가 존재하는지 확인하는 exists 함수를 만든다.
func FileExists(fsys afero.Fs) func(string) bool {
	return func(path string) bool {
		_, err := fsys.Stat(path)
		return err == nil
	}
}
