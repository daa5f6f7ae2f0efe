package cli

import (
	"github.com/hbjs97/vagrant-shim/internal/config"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/setup"
)

// 각 도메인 패키지의 sentinel error를 CLI 레이어에서 편의상 re-export한다.
var (
	// ErrFilesystem는 프로필 파일을 읽거나 쓸 수 없을 때의 sentinel error다.
	ErrFilesystem = profile.ErrFilesystem
	// ErrCancelled는 사용자가 교체를 거절했을 때의 sentinel error다.
	ErrCancelled = setup.ErrCancelled
	// ErrConfig는 설정 파일 오류를 나타내는 sentinel error다.
	ErrConfig = config.ErrConfig
)
