package setup

import (
	"errors"

	"github.com/hbjs97/vagrant-shim/internal/platform"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/resolver"
	"github.com/hbjs97/vagrant-shim/internal/verify"
)

// ErrCancelled는 사용자가 교체를 거절했을 때 반환된다.
var ErrCancelled = errors.New("install cancelled by operator")

// Request는 한 번의 install/uninstall 실행 입력이다.
type Request struct {
	Platform  platform.Platform
	Family    platform.Family
	Overrides resolver.Overrides
	// ProfilePath가 비어 있으면 Locator가 결정한다.
	ProfilePath string
	// Home이 비어 있으면 os.UserHomeDir를 사용한다.
	Home  string
	Force bool
	// SkipVerify는 설치 후 진단을 생략한다.
	SkipVerify bool
}

// Report는 한 번의 실행 결과다.
type Report struct {
	Config           resolver.ResolvedConfig
	ResolverWarnings []resolver.Warning
	ProfilePath      string
	Result           *profile.InstallResult
	Checks           []verify.Result
}
