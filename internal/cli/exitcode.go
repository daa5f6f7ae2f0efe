package cli

import (
	"errors"
)

// ExitCode는 vagrant-shim의 종료 코드다.
type ExitCode int

const (
	// ExitSuccess는 정상 종료다.
	ExitSuccess ExitCode = 0
	// ExitGeneral는 치명적 전제 조건 실패와 사용자 취소를 포함한 모든 에러다.
	ExitGeneral ExitCode = 1
)

// MapExitCode는 에러를 종료 코드로 변환한다.
func MapExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	return ExitGeneral
}

// Hint는 sentinel error에 대한 해결 안내를 반환한다. 안내가 없으면 빈 문자열이다.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrFilesystem):
		return "프로필 파일과 상위 디렉토리의 쓰기 권한을 확인하거나 --profile로 다른 파일을 지정하세요"
	case errors.Is(err, ErrConfig):
		return "--config 파일 내용을 확인하세요 (vagrant-shim init으로 템플릿 생성 가능)"
	case errors.Is(err, ErrCancelled):
		return "--force로 확인 없이 교체할 수 있습니다"
	default:
		return ""
	}
}
