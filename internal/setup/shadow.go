package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hbjs97/vagrant-shim/internal/cmdexec"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/shell"
)

// shadowTimeout은 대화형 셸 probe의 최대 실행 시간이다.
const shadowTimeout = 5 * time.Second

// SessionShadowChecker는 사용자의 로그인 셸을 대화형으로 띄워
// 같은 이름의 함수가 이미 로드되는지 확인한다.
type SessionShadowChecker struct {
	Commander cmdexec.Commander
	// Shell은 $SHELL 값이다. 비어 있으면 확인할 수 없다.
	Shell string
}

var _ profile.ShadowChecker = (*SessionShadowChecker)(nil)

// FunctionDefined는 name 함수가 사용자 셸에 정의되어 있는지 반환한다.
func (s *SessionShadowChecker) FunctionDefined(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(s.Shell) == "" {
		return false, fmt.Errorf("setup.FunctionDefined: SHELL이 설정되지 않았습니다")
	}
	script, err := shell.ProbeScript(name)
	if err != nil {
		return false, fmt.Errorf("setup.FunctionDefined: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, shadowTimeout)
	defer cancel()

	// 대화형 rc가 프롬프트나 색상 escape를 출력하지 않도록 TERM을 낮춘다.
	out, err := s.Commander.RunWithEnv(ctx, map[string]string{"TERM": "dumb"}, s.Shell, "-i", "-c", script)
	if err != nil {
		return false, fmt.Errorf("setup.FunctionDefined: %w", err)
	}
	defined, known := shell.ParseProbe(out)
	if !known {
		return false, fmt.Errorf("setup.FunctionDefined: 셸 출력 해석 불가: %q", strings.TrimSpace(string(out)))
	}
	return defined, nil
}
