package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/hbjs97/vagrant-shim/internal/cmdexec"
	"github.com/hbjs97/vagrant-shim/internal/logging"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/resolver"
	"github.com/hbjs97/vagrant-shim/internal/shell"
	"github.com/hbjs97/vagrant-shim/internal/state"
	"github.com/hbjs97/vagrant-shim/internal/verify"
)

// Runner는 Resolver → Locator → Injector → Verifier 순서로 설치를 실행한다.
type Runner struct {
	Fs        afero.Fs
	Commander cmdexec.Commander
	Confirmer profile.Confirmer
	Shadow    profile.ShadowChecker
	// StatePath가 비어 있으면 설치 기록을 남기지 않는다.
	StatePath string
	Out       io.Writer
	Now       func() time.Time
}

// Resolve는 요청으로부터 설정과 렌더링된 블록을 계산한다. 파일을 쓰지 않는다.
func (r *Runner) Resolve(ctx context.Context, req Request) (resolver.ResolvedConfig, []resolver.Warning, string, error) {
	cfg, warnings := resolver.New(r.Commander).Resolve(ctx, req.Platform, req.Overrides)
	block, err := shell.RenderFunction(cfg)
	if err != nil {
		return cfg, warnings, "", err
	}
	return cfg, warnings, block, nil
}

// Install은 설치 파이프라인을 실행한다. 거절 시 ErrCancelled를 반환한다.
func (r *Runner) Install(ctx context.Context, req Request) (*Report, error) {
	cfg, warnings, block, err := r.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		fmt.Fprintf(r.out(), "경고: %s\n", w)
	}

	path, err := r.locate(req)
	if err != nil {
		return nil, err
	}
	report := &Report{Config: cfg, ResolverWarnings: warnings, ProfilePath: path}

	inj := profile.NewInjector(r.Fs, profile.WithShadowChecker(r.Shadow), profile.WithConfirmer(r.Confirmer))
	res, err := inj.Install(ctx, path, block, profile.InstallOptions{
		Force:             req.Force,
		OverrideRequested: req.ProfilePath != "",
	})
	if err != nil {
		return nil, err
	}
	report.Result = res

	for _, w := range res.Warnings {
		fmt.Fprintf(r.out(), "경고: %s\n", w)
	}
	if res.Outcome == profile.OutcomeCancelled {
		fmt.Fprintln(r.out(), "설치가 취소되었습니다.")
		return report, ErrCancelled
	}

	if res.Changed {
		fmt.Fprintf(r.out(), "%s() 함수가 설치되었습니다: %s\n", shell.FuncName, res.Path)
	} else {
		fmt.Fprintf(r.out(), "%s() 함수가 이미 최신입니다: %s\n", shell.FuncName, res.Path)
	}
	r.record(res.Path, func(s *state.State) {
		s.Set(res.Path, state.NewEntry(cfg.ImageRef(), block, r.now()))
	})

	if !req.SkipVerify {
		report.Checks = verify.RunAll(ctx, r.Fs, r.Commander, verify.Target{
			Path:      res.Path,
			Block:     block,
			Family:    req.Family,
			Engine:    cfg.Engine,
			SocketDir: cfg.HostSocketDir,
		})
	}
	return report, nil
}

// Uninstall은 생성된 블록을 제거하고 설치 기록을 지운다.
func (r *Runner) Uninstall(ctx context.Context, req Request) (*Report, error) {
	path, err := r.locate(req)
	if err != nil {
		return nil, err
	}

	res, err := profile.NewInjector(r.Fs).Uninstall(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(r.out(), "경고: %s\n", w)
	}

	switch res.Outcome {
	case profile.OutcomeRemoved:
		fmt.Fprintf(r.out(), "%s() 함수를 제거했습니다: %s\n", shell.FuncName, res.Path)
	default:
		fmt.Fprintf(r.out(), "설치된 %s() 블록이 없습니다: %s\n", shell.FuncName, res.Path)
	}
	r.record(res.Path, func(s *state.State) { s.Remove(res.Path) })

	return &Report{ProfilePath: path, Result: res}, nil
}

func (r *Runner) locate(req Request) (string, error) {
	home := req.Home
	if home == "" && req.ProfilePath == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("setup.locate: %w", err)
		}
		home = h
	}
	path := LocateProfile(req.Family, home, req.ProfilePath, FileExists(r.Fs))
	logger := logging.Get("setup")
	logger.Debug().Str("family", req.Family.String()).Str("path", path).Msg("Profile located")
	return path, nil
}

// record는 설치 기록을 갱신한다. 기록 실패는 설치 결과에 영향을 주지 않는다.
func (r *Runner) record(path string, update func(*state.State)) {
	if r.StatePath == "" {
		return
	}
	logger := logging.Get("state")
	s, err := state.Load(r.Fs, r.StatePath)
	if err != nil {
		logger.Warn().Err(err).Msg("State load failed")
		return
	}
	update(s)
	if err := s.Save(r.Fs, r.StatePath); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("State save failed")
	}
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
