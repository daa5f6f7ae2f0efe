package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/setup"
	"github.com/hbjs97/vagrant-shim/internal/state"
	"github.com/hbjs97/vagrant-shim/internal/verify"
)

var (
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	absentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	fixStyle     = lipgloss.NewStyle().Faint(true).PaddingLeft(6)
)

func (a *App) newDoctorCmd() *cobra.Command {
	var (
		flags       resolveFlags
		profilePath string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "설치 상태와 실행 환경을 진단한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd, &flags, profilePath)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&profilePath, "profile", "", "진단할 프로필 파일 (자동 선택 대신 사용)")
	return cmd
}

func (a *App) runDoctor(cmd *cobra.Command, f *resolveFlags, profilePath string) error {
	out := cmd.OutOrStdout()

	req, err := a.request(f, profilePath)
	if err != nil {
		fmt.Fprintf(out, "  [%s] config: %v\n", absentStyle.Render("FAIL"), err)
		fmt.Fprintln(out, fixStyle.Render("Fix: "+Hint(err)))
		return nil
	}

	results, path, err := a.diagnose(cmd.Context(), cmd, req, f.isZero())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "프로필: %s (%s)\n", path, req.Family)
	printResults(out, results)
	return nil
}

// diagnose는 블록을 다시 렌더링해 진단한다.
// useRecord가 true이고 설치 기록이 있으면 렌더링 결과 대신 기록된 블록 해시와 비교한다.
func (a *App) diagnose(ctx context.Context, cmd *cobra.Command, req setup.Request, useRecord bool) ([]verify.Result, string, error) {
	r := a.runner(cmd)
	cfg, _, block, err := r.Resolve(ctx, req)
	if err != nil {
		return nil, "", err
	}
	path := req.ProfilePath
	if path == "" {
		home, err := homeDir()
		if err != nil {
			return nil, "", err
		}
		path = setup.LocateProfile(req.Family, home, "", setup.FileExists(r.Fs))
	} else {
		path = setup.LocateProfile(req.Family, "", path, nil)
	}

	target := verify.Target{
		Path:      path,
		Block:     block,
		Family:    req.Family,
		Engine:    cfg.Engine,
		SocketDir: cfg.HostSocketDir,
	}
	if useRecord {
		target.BlockHash = a.recordedHash(r.Fs, path)
	}
	return verify.RunAll(ctx, r.Fs, a.Commander, target), path, nil
}

// recordedHash는 path의 설치 기록에 남은 블록 해시를 반환한다. 기록이 없으면 빈 문자열이다.
func (a *App) recordedHash(fsys afero.Fs, path string) string {
	s, err := state.Load(fsys, a.statePath())
	if err != nil {
		return ""
	}
	if target, err := profile.ResolveLinks(fsys, path); err == nil {
		path = target
	}
	e, ok := s.Get(path)
	if !ok {
		return ""
	}
	return e.BlockHash
}

// printResults는 진단 결과 목록을 출력한다.
func printResults(w io.Writer, results []verify.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "  [%s] %s: %s\n", statusIcon(r.Status), r.Name, r.Message)
		if r.Fix != "" {
			fmt.Fprintln(w, fixStyle.Render("Fix: "+r.Fix))
		}
	}
}

func statusIcon(s verify.Status) string {
	switch s {
	case verify.StatusPresent:
		return presentStyle.Render("OK")
	case verify.StatusAbsent:
		return absentStyle.Render("MISSING")
	default:
		return unknownStyle.Render("??")
	}
}
