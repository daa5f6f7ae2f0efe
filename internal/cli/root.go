package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hbjs97/vagrant-shim/internal/cmdexec"
	"github.com/hbjs97/vagrant-shim/internal/config"
	"github.com/hbjs97/vagrant-shim/internal/logging"
	"github.com/hbjs97/vagrant-shim/internal/platform"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/resolver"
	"github.com/hbjs97/vagrant-shim/internal/setup"
	"github.com/hbjs97/vagrant-shim/internal/state"
)

// App은 CLI 실행에 필요한 의존성을 담는다. 빈 필드는 실제 구현으로 채워진다.
type App struct {
	Commander cmdexec.Commander
	CfgPath   string
	StatePath string
	Fs        afero.Fs
	Confirmer profile.Confirmer
	Shadow    profile.ShadowChecker
	Now       func() time.Time

	verbosity int
}

// NewRootCmd는 vagrant-shim CLI의 루트 명령을 생성한다.
func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "vagrant-shim",
		Short:        "컨테이너 기반 vagrant() 셸 함수 설치 도구",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(a.verbosity, cmd.ErrOrStderr())
		},
	}

	cfgDefault := a.CfgPath
	if cfgDefault == "" {
		cfgDefault = config.DefaultPath()
	}
	cmd.PersistentFlags().StringVar(&a.CfgPath, "config", cfgDefault, "설정 파일 경로")
	cmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "상세 출력 (-v, -vv, -vvv)")

	cmd.AddCommand(
		a.newInstallCmd(),
		a.newUninstallCmd(),
		a.newRenderCmd(),
		a.newDoctorCmd(),
		a.newStatusCmd(),
		a.newInitCmd(),
	)
	return cmd
}

// NewRootCmd는 실제 의존성으로 루트 명령을 생성한다.
func NewRootCmd() *cobra.Command {
	app := &App{Commander: &cmdexec.RealCommander{}}
	return app.NewRootCmd()
}

// resolveFlags는 install/render가 공유하는 플래그다.
type resolveFlags struct {
	image     string
	tag       string
	socketDir string
	engine    string
	goos      string
}

// isZero는 블록 내용을 바꾸는 플래그가 하나도 지정되지 않았는지 보고한다.
func (f *resolveFlags) isZero() bool {
	return f.image == "" && f.tag == "" && f.socketDir == "" && f.engine == ""
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.image, "image", "", "컨테이너 이미지 이름 (기본: "+resolver.DefaultImageName+")")
	cmd.Flags().StringVar(&f.tag, "tag", "", "컨테이너 이미지 태그 (기본: "+resolver.DefaultImageTag+")")
	cmd.Flags().StringVar(&f.socketDir, "socket-dir", "", "호스트 libvirt 소켓 디렉토리 (자동 감지 대신 사용)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "컨테이너 CLI (기본: "+resolver.DefaultEngine+")")
	cmd.Flags().StringVar(&f.goos, "os", "", "OS 식별자 강제 지정 (darwin, linux)")
}

// request는 플래그 > 설정 파일 > 기본값 순서로 실행 요청을 만든다.
func (a *App) request(f *resolveFlags, profilePath string) (setup.Request, error) {
	cfg, err := config.Load(a.CfgPath)
	if err != nil {
		return setup.Request{}, err
	}

	p := platform.Current()
	if f != nil && f.goos != "" {
		p = platform.FromGOOS(f.goos)
	}

	req := setup.Request{
		Platform: p,
		Family:   platform.DetectFamily(),
		Overrides: resolver.Overrides{
			ImageName:   cfg.Image,
			ImageTag:    cfg.Tag,
			SocketDir:   cfg.SocketDir,
			Engine:      cfg.Engine,
			VagrantHome: cfg.VagrantHome,
		},
		ProfilePath: firstNonEmpty(profilePath, expandHome(cfg.Profile)),
	}
	if f != nil {
		req.Overrides.ImageName = firstNonEmpty(f.image, req.Overrides.ImageName)
		req.Overrides.ImageTag = firstNonEmpty(f.tag, req.Overrides.ImageTag)
		req.Overrides.SocketDir = firstNonEmpty(f.socketDir, req.Overrides.SocketDir)
		req.Overrides.Engine = firstNonEmpty(f.engine, req.Overrides.Engine)
	}
	return req, nil
}

func (a *App) runner(cmd *cobra.Command) *setup.Runner {
	return &setup.Runner{
		Fs:        a.fs(),
		Commander: a.Commander,
		Confirmer: a.confirmer(),
		Shadow:    a.shadow(),
		StatePath: a.statePath(),
		Out:       cmd.OutOrStdout(),
		Now:       a.Now,
	}
}

func (a *App) fs() afero.Fs {
	if a.Fs == nil {
		return afero.NewOsFs()
	}
	return a.Fs
}

func (a *App) confirmer() profile.Confirmer {
	if a.Confirmer == nil {
		return &setup.HuhConfirmer{}
	}
	return a.Confirmer
}

func (a *App) shadow() profile.ShadowChecker {
	if a.Shadow == nil {
		return &setup.SessionShadowChecker{Commander: a.Commander, Shell: os.Getenv("SHELL")}
	}
	return a.Shadow
}

func (a *App) statePath() string {
	if a.StatePath == "" {
		return state.DefaultPath()
	}
	return a.StatePath
}

// expandHome은 설정 파일의 "~/" 접두어를 홈 디렉토리로 바꾼다.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cli.homeDir: %w", err)
	}
	return home, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
