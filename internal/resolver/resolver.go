package resolver

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hbjs97/vagrant-shim/internal/cmdexec"
	"github.com/hbjs97/vagrant-shim/internal/logging"
	"github.com/hbjs97/vagrant-shim/internal/platform"
)

const (
	// DefaultImageName은 기본 컨테이너 이미지 저장소다.
	DefaultImageName = "vagrantlibvirt/vagrant-libvirt"
	// DefaultImageTag는 기본 이미지 태그다.
	DefaultImageTag = "latest"
	// DefaultSocketDir은 일반 Unix의 libvirt 소켓 디렉토리다.
	DefaultSocketDir = "/var/run/libvirt/"
	// DefaultBrewPrefix는 brew --prefix 조회 실패 시 사용하는 Homebrew 경로다.
	DefaultBrewPrefix = "/opt/homebrew"
	// DefaultWorkdirMountExpr은 호출 디렉토리를 나타내는 셸 표현식이다.
	DefaultWorkdirMountExpr = "$(pwd)"
	// DefaultEngine은 컨테이너 CLI다.
	DefaultEngine = "podman"
	// DefaultVagrantHome은 컨테이너의 /.vagrant.d에 마운트되는 호스트 경로다.
	DefaultVagrantHome = "~/.vagrant.d"

	brewPackage = "libvirt"
)

// ResolvedConfig는 한 번의 실행에서 계산되는 불변 설정이다.
type ResolvedConfig struct {
	ImageName        string `validate:"required"`
	ImageTag         string `validate:"required"`
	HostSocketDir    string `validate:"required,startswith=/"`
	WorkdirMountExpr string `validate:"required"`
	Engine           string `validate:"required"`
	VagrantHome      string `validate:"required"`
}

// ImageRef는 "name:tag" 형식의 이미지 참조를 반환한다.
func (c ResolvedConfig) ImageRef() string {
	return c.ImageName + ":" + c.ImageTag
}

var validate = validator.New()

// Validate는 ResolvedConfig의 불변식을 검사한다.
func (c ResolvedConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("resolver.Validate: %w", err)
	}
	return nil
}

// Overrides는 CLI 플래그나 설정 파일로 지정된 값이다. 빈 문자열은 미지정이다.
type Overrides struct {
	ImageName   string
	ImageTag    string
	SocketDir   string
	Engine      string
	VagrantHome string
}

// Warning은 해석 과정에서 발생한 비치명적 경고(ProbeWarning)다.
type Warning struct {
	Probe   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Probe, w.Message)
}

// Resolver는 플랫폼 정보로부터 ResolvedConfig를 계산한다.
type Resolver struct {
	cmd cmdexec.Commander
}

// New는 새 Resolver를 생성한다.
func New(cmd cmdexec.Commander) *Resolver {
	return &Resolver{cmd: cmd}
}

// Resolve는 ResolvedConfig를 계산한다. 실패하지 않으며, 확인할 수 없는 값은
// 기본값으로 대체하고 경고를 남긴다.
func (r *Resolver) Resolve(ctx context.Context, p platform.Platform, o Overrides) (ResolvedConfig, []Warning) {
	logger := logging.Get("resolver")

	cfg := ResolvedConfig{
		ImageName:        firstNonEmpty(o.ImageName, DefaultImageName),
		ImageTag:         firstNonEmpty(o.ImageTag, DefaultImageTag),
		WorkdirMountExpr: DefaultWorkdirMountExpr,
		Engine:           firstNonEmpty(o.Engine, DefaultEngine),
		VagrantHome:      firstNonEmpty(o.VagrantHome, DefaultVagrantHome),
	}

	var warnings []Warning
	switch {
	case o.SocketDir != "":
		cfg.HostSocketDir = o.SocketDir
	case p == platform.Darwin:
		dir, w := r.darwinSocketDir(ctx)
		cfg.HostSocketDir = dir
		warnings = append(warnings, w...)
	default:
		cfg.HostSocketDir = DefaultSocketDir
	}

	if !strings.HasPrefix(cfg.HostSocketDir, "/") {
		warnings = append(warnings, Warning{
			Probe:   "socket_dir",
			Message: fmt.Sprintf("절대 경로가 아닌 소켓 디렉토리 %q 대신 %s 사용", cfg.HostSocketDir, DefaultSocketDir),
		})
		cfg.HostSocketDir = DefaultSocketDir
	}

	for _, w := range warnings {
		logger.Warn().Str("probe", w.Probe).Msg(w.Message)
	}
	logger.Debug().
		Str("platform", p.String()).
		Str("image", cfg.ImageRef()).
		Str("socket_dir", cfg.HostSocketDir).
		Msg("Configuration resolved")

	return cfg, warnings
}

// darwinSocketDir는 Homebrew libvirt 설치를 확인하여 소켓 디렉토리를 결정한다.
func (r *Resolver) darwinSocketDir(ctx context.Context) (string, []Warning) {
	logging.LogCommand("resolver", "brew", []string{"list", "--versions", brewPackage})
	out, err := r.cmd.Run(ctx, "brew", "list", "--versions", brewPackage)
	if err != nil || strings.TrimSpace(string(out)) == "" {
		return DefaultSocketDir, []Warning{{
			Probe:   "homebrew",
			Message: fmt.Sprintf("Homebrew %s 설치를 확인할 수 없어 %s 사용", brewPackage, DefaultSocketDir),
		}}
	}

	var warnings []Warning
	prefix := DefaultBrewPrefix
	out, err = r.cmd.Run(ctx, "brew", "--prefix")
	if p := strings.TrimSpace(string(out)); err == nil && strings.HasPrefix(p, "/") {
		prefix = p
	} else {
		warnings = append(warnings, Warning{
			Probe:   "homebrew",
			Message: fmt.Sprintf("brew --prefix 조회 실패, %s 사용", DefaultBrewPrefix),
		})
	}

	return path.Join(prefix, "var", "run", "libvirt") + "/", warnings
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
