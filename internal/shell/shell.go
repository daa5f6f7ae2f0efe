package shell

import (
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/hbjs97/vagrant-shim/internal/resolver"
)

const (
	// FuncName은 생성되는 셸 함수 이름이다.
	FuncName = "vagrant"
	// StartMarker는 GeneratedBlock의 첫 줄이다 (column 0).
	StartMarker = FuncName + "(){"
	// EndMarker는 GeneratedBlock의 마지막 줄이다 (column 0).
	EndMarker = "}"

	// ContainerSocketDir은 컨테이너 안의 libvirt 소켓 디렉토리다.
	ContainerSocketDir = "/var/run/libvirt/"
	// ContainerVagrantHome은 컨테이너 안의 vagrant 데이터 디렉토리다.
	ContainerVagrantHome = "/.vagrant.d"
	// URIEnv는 컨테이너로 그대로 전달되는 libvirt 접속 URI 환경변수다.
	URIEnv = "LIBVIRT_DEFAULT_URI"
)

// RenderFunction은 cfg로부터 vagrant() 함수 블록을 생성한다.
// 결과는 cfg에 대해 결정적이며 마지막 줄은 EndMarker이고 개행으로 끝나지 않는다.
func RenderFunction(cfg resolver.ResolvedConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("shell.RenderFunction: %w", err)
	}

	image, err := quote(cfg.ImageRef())
	if err != nil {
		return "", err
	}
	socket, err := quote(cfg.HostSocketDir)
	if err != nil {
		return "", err
	}
	home, err := quoteHome(cfg.VagrantHome)
	if err != nil {
		return "", err
	}
	engine, err := quote(cfg.Engine)
	if err != nil {
		return "", err
	}
	workdir := `"` + cfg.WorkdirMountExpr + `"`

	lines := []string{
		StartMarker,
		fmt.Sprintf("  %s run -it --rm \\", engine),
		fmt.Sprintf("    -e %s \\", URIEnv),
		fmt.Sprintf("    -v %s:%s \\", socket, ContainerSocketDir),
		fmt.Sprintf("    -v %s:%s \\", home, ContainerVagrantHome),
		fmt.Sprintf("    -v %s:%s \\", workdir, workdir),
		fmt.Sprintf("    -w %s \\", workdir),
		"    --network host \\",
		"    --security-opt label=disable \\",
		fmt.Sprintf("    %s \\", image),
		fmt.Sprintf(`      %s "$@"`, FuncName),
		EndMarker,
	}
	block := strings.Join(lines, "\n")

	names, err := DefinedFunctions(strings.NewReader(block), "generated")
	if err != nil {
		return "", fmt.Errorf("shell.RenderFunction: 생성된 블록 파싱 실패: %w", err)
	}
	if len(names) != 1 || names[0] != FuncName {
		return "", fmt.Errorf("shell.RenderFunction: 예상치 못한 함수 정의 %v", names)
	}

	return block, nil
}

// DefinedFunctions는 셸 소스에서 정의된 함수 이름을 순서대로 반환한다.
func DefinedFunctions(r io.Reader, name string) ([]string, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(r, name)
	if err != nil {
		return nil, err
	}

	var names []string
	syntax.Walk(file, func(node syntax.Node) bool {
		if fn, ok := node.(*syntax.FuncDecl); ok {
			names = append(names, fn.Name.Value)
		}
		return true
	})
	return names, nil
}

func quote(s string) (string, error) {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("shell.quote: %w", err)
	}
	return q, nil
}

// quoteHome은 선행 "~/"를 따옴표 밖에 두어 tilde 확장이 유지되도록 한다.
func quoteHome(s string) (string, error) {
	if rest, ok := strings.CutPrefix(s, "~/"); ok {
		q, err := quote(rest)
		if err != nil {
			return "", err
		}
		return "~/" + q, nil
	}
	return quote(s)
}

const (
	// ProbePresent는 함수가 로드되었을 때 probe 스크립트가 출력하는 값이다.
	ProbePresent = "__vagrant_shim_present__"
	// ProbeAbsent는 함수가 없을 때 probe 스크립트가 출력하는 값이다.
	ProbeAbsent = "__vagrant_shim_absent__"
)

// ProbeScript는 name이 셸 함수로 정의되어 있는지 출력하는 스크립트를 반환한다.
// bash와 zsh 모두 `type` 출력에 "function"을 포함한다.
func ProbeScript(name string) (string, error) {
	q, err := quote(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`case "$(type %s 2>/dev/null)" in *function*) echo %s;; *) echo %s;; esac`,
		q, ProbePresent, ProbeAbsent), nil
}

// SourceProbeScript는 profilePath를 source한 뒤 ProbeScript를 실행하는 스크립트를 반환한다.
func SourceProbeScript(profilePath, name string) (string, error) {
	p, err := quote(profilePath)
	if err != nil {
		return "", err
	}
	probe, err := ProbeScript(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(". %s >/dev/null 2>&1\n%s", p, probe), nil
}

// ParseProbe는 probe 출력을 해석한다. known이 false면 출력에 표식이 없는 것이다.
func ParseProbe(out []byte) (defined, known bool) {
	s := string(out)
	switch {
	case strings.Contains(s, ProbePresent):
		return true, true
	case strings.Contains(s, ProbeAbsent):
		return false, true
	default:
		return false, false
	}
}
