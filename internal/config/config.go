package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// AppName은 설정/상태 디렉토리 이름이다.
const AppName = "vagrant-shim"

// CurrentVersion은 지원하는 설정 파일 버전이다.
const CurrentVersion = 1

// ErrConfig는 설정 파일을 읽거나 해석할 수 없을 때 반환된다.
var ErrConfig = errors.New("invalid configuration")

// Config는 vagrant-shim 설정 파일의 최상위 구조체다.
// 빈 값은 미지정이며 CLI 플래그가 없을 때 resolver 기본값이 사용된다.
type Config struct {
	Version     int    `toml:"version"`
	Image       string `toml:"image,omitempty"`
	Tag         string `toml:"tag,omitempty"`
	Engine      string `toml:"engine,omitempty"`
	SocketDir   string `toml:"socket_dir,omitempty"`
	Profile     string `toml:"profile,omitempty"`
	VagrantHome string `toml:"vagrant_home,omitempty"`
}

// DefaultPath는 $XDG_CONFIG_HOME/vagrant-shim/config.toml을 반환한다.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// Load는 config.toml을 파싱하여 Config를 반환한다.
// 파일이 없으면 빈 설정을 반환한다.
func Load(path string) (*Config, error) {
	cfg := &Config{Version: CurrentVersion}
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{Version: CurrentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w: %w", ErrConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config.Load: %w: 알 수 없는 키: %s", ErrConfig, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save는 Config를 TOML로 저장한다 (0600 권한, 상위 디렉토리 자동 생성).
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("config.Load: %w: 지원하지 않는 version %d", ErrConfig, c.Version)
	}
	if c.SocketDir != "" && !strings.HasPrefix(c.SocketDir, "/") {
		return fmt.Errorf("config.Load: %w: socket_dir는 절대 경로여야 합니다: %s", ErrConfig, c.SocketDir)
	}
	for key, v := range map[string]string{"image": c.Image, "tag": c.Tag, "engine": c.Engine} {
		if strings.ContainsAny(v, " \t\n") {
			return fmt.Errorf("config.Load: %w: %s에 공백을 사용할 수 없습니다: %q", ErrConfig, key, v)
		}
	}
	return nil
}
