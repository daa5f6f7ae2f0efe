package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// configTemplate는 vagrant-shim init이 생성하는 기본 config.toml 내용이다.
const configTemplate = `# vagrant-shim configuration file
# CLI 플래그가 이 파일의 값보다 우선한다.

version = 1
# image = "vagrantlibvirt/vagrant-libvirt"
# tag = "latest"
# engine = "podman"
# socket_dir = "/var/run/libvirt/"
# profile = "~/.bashrc"
# vagrant_home = "~/.vagrant.d"
`

func (a *App) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "기본 설정 파일을 생성한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "기존 설정 파일을 덮어쓴다")
	return cmd
}

func (a *App) runInit(cmd *cobra.Command, force bool) error {
	if _, err := os.Stat(a.CfgPath); err == nil && !force {
		return fmt.Errorf("cli.init: 설정 파일이 이미 존재합니다: %s", a.CfgPath)
	}

	if err := os.MkdirAll(filepath.Dir(a.CfgPath), 0700); err != nil {
		return fmt.Errorf("cli.init: 디렉토리 생성 실패: %w", err)
	}
	if err := os.WriteFile(a.CfgPath, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("cli.init: 설정 파일 생성 실패: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "설정 파일이 생성되었습니다: %s\n", a.CfgPath)
	return nil
}
