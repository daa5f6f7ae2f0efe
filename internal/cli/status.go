package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbjs97/vagrant-shim/internal/state"
)

func (a *App) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "마지막 설치 기록을 표시한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus(cmd)
		},
	}
}

func (a *App) runStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	s, err := state.Load(a.fs(), a.statePath())
	if err != nil {
		return err
	}
	if len(s.Entries) == 0 {
		fmt.Fprintln(out, "설치 기록이 없습니다. 'vagrant-shim install'을 실행하세요.")
		return nil
	}

	for _, path := range s.Paths() {
		e, _ := s.Get(path)
		fmt.Fprintf(out, "프로필: %s\n", path)
		fmt.Fprintf(out, "  image:        %s\n", e.Image)
		fmt.Fprintf(out, "  installed at: %s\n", e.InstalledAt)
		fmt.Fprintf(out, "  block sha256: %s\n", e.BlockHash)
	}
	return nil
}
