package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) newUninstallCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "셸 프로필에서 생성된 vagrant() 함수를 제거한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(nil, profilePath)
			if err != nil {
				return err
			}
			_, err = a.runner(cmd).Uninstall(cmd.Context(), req)
			return err
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "수정할 프로필 파일 (자동 선택 대신 사용)")
	return cmd
}
