package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) newInstallCmd() *cobra.Command {
	var (
		rf          resolveFlags
		profilePath string
		force       bool
		noVerify    bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "셸 프로필에 vagrant() 함수를 설치하거나 갱신한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(&rf, profilePath)
			if err != nil {
				return err
			}
			req.Force = force
			req.SkipVerify = noVerify

			report, err := a.runner(cmd).Install(cmd.Context(), req)
			if err != nil {
				return err
			}
			if len(report.Checks) > 0 {
				printResults(cmd.OutOrStdout(), report.Checks)
			}
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&profilePath, "profile", "", "수정할 프로필 파일 (자동 선택 대신 사용)")
	cmd.Flags().BoolVar(&force, "force", false, "기존 vagrant 함수가 감지되어도 확인 없이 교체")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "설치 후 진단 생략")
	return cmd
}
