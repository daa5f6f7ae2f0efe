package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newRenderCmd() *cobra.Command {
	var rf resolveFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "설치될 vagrant() 함수를 출력한다 (파일을 수정하지 않음)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(&rf, "")
			if err != nil {
				return err
			}
			_, warnings, block, err := a.runner(cmd).Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "경고: %s\n", w)
			}
			fmt.Fprintln(cmd.OutOrStdout(), block)
			return nil
		},
	}

	rf.register(cmd)
	return cmd
}
