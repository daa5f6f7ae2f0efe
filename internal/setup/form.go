package setup

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/hbjs97/vagrant-shim/internal/profile"
)

// HuhConfirmer는 charmbracelet/huh 기반의 확인 프롬프트다.
type HuhConfirmer struct{}

var _ profile.Confirmer = (*HuhConfirmer)(nil)

// RunConfirm은 확인 프롬프트를 표시한다. Ctrl+C는 거절로 처리한다.
func (h *HuhConfirmer) RunConfirm(message string) (bool, error) {
	var confirm bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("교체").
			Negative("취소").
			Value(&confirm),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("setup.RunConfirm: %w", err)
	}
	return confirm, nil
}
