package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// State는 프로필 경로별 마지막 설치 기록이다.
type State struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Entry는 하나의 설치 기록이다.
type Entry struct {
	Image       string `json:"image"`
	BlockHash   string `json:"block_hash"`
	InstalledAt string `json:"installed_at"`
}

// DefaultPath는 $XDG_STATE_HOME/vagrant-shim/state.json을 반환한다.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "vagrant-shim", "state.json")
}

// New는 빈 상태를 생성한다.
func New() *State {
	return &State{Version: 1, Entries: make(map[string]Entry)}
}

// HashBlock은 렌더링된 블록의 sha256 hex 값을 반환한다.
func HashBlock(block string) string {
	sum := sha256.Sum256([]byte(block))
	return hex.EncodeToString(sum[:])
}

// NewEntry는 지금 시각으로 기록을 만든다.
func NewEntry(image, block string, now time.Time) Entry {
	return Entry{
		Image:       image,
		BlockHash:   HashBlock(block),
		InstalledAt: now.UTC().Format(time.RFC3339),
	}
}

// Load는 상태 파일을 파싱한다. 파일 없음/파싱 실패 시 빈 상태 반환 (graceful).
func Load(fsys afero.Fs, path string) (*State, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state.Load: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return New(), nil
	}
	if s.Entries == nil {
		s.Entries = make(map[string]Entry)
	}
	return &s, nil
}

// Get은 프로필 경로의 기록을 조회한다.
func (s *State) Get(profilePath string) (Entry, bool) {
	e, ok := s.Entries[profilePath]
	return e, ok
}

// Set은 기록을 추가하거나 갱신한다.
func (s *State) Set(profilePath string, entry Entry) {
	s.Entries[profilePath] = entry
}

// Remove는 프로필 경로의 기록을 제거한다.
func (s *State) Remove(profilePath string) {
	delete(s.Entries, profilePath)
}

// Paths는 기록된 프로필 경로를 정렬해 반환한다.
func (s *State) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for p := range s.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Save는 상태를 JSON 파일로 저장한다 (0600 권한).
func (s *State) Save(fsys afero.Fs, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("state.Save: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("state.Save: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0600); err != nil {
		return fmt.Errorf("state.Save: %w", err)
	}
	return nil
}
