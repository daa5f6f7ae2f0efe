// Package verify는 설치 결과를 독립적으로 확인한다.
// 각 항목은 Present, Absent, Unknown 중 하나이며 확인할 수 없는 항목은 Absent가 아니라 Unknown이다.
// 이 패키지는 프로필 파일을 수정하지 않는다.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/spf13/afero"

	"github.com/hbjs97/vagrant-shim/internal/cmdexec"
	"github.com/hbjs97/vagrant-shim/internal/logging"
	"github.com/hbjs97/vagrant-shim/internal/platform"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/shell"
	"github.com/hbjs97/vagrant-shim/internal/state"
)

// Status는 진단 결과 상태다.
type Status string

const (
	// StatusPresent는 확인된 상태다.
	StatusPresent Status = "PRESENT"
	// StatusAbsent는 확인 결과 없는 상태다.
	StatusAbsent Status = "ABSENT"
	// StatusUnknown은 확인할 수 없었던 상태다.
	StatusUnknown Status = "UNKNOWN"
)

// Result는 하나의 진단 결과다.
type Result struct {
	Name    string
	Status  Status
	Message string
	Fix     string
}

// CheckFile은 프로필 파일에 expectedBlock이 그대로 들어 있는지 확인한다.
func CheckFile(fsys afero.Fs, path, expectedBlock string) Result {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{
			Name:    "profile_file",
			Status:  StatusAbsent,
			Message: fmt.Sprintf("%s 파일 없음", path),
			Fix:     "vagrant-shim install 실행",
		}
	}
	if err != nil {
		return Result{
			Name:    "profile_file",
			Status:  StatusUnknown,
			Message: fmt.Sprintf("%s 읽기 실패: %v", path, err),
		}
	}
	if !bytes.Contains(data, []byte(expectedBlock)) {
		return Result{
			Name:    "profile_file",
			Status:  StatusAbsent,
			Message: fmt.Sprintf("%s에 최신 블록 없음", path),
			Fix:     "vagrant-shim install 실행",
		}
	}
	return Result{
		Name:    "profile_file",
		Status:  StatusPresent,
		Message: fmt.Sprintf("%s에 블록 있음", path),
	}
}

// CheckRecorded는 프로필에 설치 기록의 해시와 같은 블록이 있는지 확인한다.
func CheckRecorded(fsys afero.Fs, path, blockHash string) Result {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{
			Name:    "profile_file",
			Status:  StatusAbsent,
			Message: fmt.Sprintf("%s 파일 없음", path),
			Fix:     "vagrant-shim install 실행",
		}
	}
	if err != nil {
		return Result{
			Name:    "profile_file",
			Status:  StatusUnknown,
			Message: fmt.Sprintf("%s 읽기 실패: %v", path, err),
		}
	}
	for _, text := range profile.BlockTexts(string(data)) {
		if state.HashBlock(text) == blockHash {
			return Result{
				Name:    "profile_file",
				Status:  StatusPresent,
				Message: fmt.Sprintf("%s에 설치 기록과 같은 블록 있음", path),
			}
		}
	}
	return Result{
		Name:    "profile_file",
		Status:  StatusAbsent,
		Message: fmt.Sprintf("%s에 설치 기록과 같은 블록 없음", path),
		Fix:     "vagrant-shim install 실행",
	}
}

// CheckSyntax는 프로필을 파싱하여 name 함수 정의가 있는지 확인한다.
func CheckSyntax(fsys afero.Fs, path, name string) Result {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{Name: "profile_syntax", Status: StatusAbsent, Message: fmt.Sprintf("%s 파일 없음", path)}
	}
	if err != nil {
		return Result{Name: "profile_syntax", Status: StatusUnknown, Message: fmt.Sprintf("%s 읽기 실패: %v", path, err)}
	}

	names, err := shell.DefinedFunctions(bytes.NewReader(data), path)
	if err != nil {
		return Result{
			Name:    "profile_syntax",
			Status:  StatusUnknown,
			Message: fmt.Sprintf("프로필 파싱 실패: %v", err),
		}
	}
	for _, n := range names {
		if n == name {
			return Result{Name: "profile_syntax", Status: StatusPresent, Message: fmt.Sprintf("%s() 정의 파싱됨", name)}
		}
	}
	return Result{
		Name:    "profile_syntax",
		Status:  StatusAbsent,
		Message: fmt.Sprintf("%s() 정의 없음", name),
		Fix:     "vagrant-shim install 실행",
	}
}

// sessionEnv는 대화형 세션이 터미널 설정이나 히스토리를 건드리지 않도록 한다.
var sessionEnv = map[string]string{"TERM": "dumb", "HISTFILE": "/dev/null"}

// SessionArgs는 rc 파일을 읽지 않는 새 대화형 셸 세션에서 script를 실행할 인자를 반환한다.
// 대화형이 아니면 `case $- in *i*)` 가드가 있는 프로필이 source 도중 return한다.
func SessionArgs(family platform.Family, script string) []string {
	if family == platform.Zsh {
		return []string{"-f", "-i", "-c", script}
	}
	return []string{"--norc", "--noprofile", "-i", "-c", script}
}

// CheckSession은 새 셸 세션에서 프로필을 source한 뒤 name 함수가 로드되는지 확인한다.
func CheckSession(ctx context.Context, cmd cmdexec.Commander, family platform.Family, path, name string) Result {
	script, err := shell.SourceProbeScript(path, name)
	if err != nil {
		return Result{Name: "session", Status: StatusUnknown, Message: err.Error()}
	}

	bin := family.Binary()
	out, err := cmd.RunWithEnv(ctx, sessionEnv, bin, SessionArgs(family, script)...)
	if err != nil {
		logger := logging.Get("verify")
		logger.Debug().Err(err).Str("shell", bin).Msg("Session probe failed")
		return Result{
			Name:    "session",
			Status:  StatusUnknown,
			Message: fmt.Sprintf("%s 세션 실행 실패: %v", bin, err),
		}
	}

	defined, known := shell.ParseProbe(out)
	switch {
	case !known:
		return Result{
			Name:    "session",
			Status:  StatusUnknown,
			Message: fmt.Sprintf("%s 세션 출력 해석 불가: %s", bin, strings.TrimSpace(string(out))),
		}
	case !defined:
		return Result{
			Name:    "session",
			Status:  StatusAbsent,
			Message: fmt.Sprintf("새 %s 세션에 %s() 없음", bin, name),
			Fix:     fmt.Sprintf("%s 내용을 확인하세요", path),
		}
	default:
		return Result{
			Name:    "session",
			Status:  StatusPresent,
			Message: fmt.Sprintf("새 %s 세션에서 %s() 로드됨", bin, name),
		}
	}
}

// CheckBinaries는 컨테이너 엔진 CLI가 PATH에 있는지 확인한다.
func CheckBinaries(cmd cmdexec.Commander, engine string) []Result {
	path, err := cmd.LookPath(engine)
	if errors.Is(err, exec.ErrNotFound) {
		return []Result{{
			Name:    engine,
			Status:  StatusAbsent,
			Message: fmt.Sprintf("%s 없음", engine),
			Fix:     fmt.Sprintf("%s를 설치하거나 --engine으로 다른 엔진을 지정하세요", engine),
		}}
	}
	if err != nil {
		return []Result{{Name: engine, Status: StatusUnknown, Message: err.Error()}}
	}
	return []Result{{Name: engine, Status: StatusPresent, Message: path}}
}

// CheckSocketDir은 libvirt 소켓 디렉토리가 호스트에 있는지 확인한다 (권고).
func CheckSocketDir(fsys afero.Fs, dir string) Result {
	info, err := fsys.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{
			Name:    "socket_dir",
			Status:  StatusAbsent,
			Message: fmt.Sprintf("%s 없음", dir),
			Fix:     "libvirtd가 실행 중인지 확인하세요",
		}
	}
	if err != nil {
		return Result{Name: "socket_dir", Status: StatusUnknown, Message: err.Error()}
	}
	if !info.IsDir() {
		return Result{Name: "socket_dir", Status: StatusAbsent, Message: fmt.Sprintf("%s는 디렉토리가 아님", dir)}
	}
	return Result{Name: "socket_dir", Status: StatusPresent, Message: dir}
}

// Target은 RunAll이 확인할 대상이다.
// BlockHash가 있으면 Block 대신 설치 기록의 해시로 파일을 확인한다.
type Target struct {
	Path      string
	Block     string
	BlockHash string
	Family    platform.Family
	Engine    string
	SocketDir string
}

// RunAll은 모든 진단을 실행한다.
func RunAll(ctx context.Context, fsys afero.Fs, cmd cmdexec.Commander, t Target) []Result {
	var results []Result
	if t.BlockHash != "" {
		results = append(results, CheckRecorded(fsys, t.Path, t.BlockHash))
	} else {
		results = append(results, CheckFile(fsys, t.Path, t.Block))
	}
	results = append(results, CheckSyntax(fsys, t.Path, shell.FuncName))
	results = append(results, CheckSession(ctx, cmd, t.Family, t.Path, shell.FuncName))
	results = append(results, CheckBinaries(cmd, t.Engine)...)
	results = append(results, CheckSocketDir(fsys, t.SocketDir))
	return results
}
