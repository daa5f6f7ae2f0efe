package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbjs97/vagrant-shim/internal/cli"
	"github.com/hbjs97/vagrant-shim/internal/profile"
	"github.com/hbjs97/vagrant-shim/internal/shell"
	"github.com/hbjs97/vagrant-shim/internal/testutil"
)

type stubConfirmer struct {
	answer bool
	asked  int
}

func (s *stubConfirmer) RunConfirm(string) (bool, error) {
	s.asked++
	return s.answer, nil
}

type stubShadow bool

func (s stubShadow) FunctionDefined(context.Context, string) (bool, error) {
	return bool(s), nil
}

// testEnv는 임시 HOME과 bash 셸을 가진 App을 준비한다.
type testEnv struct {
	app     *cli.App
	fake    *testutil.FakeCommander
	confirm *stubConfirmer
	home    string
	dir     string
}

func newTestEnv(t *testing.T, dotfiles ...string) *testEnv {
	t.Helper()
	home := testutil.TempHome(t, dotfiles...)
	t.Setenv("SHELL", "/bin/bash")
	dir := t.TempDir()

	fake := testutil.NewFakeCommander()
	fake.Register("bash --norc --noprofile -i -c", shell.ProbePresent, nil)
	fake.RegisterPath("podman", "/usr/bin/podman")
	confirm := &stubConfirmer{}

	return &testEnv{
		app: &cli.App{
			Commander: fake,
			CfgPath:   filepath.Join(dir, "config.toml"),
			StatePath: filepath.Join(dir, "state.json"),
			Confirmer: confirm,
			Shadow:    stubShadow(false),
			Now:       func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) },
		},
		fake:    fake,
		confirm: confirm,
		home:    home,
		dir:     dir,
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := e.app.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.app.CfgPath, []byte(content), 0600))
}

func TestInstallCmd_LinuxBash(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	rc := filepath.Join(env.home, ".bashrc")
	require.NoError(t, os.WriteFile(rc, []byte("export PATH=/x\n"), 0644))

	out, err := env.run(t, "install", "--os", "linux", "--image", "vagrant-libvirt")
	require.NoError(t, err)

	content := testutil.ReadProfile(t, rc)
	assert.True(t, strings.HasPrefix(content, "export PATH=/x\n\nvagrant(){\n"))
	assert.True(t, strings.HasSuffix(content, "\n}\n"))
	assert.Contains(t, content, "vagrant-libvirt:latest")
	assert.Contains(t, content, "/var/run/libvirt/:/var/run/libvirt/")

	assert.Contains(t, out, "설치되었습니다")
	assert.Contains(t, out, "profile_file")
	assert.False(t, env.fake.Called("brew"))

	_, err = os.Stat(env.app.StatePath)
	assert.NoError(t, err, "install must be recorded")
}

func TestInstallCmd_Idempotent(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	rc := filepath.Join(env.home, ".bashrc")

	_, err := env.run(t, "install", "--os", "linux", "--no-verify")
	require.NoError(t, err)
	first := testutil.ReadProfile(t, rc)

	out, err := env.run(t, "install", "--os", "linux", "--no-verify")
	require.NoError(t, err)

	assert.Equal(t, first, testutil.ReadProfile(t, rc))
	assert.Contains(t, out, "이미 최신입니다")
}

func TestInstallCmd_FlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	env.writeConfig(t, `version = 1
image = "registry.local/vagrant"
tag = "0.11.0"
engine = "docker"
`)

	_, err := env.run(t, "install", "--os", "linux", "--tag", "0.12.2", "--no-verify")
	require.NoError(t, err)

	content := testutil.ReadProfile(t, filepath.Join(env.home, ".bashrc"))
	assert.Contains(t, content, "registry.local/vagrant:0.12.2")
	assert.Contains(t, content, "  docker run -it --rm")
}

func TestInstallCmd_ConfigProfileWithTilde(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(t, `profile = "~/dotfiles/shellrc"`)

	_, err := env.run(t, "install", "--os", "linux", "--no-verify")
	require.NoError(t, err)

	assert.Contains(t, testutil.ReadProfile(t, filepath.Join(env.home, "dotfiles", "shellrc")), shell.StartMarker)
}

func TestInstallCmd_DarwinProbesHomebrew(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("SHELL", "/bin/zsh")
	env.fake.Register("brew list --versions libvirt", "libvirt 10.0.0", nil)
	env.fake.Register("brew --prefix", "/usr/local", nil)

	_, err := env.run(t, "install", "--os", "darwin", "--no-verify")
	require.NoError(t, err)

	content := testutil.ReadProfile(t, filepath.Join(env.home, ".zshrc"))
	assert.Contains(t, content, "/usr/local/var/run/libvirt/:/var/run/libvirt/")
}

func TestInstallCmd_Cancelled(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	env.app.Shadow = stubShadow(true)

	_, err := env.run(t, "install", "--os", "linux")
	require.Error(t, err)

	assert.ErrorIs(t, err, cli.ErrCancelled)
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(err))
	assert.Equal(t, 1, env.confirm.asked)
	assert.Empty(t, testutil.ReadProfile(t, filepath.Join(env.home, ".bashrc")))
}

func TestInstallCmd_ForceSkipsConfirmation(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	env.app.Shadow = stubShadow(true)

	_, err := env.run(t, "install", "--os", "linux", "--force", "--no-verify")
	require.NoError(t, err)

	assert.Zero(t, env.confirm.asked)
	assert.Contains(t, testutil.ReadProfile(t, filepath.Join(env.home, ".bashrc")), shell.StartMarker)
}

func TestInstallCmd_ReadOnlyProfile(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	env.app.Fs = afero.NewReadOnlyFs(afero.NewOsFs())

	_, err := env.run(t, "install", "--os", "linux", "--no-verify")
	require.Error(t, err)

	assert.ErrorIs(t, err, cli.ErrFilesystem)
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(err))
	assert.NotEmpty(t, cli.Hint(err))
	assert.Empty(t, testutil.ReadProfile(t, filepath.Join(env.home, ".bashrc")))
}

func TestInstallCmd_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	env.writeConfig(t, "version = [")

	_, err := env.run(t, "install", "--os", "linux")
	assert.ErrorIs(t, err, cli.ErrConfig)
}

func TestRenderCmd_PrintsBlockWithoutWriting(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "render", "--os", "linux", "--image", "vagrant-libvirt", "--tag", "edge", "--socket-dir", "/srv/libvirt/")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "vagrant(){\n"))
	assert.Contains(t, out, "vagrant-libvirt:edge")
	assert.Contains(t, out, "/srv/libvirt/:/var/run/libvirt/")
	_, err = os.Stat(filepath.Join(env.home, ".bashrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestUninstallCmd(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	rc := filepath.Join(env.home, ".bashrc")
	require.NoError(t, os.WriteFile(rc, []byte("alias ll='ls -l'\n"), 0644))

	_, err := env.run(t, "install", "--os", "linux", "--no-verify")
	require.NoError(t, err)

	out, err := env.run(t, "uninstall")
	require.NoError(t, err)

	assert.Contains(t, out, "제거했습니다")
	assert.Equal(t, "alias ll='ls -l'\n", testutil.ReadProfile(t, rc))
}

func TestDoctorCmd(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	_, err := env.run(t, "install", "--os", "linux", "--no-verify")
	require.NoError(t, err)

	out, err := env.run(t, "doctor")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(env.home, ".bashrc"))
	for _, name := range []string{"profile_file", "profile_syntax", "session", "podman", "socket_dir"} {
		assert.Contains(t, out, name)
	}
}

func TestDoctorCmd_UsesInstalledBlock(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	_, err := env.run(t, "install", "--os", "linux", "--image", "example/custom", "--tag", "v2", "--no-verify")
	require.NoError(t, err)

	out, err := env.run(t, "doctor")
	require.NoError(t, err)

	assert.Contains(t, out, "설치 기록과 같은 블록 있음")
	assert.NotContains(t, out, "MISSING] profile_file")
}

func TestDoctorCmd_ImageFlagOverridesRecord(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	_, err := env.run(t, "install", "--os", "linux", "--image", "example/custom", "--tag", "v2", "--no-verify")
	require.NoError(t, err)

	out, err := env.run(t, "doctor", "--os", "linux", "--image", "example/custom", "--tag", "v2")
	require.NoError(t, err)
	assert.Contains(t, out, "블록 있음")
	assert.NotContains(t, out, "MISSING] profile_file")

	out, err = env.run(t, "doctor", "--os", "linux", "--image", "example/other")
	require.NoError(t, err)
	assert.Contains(t, out, "최신 블록 없음")
}

func TestDoctorCmd_ReportsUnknownSession(t *testing.T) {
	env := newTestEnv(t, ".bashrc")
	env.fake.Register("bash --norc --noprofile -i -c", "", fmt.Errorf("exec: bash: not found"))

	out, err := env.run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "세션 실행 실패")
}

func TestStatusCmd(t *testing.T) {
	env := newTestEnv(t, ".zshrc")
	t.Setenv("SHELL", "/usr/bin/zsh")

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "설치 기록이 없습니다")

	_, err = env.run(t, "install", "--os", "linux", "--no-verify")
	require.NoError(t, err)

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(env.home, ".zshrc"))
	assert.Contains(t, out, "vagrantlibvirt/vagrant-libvirt:latest")
	assert.Contains(t, out, "2026-10-15T00:00:00Z")
}

func TestInitCmd(t *testing.T) {
	env := newTestEnv(t)
	env.app.CfgPath = filepath.Join(env.dir, "nested", "config.toml")

	out, err := env.run(t, "init", "--config", env.app.CfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "설정 파일이 생성되었습니다")

	info, err := os.Stat(env.app.CfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = env.run(t, "init", "--config", env.app.CfgPath)
	assert.Error(t, err)

	_, err = env.run(t, "init", "--force", "--config", env.app.CfgPath)
	assert.NoError(t, err)

	// 생성된 템플릿은 그대로 로드 가능해야 한다.
	_, err = env.run(t, "render", "--os", "linux", "--config", env.app.CfgPath)
	assert.NoError(t, err)
}

func TestRootCmd_Flags(t *testing.T) {
	app := &cli.App{Commander: testutil.NewFakeCommander(), CfgPath: "/tmp/test-config.toml"}
	cmd := app.NewRootCmd()

	install, _, err := cmd.Find([]string{"install"})
	require.NoError(t, err)
	for _, name := range []string{"image", "tag", "profile", "force", "socket-dir", "engine", "os"} {
		assert.NotNil(t, install.Flags().Lookup(name), "install --%s", name)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestMapExitCode(t *testing.T) {
	assert.Equal(t, cli.ExitSuccess, cli.MapExitCode(nil))
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(fmt.Errorf("wrap: %w", cli.ErrConfig)))
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(&profile.FilesystemError{Op: "rename", Path: "/x", Err: os.ErrPermission}))
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(fmt.Errorf("anything")))
	assert.Empty(t, cli.Hint(fmt.Errorf("anything")))
}
