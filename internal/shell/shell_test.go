package shell_test

import (
	"strings"
	"testing"

	"github.com/hbjs97/vagrant-shim/internal/resolver"
	"github.com/hbjs97/vagrant-shim/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() resolver.ResolvedConfig {
	return resolver.ResolvedConfig{
		ImageName:        "vagrant-libvirt",
		ImageTag:         "latest",
		HostSocketDir:    "/var/run/libvirt/",
		WorkdirMountExpr: "$(pwd)",
		Engine:           "podman",
		VagrantHome:      "~/.vagrant.d",
	}
}

func TestRenderFunction_Markers(t *testing.T) {
	block, err := shell.RenderFunction(testConfig())
	require.NoError(t, err)

	lines := strings.Split(block, "\n")
	assert.Equal(t, "vagrant(){", lines[0])
	assert.Equal(t, "}", lines[len(lines)-1])
	for _, l := range lines[1 : len(lines)-1] {
		assert.NotEqual(t, "}", l, "body must not contain a column-0 closing brace")
		assert.NotEqual(t, shell.StartMarker, l)
	}
}

func TestRenderFunction_ContainerInvocation(t *testing.T) {
	block, err := shell.RenderFunction(testConfig())
	require.NoError(t, err)

	assert.Contains(t, block, "podman run -it --rm")
	assert.Contains(t, block, "vagrant-libvirt:latest")
	assert.Contains(t, block, "-v /var/run/libvirt/:/var/run/libvirt/")
	assert.Contains(t, block, `-v "$(pwd)":"$(pwd)"`)
	assert.Contains(t, block, `-w "$(pwd)"`)
	assert.Contains(t, block, "-e LIBVIRT_DEFAULT_URI")
	assert.Contains(t, block, "-v ~/.vagrant.d:/.vagrant.d")
	assert.Contains(t, block, `vagrant "$@"`)
}

func TestRenderFunction_HomebrewSocketDir(t *testing.T) {
	cfg := testConfig()
	cfg.HostSocketDir = "/opt/homebrew/var/run/libvirt/"

	block, err := shell.RenderFunction(cfg)
	require.NoError(t, err)
	assert.Contains(t, block, "-v /opt/homebrew/var/run/libvirt/:/var/run/libvirt/")
}

func TestRenderFunction_QuotesUnsafeValues(t *testing.T) {
	cfg := testConfig()
	cfg.HostSocketDir = "/Users/me/lib virt/"

	block, err := shell.RenderFunction(cfg)
	require.NoError(t, err)
	assert.Contains(t, block, "'/Users/me/lib virt/'")
}

func TestRenderFunction_Deterministic(t *testing.T) {
	a, err := shell.RenderFunction(testConfig())
	require.NoError(t, err)
	b, err := shell.RenderFunction(testConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderFunction_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ImageName = ""

	_, err := shell.RenderFunction(cfg)
	assert.Error(t, err)
}

func TestDefinedFunctions(t *testing.T) {
	src := "export PATH=/x\nfoo() { echo hi; }\nfunction bar { :; }\n"

	names, err := shell.DefinedFunctions(strings.NewReader(src), ".bashrc")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, names)
}

func TestDefinedFunctions_ParseError(t *testing.T) {
	_, err := shell.DefinedFunctions(strings.NewReader("foo() {\n  echo unterminated\n"), ".bashrc")
	assert.Error(t, err)
}

func TestProbeScript_ParsesAsShell(t *testing.T) {
	script, err := shell.SourceProbeScript("/home/me/my profile/.bashrc", "vagrant")
	require.NoError(t, err)

	assert.Contains(t, script, `. '/home/me/my profile/.bashrc'`)
	assert.Contains(t, script, "type vagrant")
	_, err = shell.DefinedFunctions(strings.NewReader(script), "probe")
	assert.NoError(t, err)
}

func TestParseProbe(t *testing.T) {
	tests := []struct {
		out            string
		defined, known bool
	}{
		{out: shell.ProbePresent + "\n", defined: true, known: true},
		{out: "some rc noise\n" + shell.ProbeAbsent + "\n", defined: false, known: true},
		{out: "zsh: command not found: type\n", defined: false, known: false},
		{out: "", defined: false, known: false},
	}
	for _, tt := range tests {
		defined, known := shell.ParseProbe([]byte(tt.out))
		assert.Equal(t, tt.defined, defined, "out %q", tt.out)
		assert.Equal(t, tt.known, known, "out %q", tt.out)
	}
}
