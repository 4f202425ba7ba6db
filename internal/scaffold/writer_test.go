package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mkstack/mkstack/internal/stack"
)

type recordingGit struct {
	dirs []string
}

func (g *recordingGit) Init(dir string) error {
	g.dirs = append(g.dirs, dir)
	return nil
}

type recordingInstaller struct {
	dirs []string
	pms  []string
}

func (i *recordingInstaller) Install(dir, pm string) error {
	i.dirs = append(i.dirs, dir)
	i.pms = append(i.pms, pm)
	return nil
}

func TestWriter_Write(t *testing.T) {
	reg := stack.NewRegistry()
	git := &recordingGit{}
	installer := &recordingInstaller{}
	w := NewWriter(reg, git, installer, nil)

	dir := filepath.Join(t.TempDir(), "my-app")
	cfg := reg.Defaults()
	command := "mkstack create my-app"

	require.NoError(t, w.Write(cfg, dir, "my-app", command))

	for _, name := range []string{"mkstack.yaml", "README.md", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "%s missing", name)
	}

	assert.Equal(t, []string{dir}, git.dirs)
	assert.Equal(t, []string{dir}, installer.dirs)
	assert.Equal(t, []string{"bun"}, installer.pms)
}

func TestWriter_ManifestRoundTrips(t *testing.T) {
	reg := stack.NewRegistry()
	w := NewWriter(reg, NopGit{}, NopInstaller{}, nil)

	dir := filepath.Join(t.TempDir(), "my-app")
	cfg := reg.Defaults().With(stack.FieldDatabase, stack.Scalar("postgres"))
	command := "mkstack create my-app --database postgres"

	require.NoError(t, w.Write(cfg, dir, "my-app", command))

	data, err := os.ReadFile(filepath.Join(dir, "mkstack.yaml"))
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "my-app", m.Project)
	assert.Equal(t, command, m.Command)
	assert.Equal(t, "postgres", m.Stack["database"])
	assert.Len(t, m.Stack, len(reg.Fields()))
}

func TestWriter_SkipsGitAndInstallWhenDisabled(t *testing.T) {
	reg := stack.NewRegistry()
	git := &recordingGit{}
	installer := &recordingInstaller{}
	w := NewWriter(reg, git, installer, nil)

	cfg := reg.Defaults().
		With(stack.FieldGit, stack.Bool(false)).
		With(stack.FieldInstall, stack.Bool(false))

	dir := filepath.Join(t.TempDir(), "my-app")
	require.NoError(t, w.Write(cfg, dir, "my-app", "mkstack create my-app --no-git --no-install"))

	assert.Empty(t, git.dirs)
	assert.Empty(t, installer.dirs)
}

func TestWriter_RefusesExistingDirectory(t *testing.T) {
	reg := stack.NewRegistry()
	w := NewWriter(reg, NopGit{}, NopInstaller{}, nil)

	dir := t.TempDir()
	err := w.Write(reg.Defaults(), dir, "my-app", "mkstack create my-app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWriter_ReadmeMentionsCommand(t *testing.T) {
	reg := stack.NewRegistry()
	w := NewWriter(reg, NopGit{}, NopInstaller{}, nil)

	dir := filepath.Join(t.TempDir(), "my-app")
	command := "mkstack create my-app --backend convex"
	require.NoError(t, w.Write(reg.Defaults(), dir, "my-app", command))

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# my-app")
	assert.Contains(t, string(readme), command)
}
