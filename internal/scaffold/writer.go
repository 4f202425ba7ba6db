// Package scaffold turns a resolved configuration into files on disk.
//
// This is the thin downstream collaborator layer: it only reads the final
// configuration and never participates in resolving it. Template content
// beyond the project manifest, README stub and .gitignore is out of
// scope; the GitInitializer and Installer interfaces are where the real
// git/package-manager invocations hang, with recording fakes in tests.
package scaffold

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mkstack/mkstack/internal/stack"
)

// Manifest is the mkstack.yaml written into every generated project. It
// is the durable form of the resolved configuration plus the command that
// reproduces it.
type Manifest struct {
	Project string            `yaml:"project"`
	Command string            `yaml:"command"`
	Stack   map[string]string `yaml:"stack"`
}

// GitInitializer initializes a git repository in a generated project.
type GitInitializer interface {
	Init(dir string) error
}

// Installer installs dependencies with the selected package manager.
type Installer interface {
	Install(dir, packageManager string) error
}

// Writer writes a generated project skeleton.
type Writer struct {
	reg       *stack.Registry
	git       GitInitializer
	installer Installer
	logger    *slog.Logger
}

// NewWriter wires a Writer with its collaborators. Pass NopGit/NopInstaller
// to disable the respective step regardless of configuration.
func NewWriter(reg *stack.Registry, git GitInitializer, installer Installer, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{reg: reg, git: git, installer: installer, logger: logger}
}

// Write creates the project directory and its starter files, then runs
// the git and install steps when the configuration asks for them.
// The target directory must not already exist.
func (w *Writer) Write(cfg stack.Config, dir, project, command string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %s already exists", dir)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	if err := w.writeManifest(cfg, dir, project, command); err != nil {
		return err
	}
	if err := w.writeReadme(dir, project, command); err != nil {
		return err
	}
	if err := writeGitignore(dir); err != nil {
		return err
	}

	if cfg.BoolOf(stack.FieldGit) {
		if err := w.git.Init(dir); err != nil {
			return fmt.Errorf("initializing git repository: %w", err)
		}
		w.logger.Debug("git repository initialized", "dir", dir)
	}
	if cfg.BoolOf(stack.FieldInstall) {
		pm := cfg.ScalarOf(stack.FieldPackageManager)
		if err := w.installer.Install(dir, pm); err != nil {
			return fmt.Errorf("installing dependencies with %s: %w", pm, err)
		}
		w.logger.Debug("dependencies installed", "dir", dir, "package-manager", pm)
	}
	return nil
}

func (w *Writer) writeManifest(cfg stack.Config, dir, project, command string) error {
	m := Manifest{
		Project: project,
		Command: command,
		Stack:   make(map[string]string, len(w.reg.Fields())),
	}
	for _, f := range w.reg.Fields() {
		m.Stack[string(f.ID)] = cfg.ValueOf(f.ID).String()
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return writeFile(filepath.Join(dir, "mkstack.yaml"), data)
}

func (w *Writer) writeReadme(dir, project, command string) error {
	readme := fmt.Sprintf("# %s\n\nGenerated by mkstack.\n\nReproduce this stack with:\n\n    %s\n", project, command)
	return writeFile(filepath.Join(dir, "README.md"), []byte(readme))
}

func writeGitignore(dir string) error {
	const gitignore = "node_modules/\ndist/\n.env\n.env.local\n"
	return writeFile(filepath.Join(dir, ".gitignore"), []byte(gitignore))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
