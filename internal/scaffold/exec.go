package scaffold

import (
	"fmt"
	"os/exec"
)

// ExecGit initializes repositories by shelling out to git.
type ExecGit struct{}

func (ExecGit) Init(dir string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %w: %s", err, out)
	}
	return nil
}

// ExecInstaller runs `<package-manager> install` in the project directory.
type ExecInstaller struct{}

func (ExecInstaller) Install(dir, packageManager string) error {
	cmd := exec.Command(packageManager, "install")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s install: %w: %s", packageManager, err, out)
	}
	return nil
}

// NopGit and NopInstaller disable their step; used for --dry-run-ish
// flows and tests that only care about file output.
type NopGit struct{}

func (NopGit) Init(string) error { return nil }

type NopInstaller struct{}

func (NopInstaller) Install(string, string) error { return nil }
