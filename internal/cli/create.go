package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkstack/mkstack/internal/history"
	"github.com/mkstack/mkstack/internal/preset"
	"github.com/mkstack/mkstack/internal/prompt"
	"github.com/mkstack/mkstack/internal/resolver"
	"github.com/mkstack/mkstack/internal/scaffold"
	"github.com/mkstack/mkstack/internal/serialize"
	"github.com/mkstack/mkstack/internal/stack"
)

// CreateOptions holds create-specific flags.
type CreateOptions struct {
	Interactive bool
	DryRun      bool
	Preset      string
	HistoryDB   string
}

// createResult is the JSON payload for a successful create.
type createResult struct {
	Project string            `json:"project"`
	Stack   map[string]string `json:"stack"`
	Changes []resolver.Change `json:"changes,omitempty"`
	Command string            `json:"command"`
	State   string            `json:"state"`
	DryRun  bool              `json:"dry_run,omitempty"`
}

// NewCreateCommand creates the create command: flags or prompts in, a
// generated project out.
//
// Flag mode resolves strictly: two conflicting explicit flags abort with
// a message naming both; nothing the user typed is ever silently
// overridden. Interactive mode resolves adaptively after every answer
// and reports each auto-correction as a note.
func NewCreateCommand(rootOpts *RootOptions, res *resolver.Resolver) *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:           "create [project]",
		Short:         "Scaffold a new project",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			project := "my-app"
			if len(args) == 1 {
				project = args[0]
			}
			return runCreate(rootOpts, opts, res, cmd, project)
		},
	}

	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "answer prompts instead of passing flags")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "resolve and print without writing files")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "CUE preset file with a partial stack selection")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "", "override the run-history database path")

	registerStackFlags(cmd, res.Registry())
	return cmd
}

// registerStackFlags declares one flag per registry field, plus the
// negated --no-<flag> spelling for boolean fields so reproducible
// command strings paste straight back in.
func registerStackFlags(cmd *cobra.Command, reg *stack.Registry) {
	for _, f := range reg.Fields() {
		if f.Bool {
			cmd.Flags().Bool(f.Flag, f.Default.AsBool(), fmt.Sprintf("enable %s", f.ID))
			cmd.Flags().Bool("no-"+f.Flag, false, fmt.Sprintf("disable %s", f.ID))
			_ = cmd.Flags().MarkHidden("no-" + f.Flag)
			continue
		}
		usage := fmt.Sprintf("%s (default %s)", f.ID, f.Default)
		cmd.Flags().String(f.Flag, f.Default.String(), usage)
	}
}

// collectStackFlags reads back the explicitly supplied stack flags.
// Defaulted flags are deliberately absent: Strict mode only defends
// values the user actually typed.
func collectStackFlags(cmd *cobra.Command, reg *stack.Registry) (map[stack.FieldID]stack.Value, error) {
	partial := make(map[stack.FieldID]stack.Value)
	for _, f := range reg.Fields() {
		if f.Bool {
			if cmd.Flags().Changed("no-" + f.Flag) {
				partial[f.ID] = stack.Bool(false)
				continue
			}
			if cmd.Flags().Changed(f.Flag) {
				v, err := cmd.Flags().GetBool(f.Flag)
				if err != nil {
					return nil, err
				}
				partial[f.ID] = stack.Bool(v)
			}
			continue
		}
		if cmd.Flags().Changed(f.Flag) {
			raw, err := cmd.Flags().GetString(f.Flag)
			if err != nil {
				return nil, err
			}
			partial[f.ID] = reg.ParseValue(f.ID, raw)
		}
	}
	return partial, nil
}

func runCreate(rootOpts *RootOptions, opts *CreateOptions, res *resolver.Resolver, cmd *cobra.Command, project string) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if err := stack.ValidateProjectName(project); err != nil {
		return WrapExitError(ExitCommandError, "invalid project", err)
	}

	reg := res.Registry()
	partial := make(map[stack.FieldID]stack.Value)

	if opts.Preset != "" {
		fromPreset, err := preset.Load(opts.Preset, reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading preset", err)
		}
		for id, v := range fromPreset {
			partial[id] = v
		}
		formatter.VerboseLog("preset %s supplied %d field(s)", opts.Preset, len(fromPreset))
	}

	fromFlags, err := collectStackFlags(cmd, reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading flags", err)
	}
	for id, v := range fromFlags {
		partial[id] = v
	}

	var final resolver.Result
	if opts.Interactive {
		final, err = runInteractive(res, cmd, partial)
	} else {
		final, err = runStrict(res, partial)
	}
	if err != nil {
		return err
	}

	command := serialize.Command(reg, final.Config, project)
	state := serialize.EncodeURLState(reg, final.Config)

	result := createResult{
		Project: project,
		Stack:   stackMap(reg, final.Config),
		Changes: final.Changes,
		Command: command,
		State:   state,
		DryRun:  opts.DryRun,
	}
	if err := formatter.Emit(result, func(w io.Writer) {
		renderCreate(w, reg, result, final)
	}); err != nil {
		return WrapExitError(ExitCommandError, "writing output", err)
	}

	if opts.DryRun {
		return nil
	}

	writer := scaffold.NewWriter(reg, scaffold.ExecGit{}, scaffold.ExecInstaller{}, nil)
	if err := writer.Write(final.Config, project, project, command); err != nil {
		return WrapExitError(ExitCommandError, "scaffolding project", err)
	}

	recordRun(formatter, opts, reg, final, project, command)
	return nil
}

// runStrict merges flags over defaults and resolves in Strict mode.
func runStrict(res *resolver.Resolver, partial map[stack.FieldID]stack.Value) (resolver.Result, error) {
	reg := res.Registry()
	cfg, derrs := reg.Merge(partial)
	if len(derrs) > 0 {
		verrs := resolver.UnsupportedValueErrors(derrs)
		return resolver.Result{}, WrapExitError(ExitFailure, "invalid stack selection",
			&resolver.ConflictError{Errors: verrs})
	}

	explicit := make(map[stack.FieldID]bool, len(partial))
	for id := range partial {
		explicit[id] = true
	}

	final, err := res.ResolveStrict(cfg, explicit)
	if err != nil {
		var conflict *resolver.ConflictError
		if errors.As(err, &conflict) {
			return resolver.Result{}, WrapExitError(ExitFailure, "incompatible stack selection", conflict)
		}
		return resolver.Result{}, WrapExitError(ExitCommandError, "resolver fault", err)
	}
	return final, nil
}

// runInteractive seeds the prompt chain with any flags already given and
// walks the full question sequence.
func runInteractive(res *resolver.Resolver, cmd *cobra.Command, partial map[stack.FieldID]stack.Value) (resolver.Result, error) {
	reg := res.Registry()
	cfg, derrs := reg.Merge(partial)
	if len(derrs) > 0 {
		verrs := resolver.UnsupportedValueErrors(derrs)
		return resolver.Result{}, WrapExitError(ExitFailure, "invalid stack selection",
			&resolver.ConflictError{Errors: verrs})
	}

	seed, err := res.Resolve(cfg)
	if err != nil {
		return resolver.Result{}, WrapExitError(ExitCommandError, "resolver fault", err)
	}

	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout(), res)
	finalCfg, changes, err := p.Run(seed.Config)
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			return resolver.Result{}, NewExitError(ExitCommandError, "canceled")
		}
		return resolver.Result{}, WrapExitError(ExitCommandError, "prompting", err)
	}
	return resolver.Result{Config: finalCfg, Changes: append(seed.Changes, changes...)}, nil
}

func renderCreate(w io.Writer, reg *stack.Registry, result createResult, final resolver.Result) {
	fmt.Fprintf(w, "Project: %s\n\n", result.Project)
	for _, f := range reg.Fields() {
		fmt.Fprintf(w, "  %-16s %s\n", f.ID, final.Config.ValueOf(f.ID))
	}
	if len(result.Changes) > 0 {
		fmt.Fprintf(w, "\nAdjustments:\n")
		for _, c := range result.Changes {
			fmt.Fprintf(w, "  - %s\n", c.Message)
		}
	}
	fmt.Fprintf(w, "\nReproduce with:\n  %s\n", result.Command)
	fmt.Fprintf(w, "\nShareable builder state:\n  %s\n", result.State)
}

func stackMap(reg *stack.Registry, cfg stack.Config) map[string]string {
	out := make(map[string]string, len(reg.Fields()))
	for _, f := range reg.Fields() {
		out[string(f.ID)] = cfg.ValueOf(f.ID).String()
	}
	return out
}

// recordRun appends to the local run history. History is a convenience;
// failures are reported verbosely but never fail the create.
func recordRun(formatter *OutputFormatter, opts *CreateOptions, reg *stack.Registry, final resolver.Result, project, command string) {
	path := opts.HistoryDB
	if path == "" {
		var err error
		if path, err = defaultHistoryPath(); err != nil {
			formatter.VerboseLog("history disabled: %v", err)
			return
		}
	}

	store, err := history.Open(path)
	if err != nil {
		formatter.VerboseLog("history disabled: %v", err)
		return
	}
	defer store.Close()

	cfgJSON, err := json.Marshal(stackMap(reg, final.Config))
	if err != nil {
		formatter.VerboseLog("history skipped: %v", err)
		return
	}
	run := history.Run{
		CreatedAt:  time.Now(),
		Directory:  project,
		Command:    command,
		ConfigJSON: string(cfgJSON),
	}
	if err := store.Record(context.Background(), run); err != nil {
		formatter.VerboseLog("history skipped: %v", err)
	}
}

// defaultHistoryPath places the history database under the user config
// directory, creating the mkstack subdirectory on first use.
func defaultHistoryPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "mkstack")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
