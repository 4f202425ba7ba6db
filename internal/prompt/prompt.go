// Package prompt implements the sequential interactive prompt chain.
//
// Each answer is committed through a full Adaptive resolve before the
// next question is shown, and candidate lists are filtered through the
// resolver's speculative check, so the user is never offered an option
// that would immediately be corrected away.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mkstack/mkstack/internal/resolver"
	"github.com/mkstack/mkstack/internal/stack"
)

// ErrCanceled is returned when the user aborts the chain (EOF / Ctrl-D).
// The caller terminates the whole run; no partial configuration survives.
var ErrCanceled = errors.New("prompt canceled")

var labels = map[stack.FieldID]string{
	stack.FieldBackend:        "Backend framework",
	stack.FieldRuntime:        "Runtime",
	stack.FieldDatabase:       "Database",
	stack.FieldORM:            "ORM",
	stack.FieldAuth:           "Include authentication",
	stack.FieldDBSetup:        "Database setup",
	stack.FieldAPI:            "API style",
	stack.FieldFrontend:       "Frontends",
	stack.FieldAddons:         "Addons",
	stack.FieldExamples:       "Example apps",
	stack.FieldWebDeploy:      "Web deploy target",
	stack.FieldPackageManager: "Package manager",
	stack.FieldGit:            "Initialize a git repository",
	stack.FieldInstall:        "Install dependencies",
}

// Prompter runs the chain against one reader/writer pair. All I/O stays
// here; the resolver never blocks.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
	res *resolver.Resolver
}

// New creates a Prompter. in is typically stdin; tests feed a scripted
// strings.Reader.
func New(in io.Reader, out io.Writer, res *resolver.Resolver) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, res: res}
}

// Run walks every field in registry order, starting from initial
// (defaults overlaid with whatever flags were already given), and returns
// the final resolved configuration plus every auto-correction recorded
// along the way.
func (p *Prompter) Run(initial stack.Config) (stack.Config, []resolver.Change, error) {
	cfg := initial
	var changes []resolver.Change

	for _, f := range p.res.Registry().Fields() {
		answered, err := p.ask(f, cfg)
		if err != nil {
			return stack.Config{}, nil, err
		}
		res, err := p.res.Resolve(answered)
		if err != nil {
			return stack.Config{}, nil, err
		}
		for _, c := range res.Changes {
			fmt.Fprintf(p.out, "  note: %s\n", c.Message)
		}
		changes = append(changes, res.Changes...)
		cfg = res.Config
	}
	return cfg, changes, nil
}

func (p *Prompter) ask(f stack.Field, cfg stack.Config) (stack.Config, error) {
	if f.Bool {
		return p.askBool(f, cfg)
	}
	if f.Arity == stack.Multi {
		return p.askMulti(f, cfg)
	}
	return p.askSingle(f, cfg)
}

func (p *Prompter) askSingle(f stack.Field, cfg stack.Config) (stack.Config, error) {
	candidates := p.compatible(f, cfg)
	current := cfg.ScalarOf(f.ID)

	fmt.Fprintf(p.out, "%s [%s]:\n", labels[f.ID], current)
	for i, c := range candidates {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}

	for {
		line, err := p.readLine()
		if err != nil {
			return stack.Config{}, err
		}
		if line == "" {
			return cfg, nil
		}
		if choice, ok := pick(candidates, line); ok {
			return cfg.With(f.ID, stack.Scalar(choice)), nil
		}
		fmt.Fprintf(p.out, "  pick one of the listed options\n")
	}
}

func (p *Prompter) askMulti(f stack.Field, cfg stack.Config) (stack.Config, error) {
	candidates := p.compatible(f, cfg)
	current := cfg.ValueOf(f.ID)

	fmt.Fprintf(p.out, "%s [%s] (comma-separated, %q for none):\n", labels[f.ID], current, stack.None)
	for i, c := range candidates {
		marker := " "
		if current.Has(c) {
			marker = "*"
		}
		fmt.Fprintf(p.out, "  %d)%s %s\n", i+1, marker, c)
	}

	for {
		line, err := p.readLine()
		if err != nil {
			return stack.Config{}, err
		}
		if line == "" {
			return cfg, nil
		}
		if line == stack.None {
			return cfg.With(f.ID, stack.EmptySet()), nil
		}
		members, ok := pickAll(candidates, line)
		if !ok {
			fmt.Fprintf(p.out, "  pick from the listed options\n")
			continue
		}
		reg := p.res.Registry()
		return cfg.With(f.ID, reg.Canonical(f.ID, stack.Members(members...))), nil
	}
}

func (p *Prompter) askBool(f stack.Field, cfg stack.Config) (stack.Config, error) {
	def := "y/N"
	if cfg.BoolOf(f.ID) {
		def = "Y/n"
	}
	fmt.Fprintf(p.out, "%s? [%s] ", labels[f.ID], def)

	for {
		line, err := p.readLine()
		if err != nil {
			return stack.Config{}, err
		}
		switch strings.ToLower(line) {
		case "":
			return cfg, nil
		case "y", "yes", "true":
			return cfg.With(f.ID, stack.Bool(true)), nil
		case "n", "no", "false":
			return cfg.With(f.ID, stack.Bool(false)), nil
		}
		fmt.Fprintf(p.out, "  answer y or n: ")
	}
}

// compatible filters a field's domain through the speculative check. The
// current selection is always offered so "keep what I have" never
// disappears from the menu.
func (p *Prompter) compatible(f stack.Field, cfg stack.Config) []string {
	var out []string
	for _, c := range f.Domain {
		if cfg.ValueOf(f.ID).Has(c) || cfg.ScalarOf(f.ID) == c || p.res.IsCompatible(cfg, f.ID, c) {
			out = append(out, c)
		}
	}
	return out
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrCanceled
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// pick resolves a menu answer: a 1-based index or a literal value.
func pick(candidates []string, answer string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1], true
		}
		return "", false
	}
	for _, c := range candidates {
		if c == answer {
			return c, true
		}
	}
	return "", false
}

func pickAll(candidates []string, answer string) ([]string, bool) {
	var out []string
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, ok := pick(candidates, part)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}
