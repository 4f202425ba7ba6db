// Package preset loads partial stack selections from CUE preset files.
//
// Teams check a preset into their repo and run
// `mkstack create --preset team.cue`; the preset's fields behave exactly
// like explicitly supplied flags, including Strict-mode conflict
// reporting.
package preset

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/mkstack/mkstack/internal/stack"
)

//go:embed schema.cue
var schemaCUE string

// presetFile is the decode target for the unified CUE value. Set fields
// use pointers so an omitted field is distinguishable from an empty one.
type presetFile struct {
	Backend        *string   `json:"backend"`
	Runtime        *string   `json:"runtime"`
	Database       *string   `json:"database"`
	ORM            *string   `json:"orm"`
	Auth           *bool     `json:"auth"`
	DBSetup        *string   `json:"db-setup"`
	API            *string   `json:"api"`
	Frontend       *[]string `json:"frontend"`
	Addons         *[]string `json:"addons"`
	Examples       *[]string `json:"examples"`
	WebDeploy      *string   `json:"web-deploy"`
	PackageManager *string   `json:"package-manager"`
	Git            *bool     `json:"git"`
	Install        *bool     `json:"install"`
}

// Load reads a preset file, validates it against the embedded #Preset
// schema, and returns the partial configuration it declares. Fields the
// preset omits are absent from the map.
func Load(path string, reg *stack.Registry) (map[stack.FieldID]stack.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal: preset schema: %w", err)
	}

	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	if !val.LookupPath(cue.ParsePath("preset")).Exists() {
		return nil, fmt.Errorf("preset %s: missing top-level %q field", path, "preset")
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, fmt.Errorf("preset %s rejected by schema: %w", path, err)
	}

	presetVal := unified.LookupPath(cue.ParsePath("preset"))

	var pf presetFile
	if err := presetVal.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decoding preset %s: %w", path, err)
	}

	partial := make(map[stack.FieldID]stack.Value)
	scalar := func(id stack.FieldID, p *string) {
		if p != nil {
			partial[id] = stack.Scalar(*p)
		}
	}
	boolean := func(id stack.FieldID, p *bool) {
		if p != nil {
			partial[id] = stack.Bool(*p)
		}
	}
	set := func(id stack.FieldID, p *[]string) {
		if p != nil {
			partial[id] = reg.Canonical(id, stack.Members(*p...))
		}
	}

	scalar(stack.FieldBackend, pf.Backend)
	scalar(stack.FieldRuntime, pf.Runtime)
	scalar(stack.FieldDatabase, pf.Database)
	scalar(stack.FieldORM, pf.ORM)
	boolean(stack.FieldAuth, pf.Auth)
	scalar(stack.FieldDBSetup, pf.DBSetup)
	scalar(stack.FieldAPI, pf.API)
	set(stack.FieldFrontend, pf.Frontend)
	set(stack.FieldAddons, pf.Addons)
	set(stack.FieldExamples, pf.Examples)
	scalar(stack.FieldWebDeploy, pf.WebDeploy)
	scalar(stack.FieldPackageManager, pf.PackageManager)
	boolean(stack.FieldGit, pf.Git)
	boolean(stack.FieldInstall, pf.Install)

	return partial, nil
}
