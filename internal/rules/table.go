package rules

import "github.com/mkstack/mkstack/internal/stack"

// Frontend compatibility sets referenced by several rule families.
var (
	// convexIncompatibleFrontends cannot talk to a convex backend.
	convexIncompatibleFrontends = []string{"nuxt", "svelte", "solid"}

	// orpcOnlyFrontends have no trpc client; they force api=orpc.
	orpcOnlyFrontends = []string{"nuxt", "svelte", "solid"}

	// pwaFrontends can host a PWA manifest.
	pwaFrontends = []string{"tanstack-router", "react-router", "solid", "next"}

	// tauriFrontends can be wrapped in a Tauri shell.
	tauriFrontends = []string{"tanstack-router", "react-router", "nuxt", "svelte", "solid", "next"}

	// webFrontends is the full web group, used by deploy compatibility.
	webFrontends = []string{"tanstack-router", "react-router", "tanstack-start", "next", "nuxt", "svelte", "solid"}
)

// dbSetupTuple is the (database, orm) requirement for one db-setup value.
// A nil orm set means the setup has no ORM requirement.
type dbSetupTuple struct {
	setup      string
	database   string
	ormAllowed []string // permitted ORMs; first entry is the forced value
	note       string
}

var dbSetupTuples = []dbSetupTuple{
	{"turso", "sqlite", []string{"drizzle"}, "Turso hosts libSQL; it requires the sqlite database with the drizzle ORM"},
	{"neon", "postgres", nil, "Neon is a hosted Postgres; it requires the postgres database"},
	{"prisma-postgres", "postgres", []string{"prisma"}, "Prisma Postgres requires the postgres database with the prisma ORM"},
	{"mongodb-atlas", "mongodb", []string{"mongoose", "prisma"}, "MongoDB Atlas requires the mongodb database with a document ORM"},
	{"supabase", "postgres", nil, "Supabase is a hosted Postgres; it requires the postgres database"},
	{"docker", "postgres", nil, "Docker Compose setup needs a server database; sqlite runs in-process"},
}

// Table builds the standard mkstack compatibility rule table against the
// given registry.
//
// Rules are plain data rows: adding a technology option means adding rows
// here, not branching in the resolver. The slice is in no particular
// order; the resolver sorts by priority (then ID) once at construction.
func Table(reg *stack.Registry) []Rule {
	var t []Rule
	t = append(t, backendRules()...)
	t = append(t, runtimeRules()...)
	t = append(t, databaseRules()...)
	t = append(t, dbSetupRules()...)
	t = append(t, ormRules()...)
	t = append(t, frontendRules(reg)...)
	t = append(t, addonRules()...)
	t = append(t, exampleRules()...)
	t = append(t, deployRules()...)
	return t
}

// backendRules are the convex and no-backend bundles: a backend choice
// that brings (or removes) the whole server stack.
func backendRules() []Rule {
	convexBundle := []Mutation{
		{stack.FieldRuntime, stack.Scalar(stack.None)},
		{stack.FieldDatabase, stack.Scalar(stack.None)},
		{stack.FieldORM, stack.Scalar(stack.None)},
		{stack.FieldAPI, stack.Scalar(stack.None)},
		{stack.FieldAuth, stack.Bool(false)},
		{stack.FieldDBSetup, stack.Scalar(stack.None)},
		{stack.FieldExamples, stack.Members("todo")},
	}
	noneBundle := []Mutation{
		{stack.FieldRuntime, stack.Scalar(stack.None)},
		{stack.FieldDatabase, stack.Scalar(stack.None)},
		{stack.FieldORM, stack.Scalar(stack.None)},
		{stack.FieldAPI, stack.Scalar(stack.None)},
		{stack.FieldAuth, stack.Bool(false)},
		{stack.FieldDBSetup, stack.Scalar(stack.None)},
	}

	return []Rule{
		{
			ID:       "backend-convex-bundle",
			Priority: PriorityBackend,
			Reads: reads(stack.FieldBackend, stack.FieldRuntime, stack.FieldDatabase,
				stack.FieldORM, stack.FieldAPI, stack.FieldAuth, stack.FieldDBSetup, stack.FieldExamples),
			Writes: writes(stack.FieldRuntime, stack.FieldDatabase, stack.FieldORM,
				stack.FieldAPI, stack.FieldAuth, stack.FieldDBSetup, stack.FieldExamples),
			Driving:      stack.FieldBackend,
			DrivingValue: "convex",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldBackend) == "convex" && bundleViolated(c, convexBundle)
			},
			Patch: func(_ *stack.Registry, c stack.Config) []Mutation {
				return bundleMismatches(c, convexBundle)
			},
			Note: "Convex replaces the server stack; runtime, database, ORM, API and auth are provided by Convex itself",
		},
		{
			ID:           "backend-convex-frontends",
			Priority:     PriorityBackend,
			Reads:        reads(stack.FieldBackend, stack.FieldFrontend),
			Writes:       writes(stack.FieldFrontend),
			Driving:      stack.FieldBackend,
			DrivingValue: "convex",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldBackend) == "convex" &&
					c.HasAny(stack.FieldFrontend, convexIncompatibleFrontends...)
			},
			Patch: func(reg *stack.Registry, c stack.Config) []Mutation {
				v := c.ValueOf(stack.FieldFrontend)
				for _, m := range convexIncompatibleFrontends {
					v = v.Without(m)
				}
				return []Mutation{{stack.FieldFrontend, reg.Canonical(stack.FieldFrontend, v)}}
			},
			Note: "Convex has no client for nuxt, svelte or solid frontends",
		},
		{
			ID:       "backend-none-bundle",
			Priority: PriorityBackend,
			Reads: reads(stack.FieldBackend, stack.FieldRuntime, stack.FieldDatabase,
				stack.FieldORM, stack.FieldAPI, stack.FieldAuth, stack.FieldDBSetup),
			Writes: writes(stack.FieldRuntime, stack.FieldDatabase, stack.FieldORM,
				stack.FieldAPI, stack.FieldAuth, stack.FieldDBSetup),
			Driving:      stack.FieldBackend,
			DrivingValue: stack.None,
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldBackend) == stack.None && bundleViolated(c, noneBundle)
			},
			Patch: func(_ *stack.Registry, c stack.Config) []Mutation {
				return bundleMismatches(c, noneBundle)
			},
			Note: "Without a backend there is no runtime, database, ORM, API or auth to configure",
		},
	}
}

// runtimeRules cover the Cloudflare Workers runtime, which constrains
// backend, database, ORM and db-setup.
func runtimeRules() []Rule {
	return []Rule{
		{
			ID:           "runtime-workers-backend",
			Priority:     PriorityRuntime,
			Reads:        reads(stack.FieldRuntime, stack.FieldBackend),
			Writes:       writes(stack.FieldBackend),
			Driving:      stack.FieldRuntime,
			DrivingValue: "workers",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldRuntime) == "workers" &&
					c.ScalarOf(stack.FieldBackend) != "hono"
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldBackend, stack.Scalar("hono")}}
			},
			Note: "Cloudflare Workers only runs the hono backend",
		},
		{
			ID:           "runtime-workers-database",
			Priority:     PriorityRuntime,
			Reads:        reads(stack.FieldRuntime, stack.FieldDatabase),
			Writes:       writes(stack.FieldDatabase),
			Driving:      stack.FieldRuntime,
			DrivingValue: "workers",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldRuntime) == "workers" &&
					c.ScalarOf(stack.FieldDatabase) == "mongodb"
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldDatabase, stack.Scalar("sqlite")}}
			},
			Note: "Cloudflare Workers cannot reach mongodb; sqlite (D1) is the Workers default",
		},
		{
			ID:           "runtime-workers-orm",
			Priority:     PriorityRuntime,
			Reads:        reads(stack.FieldRuntime, stack.FieldORM),
			Writes:       writes(stack.FieldORM),
			Driving:      stack.FieldRuntime,
			DrivingValue: "workers",
			When: func(c stack.Config) bool {
				orm := c.ScalarOf(stack.FieldORM)
				return c.ScalarOf(stack.FieldRuntime) == "workers" &&
					orm != "drizzle" && orm != stack.None
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldORM, stack.Scalar("drizzle")}}
			},
			Note: "On Cloudflare Workers only the drizzle ORM is supported",
		},
		{
			ID:           "runtime-workers-db-setup",
			Priority:     PriorityRuntime,
			Reads:        reads(stack.FieldRuntime, stack.FieldDBSetup),
			Writes:       writes(stack.FieldDBSetup),
			Driving:      stack.FieldRuntime,
			DrivingValue: "workers",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldRuntime) == "workers" &&
					c.ScalarOf(stack.FieldDBSetup) == "docker"
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldDBSetup, stack.Scalar(stack.None)}}
			},
			Note: "Docker Compose setup is for local runtimes, not Cloudflare Workers",
		},
	}
}

// databaseRules cascade from the database choice to orm, auth and db-setup.
func databaseRules() []Rule {
	return []Rule{
		{
			ID:           "database-none-orm",
			Priority:     PriorityDatabase,
			Reads:        reads(stack.FieldDatabase, stack.FieldORM),
			Writes:       writes(stack.FieldORM),
			Driving:      stack.FieldDatabase,
			DrivingValue: stack.None,
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldDatabase) == stack.None &&
					c.ScalarOf(stack.FieldORM) != stack.None
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldORM, stack.Scalar(stack.None)}}
			},
			Note: "An ORM needs a database",
		},
		{
			ID:           "database-none-auth",
			Priority:     PriorityDatabase,
			Reads:        reads(stack.FieldDatabase, stack.FieldAuth),
			Writes:       writes(stack.FieldAuth),
			Driving:      stack.FieldDatabase,
			DrivingValue: stack.None,
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldDatabase) == stack.None && c.BoolOf(stack.FieldAuth)
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldAuth, stack.Bool(false)}}
			},
			Note: "Auth stores sessions in the database; it needs one",
		},
		{
			ID:           "database-none-db-setup",
			Priority:     PriorityDatabase,
			Reads:        reads(stack.FieldDatabase, stack.FieldDBSetup),
			Writes:       writes(stack.FieldDBSetup),
			Driving:      stack.FieldDatabase,
			DrivingValue: stack.None,
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldDatabase) == stack.None &&
					c.ScalarOf(stack.FieldDBSetup) != stack.None
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldDBSetup, stack.Scalar(stack.None)}}
			},
			Note: "Database setup requires a database",
		},
		{
			ID:           "database-mongodb-orm",
			Priority:     PriorityDatabase,
			Reads:        reads(stack.FieldDatabase, stack.FieldORM),
			Writes:       writes(stack.FieldORM),
			Driving:      stack.FieldDatabase,
			DrivingValue: "mongodb",
			When: func(c stack.Config) bool {
				orm := c.ScalarOf(stack.FieldORM)
				return c.ScalarOf(stack.FieldDatabase) == "mongodb" &&
					orm != "prisma" && orm != "mongoose"
			},
			Patch: func(reg *stack.Registry, c stack.Config) []Mutation {
				return []Mutation{{stack.FieldORM, reg.DefaultFor(stack.FieldORM, c)}}
			},
			Note: "mongodb works with the prisma or mongoose ORM",
		},
	}
}

// dbSetupRules are generated from the tuple table: each hosted setup
// forces any mismatched member of its required (database, orm) pair.
func dbSetupRules() []Rule {
	rules := make([]Rule, 0, len(dbSetupTuples))
	for _, tup := range dbSetupTuples {
		tup := tup
		r := Rule{
			ID:           "db-setup-" + tup.setup,
			Priority:     PriorityDBSetup,
			Reads:        reads(stack.FieldDBSetup, stack.FieldDatabase),
			Writes:       writes(stack.FieldDatabase),
			Driving:      stack.FieldDBSetup,
			DrivingValue: tup.setup,
			Note:         tup.note,
		}
		if tup.ormAllowed != nil {
			r.Reads = append(r.Reads, stack.FieldORM)
			r.Writes = append(r.Writes, stack.FieldORM)
		}
		r.When = func(c stack.Config) bool {
			if c.ScalarOf(stack.FieldDBSetup) != tup.setup {
				return false
			}
			if c.ScalarOf(stack.FieldDatabase) != tup.database {
				return true
			}
			return tup.ormAllowed != nil && !contains(tup.ormAllowed, c.ScalarOf(stack.FieldORM))
		}
		r.Patch = func(_ *stack.Registry, c stack.Config) []Mutation {
			var muts []Mutation
			if c.ScalarOf(stack.FieldDatabase) != tup.database {
				muts = append(muts, Mutation{stack.FieldDatabase, stack.Scalar(tup.database)})
			}
			if tup.ormAllowed != nil && !contains(tup.ormAllowed, c.ScalarOf(stack.FieldORM)) {
				muts = append(muts, Mutation{stack.FieldORM, stack.Scalar(tup.ormAllowed[0])})
			}
			return muts
		}
		rules = append(rules, r)
	}
	return rules
}

// ormRules reset an ORM that no longer fits the selected database. The
// database outranks the ORM, so the ORM yields toward its registry
// default (which is itself conditional on the database).
func ormRules() []Rule {
	return []Rule{
		{
			ID:           "orm-mongoose-requires-mongodb",
			Priority:     PriorityORM,
			Reads:        reads(stack.FieldORM, stack.FieldDatabase),
			Writes:       writes(stack.FieldORM),
			Driving:      stack.FieldORM,
			DrivingValue: "mongoose",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldORM) == "mongoose" &&
					c.ScalarOf(stack.FieldDatabase) != "mongodb"
			},
			Patch: func(reg *stack.Registry, c stack.Config) []Mutation {
				return []Mutation{{stack.FieldORM, reg.DefaultFor(stack.FieldORM, c)}}
			},
			Note: "mongoose only speaks mongodb",
		},
	}
}

// frontendRules keep the frontend set well-formed and force an API style
// the selected frontends can consume.
func frontendRules(reg *stack.Registry) []Rule {
	return []Rule{
		{
			// Normalization of the set itself; runs ahead of the rest
			// of the frontend family so rules keyed on members never
			// see one that is about to be dropped.
			ID:       "frontend-exclusive-groups",
			Priority: PriorityFrontend + 5,
			Reads:    reads(stack.FieldFrontend),
			Writes:   writes(stack.FieldFrontend),
			Driving:  stack.FieldFrontend,
			When: func(c stack.Config) bool {
				return len(groupExcess(reg, c)) > 0
			},
			Patch: func(reg *stack.Registry, c stack.Config) []Mutation {
				v := c.ValueOf(stack.FieldFrontend)
				for _, m := range groupExcess(reg, c) {
					v = v.Without(m)
				}
				return []Mutation{{stack.FieldFrontend, reg.Canonical(stack.FieldFrontend, v)}}
			},
			Note: "At most one web and one native frontend per project",
		},
		{
			ID:       "frontend-api-orpc",
			Priority: PriorityFrontend,
			Reads:    reads(stack.FieldFrontend, stack.FieldAPI),
			Writes:   writes(stack.FieldAPI),
			Driving:  stack.FieldFrontend,
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldAPI) == "trpc" &&
					c.HasAny(stack.FieldFrontend, orpcOnlyFrontends...)
			},
			Patch: func(_ *stack.Registry, _ stack.Config) []Mutation {
				return []Mutation{{stack.FieldAPI, stack.Scalar("orpc")}}
			},
			Note: "nuxt, svelte and solid frontends have no tRPC client; oRPC works with all of them",
		},
	}
}

// addonRules drop set members that lost their required frontend.
func addonRules() []Rule {
	return []Rule{
		dropMemberRule("addons-pwa-needs-frontend", stack.FieldAddons, "pwa", PriorityAddons,
			func(c stack.Config) bool { return !c.HasAny(stack.FieldFrontend, pwaFrontends...) },
			reads(stack.FieldAddons, stack.FieldFrontend),
			"PWA support needs a compatible web frontend"),
		dropMemberRule("addons-tauri-needs-frontend", stack.FieldAddons, "tauri", PriorityAddons,
			func(c stack.Config) bool { return !c.HasAny(stack.FieldFrontend, tauriFrontends...) },
			reads(stack.FieldAddons, stack.FieldFrontend),
			"Tauri wraps a web frontend; none is selected"),
	}
}

// exampleRules drop examples the current stack cannot host.
func exampleRules() []Rule {
	return []Rule{
		dropMemberRule("examples-todo-needs-database", stack.FieldExamples, "todo", PriorityExamples,
			func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldDatabase) == stack.None &&
					c.ScalarOf(stack.FieldBackend) != "convex"
			},
			reads(stack.FieldExamples, stack.FieldDatabase, stack.FieldBackend),
			"The todo example persists its items; it needs a database (or Convex)"),
		dropMemberRule("examples-ai-compat", stack.FieldExamples, "ai", PriorityExamples,
			func(c stack.Config) bool {
				return c.Has(stack.FieldFrontend, "solid") ||
					c.ScalarOf(stack.FieldBackend) == stack.None
			},
			reads(stack.FieldExamples, stack.FieldFrontend, stack.FieldBackend),
			"The AI example needs a backend and has no solid client"),
	}
}

// deployRules reset a deploy target the rest of the stack cannot serve.
func deployRules() []Rule {
	return []Rule{
		{
			ID:           "deploy-workers-needs-web",
			Priority:     PriorityDeploy,
			Reads:        reads(stack.FieldWebDeploy, stack.FieldFrontend),
			Writes:       writes(stack.FieldWebDeploy),
			Driving:      stack.FieldWebDeploy,
			DrivingValue: "workers",
			When: func(c stack.Config) bool {
				return c.ScalarOf(stack.FieldWebDeploy) == "workers" &&
					!c.HasAny(stack.FieldFrontend, webFrontends...)
			},
			Patch: func(reg *stack.Registry, c stack.Config) []Mutation {
				return []Mutation{{stack.FieldWebDeploy, reg.DefaultFor(stack.FieldWebDeploy, c)}}
			},
			Note: "Deploying the web app to Workers needs a web frontend",
		},
	}
}

// dropMemberRule builds the common "remove member X when condition holds"
// rule shape used by the addon and example families.
func dropMemberRule(id string, field stack.FieldID, member string, priority int,
	incompatible func(stack.Config) bool, readSet []stack.FieldID, note string) Rule {
	return Rule{
		ID:           id,
		Priority:     priority,
		Reads:        readSet,
		Writes:       writes(field),
		Driving:      field,
		DrivingValue: member,
		When: func(c stack.Config) bool {
			return c.Has(field, member) && incompatible(c)
		},
		Patch: func(reg *stack.Registry, c stack.Config) []Mutation {
			v := c.ValueOf(field).Without(member)
			return []Mutation{{field, reg.Canonical(field, v)}}
		},
		Note: note,
	}
}

// bundleViolated reports whether any bundle member mismatches.
func bundleViolated(c stack.Config, bundle []Mutation) bool {
	return len(bundleMismatches(c, bundle)) > 0
}

// bundleMismatches returns the bundle members the configuration violates.
func bundleMismatches(c stack.Config, bundle []Mutation) []Mutation {
	var muts []Mutation
	for _, m := range bundle {
		if !c.ValueOf(m.Field).Equal(m.Value) {
			muts = append(muts, m)
		}
	}
	return muts
}

// groupExcess returns grouped frontend members beyond the first of each
// group, in domain order, so the kept member is deterministic.
func groupExcess(reg *stack.Registry, c stack.Config) []string {
	f, _ := reg.Lookup(stack.FieldFrontend)
	seen := map[stack.MemberGroup]bool{}
	var drop []string
	for _, d := range f.Domain {
		if !c.Has(stack.FieldFrontend, d) {
			continue
		}
		g, grouped := f.Groups[d]
		if !grouped {
			continue
		}
		if seen[g] {
			drop = append(drop, d)
		}
		seen[g] = true
	}
	return drop
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
