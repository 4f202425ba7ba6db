package serialize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstack/mkstack/internal/stack"
)

func TestURLState_RoundTrip(t *testing.T) {
	// For any resolver-stable s, decode(encode(s)) == s.
	res := newTestResolver(t)
	reg := res.Registry()

	for _, tc := range commandCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := resolveInput(t, res, tc.input)

			state := EncodeURLState(reg, cfg)
			decoded, err := DecodeURLState(reg, state)
			require.NoError(t, err)
			assert.True(t, decoded.Equal(cfg))
		})
	}
}

func TestEncodeURLState_OneParamPerField(t *testing.T) {
	res := newTestResolver(t)
	reg := res.Registry()

	state := EncodeURLState(reg, reg.Defaults())
	params := strings.Split(state, "&")
	assert.Len(t, params, len(reg.Fields()))
	assert.Contains(t, state, "frontend=tanstack-router")
	assert.Contains(t, state, "db-setup=none", "the empty selection is carried, not dropped")
}

func TestDecodeURLState_MissingFieldsTakeDefaults(t *testing.T) {
	reg := stack.NewRegistry()

	cfg, err := DecodeURLState(reg, "database=postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.ScalarOf(stack.FieldDatabase))
	assert.Equal(t, "prisma", cfg.ScalarOf(stack.FieldORM),
		"conditional defaults follow the decoded database")
	assert.Equal(t, "hono", cfg.ScalarOf(stack.FieldBackend))
}

func TestDecodeURLState_SetParams(t *testing.T) {
	reg := stack.NewRegistry()

	cfg, err := DecodeURLState(reg, "frontend=nuxt&addons=pwa%2Cturborepo&examples=none")
	require.NoError(t, err)
	assert.Equal(t, []string{"nuxt"}, cfg.MembersOf(stack.FieldFrontend))
	assert.Equal(t, []string{"pwa", "turborepo"}, cfg.MembersOf(stack.FieldAddons))
	assert.Empty(t, cfg.MembersOf(stack.FieldExamples))
}

func TestDecodeURLState_RejectsUnknownParameter(t *testing.T) {
	reg := stack.NewRegistry()

	_, err := DecodeURLState(reg, "database=postgres&cloud=aws")
	assert.ErrorContains(t, err, "unknown state parameter")
}

func TestDecodeURLState_RejectsOutOfDomainValue(t *testing.T) {
	reg := stack.NewRegistry()

	_, err := DecodeURLState(reg, "database=oracle")
	assert.ErrorContains(t, err, "invalid state")
}

func TestDecodeURLState_MalformedQuery(t *testing.T) {
	reg := stack.NewRegistry()

	_, err := DecodeURLState(reg, "database=%zz")
	assert.ErrorContains(t, err, "malformed state query")
}
