package cufile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
    // cufile configuration
    "properties": {
        "allow_compat_mode": false,
        "max_direct_io_size_kb": 16384,
        "use_poll_mode": false
    }
}`

func TestPatchCompatModeRequired(t *testing.T) {
	var out strings.Builder
	err := patchCompatMode(strings.NewReader(sampleConfig), &out, true)
	require.NoError(t, err)

	got := strings.Split(out.String(), "\n")
	want := strings.Split(sampleConfig, "\n")
	require.Len(t, got, len(want)+1) // trailing newline

	for i, line := range want {
		if strings.Contains(line, compatModeTag) {
			require.Equal(t, `        "allow_compat_mode": true,`, got[i])
			continue
		}
		require.Equal(t, line, got[i])
	}
}

func TestPatchCompatModeOptional(t *testing.T) {
	var out strings.Builder
	err := patchCompatMode(strings.NewReader(sampleConfig), &out, false)
	require.NoError(t, err)
	require.Contains(t, out.String(), `"allow_compat_mode": false,`)
	require.NotContains(t, out.String(), `"allow_compat_mode": true`)
}

func TestPolicyFromEnv(t *testing.T) {
	cases := []struct {
		val  string
		want Policy
	}{
		{"OFF", PolicyOff},
		{"GDS", PolicyGDS},
		{"ALWAYS", PolicyAlways},
		{"bogus", PolicyOff},
	}
	for _, tc := range cases {
		t.Run(tc.val, func(t *testing.T) {
			t.Setenv(policyEnvVar, tc.val)
			require.Equal(t, tc.want, policyFromEnv())
		})
	}
}

func TestPolicyDefault(t *testing.T) {
	// Unset resolves to the compiled-in default: enabled but optional.
	t.Setenv(policyEnvVar, "")
	os.Unsetenv(policyEnvVar)
	require.Equal(t, PolicyGDS, policyFromEnv())
}

func TestPolicyPredicates(t *testing.T) {
	require.False(t, PolicyOff.Enabled())
	require.True(t, PolicyGDS.Enabled())
	require.False(t, PolicyGDS.Required())
	require.True(t, PolicyAlways.Enabled())
	require.True(t, PolicyAlways.Required())
}

func TestResolveConfigPatchesAndRepoints(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cufile.json")
	require.NoError(t, os.WriteFile(src, []byte(sampleConfig), 0644))

	t.Setenv(policyEnvVar, "ALWAYS")
	t.Setenv(configPathEnvVar, src)

	cfg, err := resolveConfig()
	require.NoError(t, err)
	require.Equal(t, PolicyAlways, cfg.Policy)
	require.NotEmpty(t, cfg.ConfigPath)
	require.NotEqual(t, src, cfg.ConfigPath)

	patched, err := os.ReadFile(cfg.ConfigPath)
	require.NoError(t, err)
	require.Contains(t, string(patched), `"allow_compat_mode": true,`)

	// The caller set the path env var themselves; it must not be clobbered.
	require.Equal(t, src, os.Getenv(configPathEnvVar))
}

func TestResolveConfigDisabledSkipsFile(t *testing.T) {
	t.Setenv(policyEnvVar, "OFF")
	t.Setenv(configPathEnvVar, filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := resolveConfig()
	require.NoError(t, err)
	require.Equal(t, PolicyOff, cfg.Policy)
	require.Empty(t, cfg.ConfigPath)
}

func TestResolveConfigCleansUpOnPatchFailure(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	// A directory opens fine but fails on read, failing the patch after
	// the private temp dir has been created.
	srcDir := filepath.Join(t.TempDir(), "cufile.json")
	require.NoError(t, os.Mkdir(srcDir, 0755))
	t.Setenv(policyEnvVar, "GDS")
	t.Setenv(configPathEnvVar, srcDir)

	_, err := resolveConfig()
	require.ErrorIs(t, err, ErrConfig)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestResolveConfigMissingFileIsFatal(t *testing.T) {
	t.Setenv(policyEnvVar, "GDS")
	t.Setenv(configPathEnvVar, filepath.Join(t.TempDir(), "missing.json"))

	_, err := resolveConfig()
	require.ErrorIs(t, err, ErrConfig)
}
