// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(env map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

var scanConfigTests = []struct {
	name    string
	env     map[string]string
	missing string
}{
	{"all-set", map[string]string{EnvTableName: "orders", EnvPrimaryKeyName: "order_id"}, ""},
	{"no-table", map[string]string{EnvPrimaryKeyName: "order_id"}, EnvTableName},
	{"no-key", map[string]string{EnvTableName: "orders"}, EnvPrimaryKeyName},
	{"empty-table", map[string]string{EnvTableName: "", EnvPrimaryKeyName: "order_id"}, EnvTableName},
	{"empty-key", map[string]string{EnvTableName: "orders", EnvPrimaryKeyName: ""}, EnvPrimaryKeyName},
	{"none", map[string]string{}, EnvTableName},
}

func TestResolveScanConfig(t *testing.T) {
	for _, test := range scanConfigTests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := ResolveScanConfig(mapEnv(test.env))
			if test.missing == "" {
				require.NoError(t, err)
				assert.Equal(t, ScanConfig{
					TableName:      test.env[EnvTableName],
					PrimaryKeyName: test.env[EnvPrimaryKeyName],
				}, cfg)
				return
			}

			var missing *MissingSettingError
			require.True(t, errors.As(err, &missing), "expected MissingSettingError, got %v", err)
			assert.Equal(t, test.missing, missing.Name)
			assert.Contains(t, err.Error(), "missing required configuration")
			assert.Equal(t, ScanConfig{}, cfg)
		})
	}
}

func TestResolveScanConfigValuesUnvalidated(t *testing.T) {
	cfg, err := ResolveScanConfig(mapEnv(map[string]string{
		EnvTableName:      "not a valid table name!",
		EnvPrimaryKeyName: "weird key",
	}))
	require.NoError(t, err)
	assert.Equal(t, "not a valid table name!", cfg.TableName)
	assert.Equal(t, "weird key", cfg.PrimaryKeyName)
	assert.Empty(t, cfg.OutputFile)
}

func TestResolveConnectionProfile(t *testing.T) {
	p, err := ResolveConnectionProfile(mapEnv(map[string]string{EnvProfile: "exporter"}))
	require.NoError(t, err)
	assert.Equal(t, "exporter", p.ProfileName)

	for _, env := range []map[string]string{{}, {EnvProfile: ""}} {
		_, err := ResolveConnectionProfile(mapEnv(env))
		var missing *MissingSettingError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, EnvProfile, missing.Name)
	}
}

func TestResolveFromProcessEnv(t *testing.T) {
	t.Setenv(EnvTableName, "from-env")
	t.Setenv(EnvPrimaryKeyName, "pk")
	t.Setenv(EnvProfile, "default")

	cfg, err := ResolveScanConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TableName)
	assert.Equal(t, "pk", cfg.PrimaryKeyName)

	p, err := ResolveConnectionProfile(OSEnv)
	require.NoError(t, err)
	assert.Equal(t, "default", p.ProfileName)
}
