package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, SourceModeScrape, cfg.Source.Mode)
	assert.Equal(t, []int{0, 1}, cfg.Planner.LastBlockOffsets)
	assert.Equal(t, -2, cfg.Planner.ShiftMin)
	assert.Equal(t, 10, cfg.Planner.BufferMax)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, StorageDriverLocal, cfg.Exports.StorageDriver)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SOURCE_MODE", "FILE")
	t.Setenv("SOURCE_FILE", "periods.yaml")
	t.Setenv("PLANNER_LAST_BLOCK_OFFSETS", "0, 1, 2")
	t.Setenv("PLANNER_HORIZON_YEARS", "2")
	t.Setenv("CACHE_TTL", "bogus")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceModeFile, cfg.Source.Mode)
	assert.Equal(t, []int{0, 1, 2}, cfg.Planner.LastBlockOffsets)
	assert.Equal(t, 2, cfg.Planner.HorizonYears)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
}

func TestLoadRejectsInvalidOffsets(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLANNER_LAST_BLOCK_OFFSETS", "0,x")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:     EnvDevelopment,
			Source:  SourceConfig{Mode: SourceModeScrape},
			Planner: PlannerConfig{ShiftMin: -2, ShiftMax: 2, BufferMin: 6, BufferMax: 10},
			Exports: ExportsConfig{StorageDriver: StorageDriverLocal},
		}
	}

	require.NoError(t, base().Validate())

	prod := base()
	prod.Env = EnvProduction
	prod.JWT.Secret = "dev_secret"
	assert.Error(t, prod.Validate())

	shift := base()
	shift.Planner.ShiftMin = 3
	assert.Error(t, shift.Validate())

	db := base()
	db.Source.Mode = SourceModeDatabase
	assert.Error(t, db.Validate())

	s3 := base()
	s3.Exports.StorageDriver = StorageDriverS3
	assert.Error(t, s3.Validate())

	unknown := base()
	unknown.Source.Mode = "ftp"
	assert.Error(t, unknown.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
