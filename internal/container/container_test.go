package container

import (
	"context"
	"path/filepath"
	"testing"

	"gotally/adapters/blobstore"
	"gotally/adapters/sqlite"
	"gotally/internal/config"
	"gotally/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			Backend:     backend,
			SaveDir:     dir,
			SQLitePath:  filepath.Join(dir, "gotally.db"),
			Compression: true,
		},
		Server: config.ServerConfig{Port: "8080"},
		Data:   config.DataConfig{CoercionPolicy: "zero_fill", PreviewRows: 5},
		Log:    config.LogConfig{Level: "INFO"},
	}
}

func TestNewWiresFileBackend(t *testing.T) {
	c, err := New(context.Background(), testConfig(t, config.BackendFile), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &blobstore.LocalBlobStore{}, c.Store)
	assert.NotNil(t, c.Datasets)
	assert.NotNil(t, c.Configuration)
	assert.NotNil(t, c.Dashboard)
	assert.NotNil(t, c.Analysis)
	assert.NotNil(t, c.Query)
}

func TestNewWiresSQLiteBackend(t *testing.T) {
	c, err := New(context.Background(), testConfig(t, config.BackendSQLite), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &sqlite.BlobStore{}, c.Store)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)

	cfg := testConfig(t, "s3")
	_, err = New(context.Background(), cfg, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	cfg = testConfig(t, config.BackendFile)
	cfg.Data.CoercionPolicy = "round"
	_, err = New(context.Background(), cfg, nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
