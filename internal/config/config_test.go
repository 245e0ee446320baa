package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		require.Equal(t, "http://localhost:5000/api", cfg.BaseURL())
		require.Empty(t, cfg.Razorpay.KeyID)
	})

	t.Run("full file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
apiUrl: https://shop.example.com
razorpay:
  keyId: rzp_test_abc
cloudinary:
  cloudName: demo-cloud
  uploadPreset: unsigned
`), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "https://shop.example.com/api", cfg.BaseURL())
		require.Equal(t, "rzp_test_abc", cfg.Razorpay.KeyID)
		require.Equal(t, "demo-cloud", cfg.Cloudinary.CloudName)
		require.Equal(t, "unsigned", cfg.Cloudinary.UploadPreset)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("apiUrl: [unclosed"), 0600))
		_, err := Load(path)
		require.Error(t, err)
	})
}
