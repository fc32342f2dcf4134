package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FallasDeArranqueDevuelvenCodigoUno(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	t.Run("configuración inválida", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		assert.Equal(t, 1, run())
	})

	t.Run("almacenamiento inaccesible", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "archivo")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("SQLITE_PATH", filepath.Join(blocker, "sub", "bank.db"))
		assert.Equal(t, 1, run())
	})
}
