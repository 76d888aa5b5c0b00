package keygen_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/darsync/internal/keygen"
)

func TestOptions_Args(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"-t", "ed25519", "-f", "/k", "-N", ""},
		keygen.Options{Path: "/k"}.Args())
	assert.Equal(t,
		[]string{"-t", "rsa", "-f", "/k", "-N", "", "-C", "alice@host"},
		keygen.Options{Path: "/k", Type: "rsa", Comment: "alice@host"}.Args())
}

func TestGenerate_PassesOutputThrough(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses echo from PATH")
	}

	path := filepath.Join(t.TempDir(), "nested", "id")

	out, err := keygen.Generate(context.Background(), keygen.Options{Binary: "echo", Path: path})
	require.NoError(t, err)

	assert.Equal(t, "-t ed25519 -f "+path+" -N \n", out.Stdout)
	assert.Empty(t, out.Stderr)
	assert.DirExists(t, filepath.Dir(path))
}

func TestGenerate_RefusesExistingKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "id")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0o600))

	_, err := keygen.Generate(context.Background(), keygen.Options{Path: path})
	require.ErrorIs(t, err, keygen.ErrKeyExists)
}

func TestGenerate_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := keygen.Generate(context.Background(), keygen.Options{
		Binary: "darsync-no-such-keygen",
		Path:   filepath.Join(t.TempDir(), "id"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "darsync-no-such-keygen")
}

func TestGenerate_RealTool(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath(keygen.DefaultBinary); err != nil {
		t.Skip("ssh-keygen not installed")
	}

	path := filepath.Join(t.TempDir(), "id")

	_, err := keygen.Generate(context.Background(), keygen.Options{Path: path, Comment: "darsync test"})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.FileExists(t, path+".pub")
}
