package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/darsync/internal/audit"
	"github.com/idelchi/darsync/internal/config"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(config.KeySizeLimit, "", "")
	flags.Int64(config.KeyFilesLimit, 0, "")
	flags.Int64(config.KeyDirFilesLimit, 0, "")
	flags.StringSlice(config.KeyExtensions, nil, "")

	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".darsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	thresholds, err := config.Load(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, audit.DefaultSizeLimit, thresholds.SizeLimit)
	assert.Equal(t, audit.DefaultTotalFilesLimit, thresholds.TotalFilesLimit)
	assert.Equal(t, audit.DefaultDirFileCountLimit, thresholds.DirFileCountLimit)
	assert.Equal(t, audit.DefaultExtensions, thresholds.Extensions)
}

func TestLoad_FileValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `size-limit: 500MiB
files-limit: 2000
dir-files-limit: 50
ext:
  - .bam
  - .csv
  - .bam
`)

	thresholds, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(500<<20), thresholds.SizeLimit)
	assert.Equal(t, int64(2000), thresholds.TotalFilesLimit)
	assert.Equal(t, int64(50), thresholds.DirFileCountLimit)
	assert.Equal(t, []string{".bam", ".csv"}, thresholds.Extensions)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "files-limit: 2000\ndir-files-limit: 50\n")

	t.Setenv("DARSYNC_FILES_LIMIT", "3000")
	t.Setenv("DARSYNC_DIR_FILES_LIMIT", "60")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--dir-files-limit=70", "--ext=.x,.y"}))

	thresholds, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, int64(3000), thresholds.TotalFilesLimit, "env beats file")
	assert.Equal(t, int64(70), thresholds.DirFileCountLimit, "flag beats env")
	assert.Equal(t, []string{".x", ".y"}, thresholds.Extensions)
	assert.Equal(t, audit.DefaultSizeLimit, thresholds.SizeLimit, "unset flag keeps default")
}

func TestLoad_ExtensionsFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"comma separated", ".bam,.csv", []string{".bam", ".csv"}},
		{"space separated", ".bam .csv", []string{".bam", ".csv"}},
		{"mixed with duplicates", " .bam, .csv,,.bam ", []string{".bam", ".csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DARSYNC_EXT", tt.value)

			thresholds, err := config.Load(writeConfig(t, ""), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, thresholds.Extensions)
		})
	}
}

func TestLoad_ExtensionsCommaJoinedInFile(t *testing.T) {
	t.Parallel()

	thresholds, err := config.Load(writeConfig(t, "ext: \".sam,.vcf\"\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".sam", ".vcf"}, thresholds.Extensions)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"extension without dot", "ext: [txt]\n", config.ErrInvalidExtension},
		{"zero dir limit", "dir-files-limit: 0\n", config.ErrInvalidLimit},
		{"negative files limit", "files-limit: -5\n", config.ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeConfig(t, tt.content), nil)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := config.Load(writeConfig(t, "size-limit: lots\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size-limit")

	_, err = config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestThresholds_Apply(t *testing.T) {
	t.Parallel()

	cfg := config.Thresholds{
		SizeLimit:         1,
		TotalFilesLimit:   2,
		DirFileCountLimit: 3,
		Extensions:        []string{".q"},
	}.Apply(audit.ScanConfig{Root: "/r", Prefix: "p"})

	assert.Equal(t, audit.ScanConfig{
		Root:              "/r",
		Prefix:            "p",
		SizeLimit:         1,
		TotalFilesLimit:   2,
		DirFileCountLimit: 3,
		Extensions:        []string{".q"},
	}, cfg)
}
