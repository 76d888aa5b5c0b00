// Package config resolves audit thresholds and the flagged-extension list
// from defaults, an optional YAML file, DARSYNC_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idelchi/darsync/internal/audit"
)

// Sentinel validation errors.
var (
	ErrInvalidExtension = errors.New("flagged extensions must start with '.'")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// Configuration keys. Flags bound to viper use the same names.
const (
	KeySizeLimit     = "size-limit"
	KeyFilesLimit    = "files-limit"
	KeyDirFilesLimit = "dir-files-limit"
	KeyExtensions    = "ext"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "DARSYNC"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = ".darsync.yaml"

// Thresholds are the resolved audit limits.
type Thresholds struct {
	SizeLimit         int64
	TotalFilesLimit   int64
	DirFileCountLimit int64
	Extensions        []string
}

// Apply copies the thresholds into cfg.
func (t Thresholds) Apply(cfg audit.ScanConfig) audit.ScanConfig {
	cfg.SizeLimit = t.SizeLimit
	cfg.TotalFilesLimit = t.TotalFilesLimit
	cfg.DirFileCountLimit = t.DirFileCountLimit
	cfg.Extensions = t.Extensions

	return cfg
}

// Load resolves thresholds. configPath may be empty, in which case
// DefaultFile is used if present. flags may be nil; otherwise flags named
// after the Key constants that were set on the command line take precedence.
func Load(configPath string, flags *pflag.FlagSet) (Thresholds, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viperCfg.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeySizeLimit, KeyFilesLimit, KeyDirFilesLimit, KeyExtensions} {
			if flag := flags.Lookup(key); flag != nil {
				if err := viperCfg.BindPFlag(key, flag); err != nil {
					return Thresholds{}, fmt.Errorf("binding flag %q: %w", key, err)
				}
			}
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return Thresholds{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return resolve(viperCfg)
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault(KeySizeLimit, humanize.IBytes(uint64(audit.DefaultSizeLimit)))
	viperCfg.SetDefault(KeyFilesLimit, audit.DefaultTotalFilesLimit)
	viperCfg.SetDefault(KeyDirFilesLimit, audit.DefaultDirFileCountLimit)
	viperCfg.SetDefault(KeyExtensions, audit.DefaultExtensions)
}

func resolve(viperCfg *viper.Viper) (Thresholds, error) {
	sizeStr := viperCfg.GetString(KeySizeLimit)

	size, err := humanize.ParseBytes(sizeStr)
	if err != nil {
		return Thresholds{}, fmt.Errorf("invalid %s %q: %w", KeySizeLimit, sizeStr, err)
	}

	thresholds := Thresholds{
		SizeLimit:         int64(size), //nolint:gosec // Size conversion from humanize is safe
		TotalFilesLimit:   viperCfg.GetInt64(KeyFilesLimit),
		DirFileCountLimit: viperCfg.GetInt64(KeyDirFilesLimit),
		Extensions:        normalizeExtensions(viperCfg.GetStringSlice(KeyExtensions)),
	}

	if err := thresholds.validate(); err != nil {
		return Thresholds{}, err
	}

	return thresholds, nil
}

// splitExtensions separates extensions given as one string, as environment
// values are.
func splitExtensions(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// normalizeExtensions splits combined values, strips quotes and drops
// duplicates, keeping first-seen order.
func normalizeExtensions(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	for _, value := range raw {
		for _, e := range strings.FieldsFunc(value, splitExtensions) {
			e = strings.Trim(e, "'\"")
			if e == "" {
				continue
			}

			if _, ok := seen[e]; ok {
				continue
			}

			seen[e] = struct{}{}
			out = append(out, e)
		}
	}

	return out
}

func (t Thresholds) validate() error {
	for name, v := range map[string]int64{
		KeySizeLimit:     t.SizeLimit,
		KeyFilesLimit:    t.TotalFilesLimit,
		KeyDirFilesLimit: t.DirFileCountLimit,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidLimit, name, v)
		}
	}

	for _, e := range t.Extensions {
		if !strings.HasPrefix(e, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, e)
		}
	}

	return nil
}
