package loggit

/*
Configuration loaders: map external key/value pairs (a config file or
LOGGIT_* environment variables) onto the store's setter API. Settings apply
in dependency order - level, flags, formatters, file template, compression,
rotation rules, archive directory - because compression and rotations
require a file template to be installed first. The first failing setter
stops the load; earlier settings stay applied, the failing one does not.

Recognized keys:

	enabled              "false" aborts the load before any mutation
	level                trace|debug|info|warn|error
	print_to_terminal    true|false
	colorized            true|false
	global_formatting    line template for every level
	<level>_formatting   per-level line template (trace_formatting, ...)
	file_name            file-name template, enables file output
	compression          "zip"
	rotations            rule or comma-separated rules ("1 day, 500 KB")
	archive_dir          directory for zip archives
*/

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrConfigDisabled = errors.New("config file is disabled to be used")
	ErrConfigValue    = errors.New("incorrect config value")
	ErrConfigFormat   = errors.New("unsupported config file format")
)

// Config file formats by extension (viper config types).
var configTypes = map[string]string{
	".json": "json",
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
	".env":  "env",
}

const ENV_PREFIX = "LOGGIT"

var configKeys = []string{
	"enabled",
	"level",
	"print_to_terminal",
	"colorized",
	"global_formatting",
	"trace_formatting",
	"debug_formatting",
	"info_formatting",
	"warn_formatting",
	"error_formatting",
	"file_name",
	"compression",
	"rotations",
	"archive_dir",
}

// LoadConfigFile reads a config file (format picked by extension) and
// applies it to the store.
func LoadConfigFile(l *Logger, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	ctype, ok := configTypes[ext]
	if !ok {
		return fmt.Errorf("%w: %q", ErrConfigFormat, ext)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ctype)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("couldn't read config file %q: %w", path, err)
	}
	return applySettings(l, v)
}

// LoadConfigFromEnv applies LOGGIT_* environment variables to the store
// (LOGGIT_LEVEL, LOGGIT_FILE_NAME, ...).
func LoadConfigFromEnv(l *Logger) error {
	v := viper.New()
	v.SetEnvPrefix(ENV_PREFIX)
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return applySettings(l, v)
}

var formatKeys = []struct {
	key   string
	level Level
}{
	{"trace_formatting", LVL_TRACE},
	{"debug_formatting", LVL_DEBUG},
	{"info_formatting", LVL_INFO},
	{"warn_formatting", LVL_WARN},
	{"error_formatting", LVL_ERROR},
}

func applySettings(l *Logger, v *viper.Viper) error {
	if v.IsSet("enabled") {
		enabled, err := strictBool(v.GetString("enabled"))
		if err != nil {
			return err
		}
		if !enabled {
			return ErrConfigDisabled
		}
	}

	if v.IsSet("level") {
		name := v.GetString("level")
		lvl, ok := levelByName[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("%w: level %q", ErrConfigValue, name)
		}
		if err := l.SetLogLevel(lvl); err != nil {
			return err
		}
	}

	if v.IsSet("print_to_terminal") {
		val, err := strictBool(v.GetString("print_to_terminal"))
		if err != nil {
			return err
		}
		l.SetPrintToTerminal(val)
	}
	if v.IsSet("colorized") {
		val, err := strictBool(v.GetString("colorized"))
		if err != nil {
			return err
		}
		l.SetColorized(val)
	}

	if v.IsSet("global_formatting") {
		if err := l.SetGlobalFormat(v.GetString("global_formatting")); err != nil {
			return err
		}
	}
	for _, fk := range formatKeys {
		if v.IsSet(fk.key) {
			if err := l.SetLevelFormat(fk.level, v.GetString(fk.key)); err != nil {
				return err
			}
		}
	}

	if v.IsSet("file_name") {
		if err := l.SetFile(v.GetString("file_name")); err != nil {
			return err
		}
	}
	if v.IsSet("compression") {
		if err := l.SetCompression(v.GetString("compression")); err != nil {
			return err
		}
	}
	if v.IsSet("rotations") {
		for _, rule := range rotationsList(v.Get("rotations")) {
			if err := l.AddRotation(rule); err != nil {
				return err
			}
		}
	}
	if v.IsSet("archive_dir") {
		if err := l.SetArchiveDir(v.GetString("archive_dir")); err != nil {
			return err
		}
	}
	return nil
}

// rotationsList accepts either a comma-separated string or an array value.
func rotationsList(raw any) []string {
	var rules []string
	switch val := raw.(type) {
	case string:
		for _, part := range strings.Split(val, ",") {
			rules = append(rules, strings.TrimSpace(part))
		}
	case []string:
		rules = val
	case []any:
		for _, item := range val {
			rules = append(rules, strings.TrimSpace(fmt.Sprint(item)))
		}
	}
	return rules
}

// strictBool accepts exactly "true" or "false" (loaders never guess).
func strictBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: boolean %q", ErrConfigValue, s)
}
