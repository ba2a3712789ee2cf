// Package cli provides the configuration and logging plumbing of the command line tool.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ubuntu/app-showcase/internal/constants"
	"golang.org/x/text/language"
)

// InitViperConfig reads the configuration file of cmdName, then binds the environment variables
// prefixed with cmdName.
//
// The file is the one set with the config flag or, without it, the first cmdName.yaml found in the
// current directory, the user configuration directory and the system configuration directory.
func InitViperConfig(cmdName string, cmd *cobra.Command, vip *viper.Viper) error {
	if v, err := cmd.Flags().GetString("config"); err == nil && v != "" {
		vip.SetConfigFile(v)
	} else {
		vip.SetConfigName(cmdName)
		vip.AddConfigPath(".")
		vip.AddConfigPath(constants.GetDefaultConfigPath())

		if runtime.GOOS != "windows" {
			vip.AddConfigPath("/etc/" + cmdName)
		}
	}
	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
		slog.Info("No configuration file.\nWe will only use the defaults, env variables or flags.", "error", e)
	} else {
		slog.Info("Using configuration file", "file", vip.ConfigFileUsed())
	}

	// Handle environment.
	vip.SetEnvPrefix(cmdName)
	vip.AutomaticEnv()

	// Visit manually env to bind every possibly related environment variable to be able to unmarshal
	// those into a struct. Nested keys are separated by an underscore: APP_SHOWCASE_APP_STOREID is app.storeid.
	// More context on https://github.com/spf13/viper/pull/1429.
	prefix := strings.ToUpper(strings.ReplaceAll(cmdName, "-", "_")) + "_"
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, prefix) {
			continue
		}

		s := strings.SplitN(e, "=", 2)
		k := strings.ReplaceAll(strings.TrimPrefix(s[0], prefix), "_", ".")
		if err := vip.BindEnv(k, s[0]); err != nil {
			return fmt.Errorf("could not bind environment variable: %w", err)
		}
	}

	return nil
}

// InstallConfigFlag adds a config flag to the command.
func InstallConfigFlag(cmd *cobra.Command) *string {
	return cmd.PersistentFlags().String("config", "", "use a specific configuration file")
}

// Unmarshal decodes the configuration into target.
// Durations are parsed from strings, lists from comma separated strings and locales from BCP 47 tags.
func Unmarshal(vip *viper.Viper, target any) error {
	if err := vip.Unmarshal(target, viper.DecodeHook(DecodeHook())); err != nil {
		return fmt.Errorf("unable to decode configuration into struct: %w", err)
	}
	return nil
}

// DecodeHook returns the decoding hooks applied to configuration values.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToLanguageTagHookFunc(),
	)
}

// stringToLanguageTagHookFunc parses strings decoded into a language.Tag. POSIX separators are accepted.
func stringToLanguageTagHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(language.Tag{}) {
			return data, nil
		}

		s := strings.TrimSpace(data.(string))
		if s == "" {
			return language.Und, nil
		}
		tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %v", s, err)
		}
		return tag, nil
	}
}

// LocaleFromEnv returns the locale of the user messages, as set in the environment. It returns language.Und if none is set.
func LocaleFromEnv() language.Tag {
	for _, v := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		l := os.Getenv(v)
		// Strip the codeset and modifier: en_US.UTF-8@euro.
		if i := strings.IndexAny(l, ".@"); i >= 0 {
			l = l[:i]
		}
		if l == "" || l == "C" || l == "POSIX" {
			continue
		}
		if tag, err := language.Parse(strings.ReplaceAll(l, "_", "-")); err == nil {
			return tag
		}
	}
	return language.Und
}
