package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// config is the resolved CLI configuration. Flags take precedence over
// NEWVER_* environment variables, which take precedence over the config file.
type config struct {
	Dir              string
	Files            []string
	DataPaths        []string
	Prefix           string
	IgnoreRegression bool
	Quiet            bool
	Verbose          bool
	DryRun           bool

	// Commit, Tag and Push are nil when not given anywhere.
	Commit *bool
	Tag    *bool
	Push   *bool
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) (config, error) {
	v.SetEnvPrefix("NEWVER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config{}, fmt.Errorf("binding flags: %w", err)
	}

	dir, err := os.Getwd()
	if err != nil {
		return config{}, fmt.Errorf("getting working directory: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, usageError("reading config file %s: %v", path, err)
		}
	} else {
		v.SetConfigName(".newver")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return config{}, usageError("reading config file: %v", err)
			}
		}
	}

	cfg := config{
		Dir:              dir,
		Files:            stringList(cmd, v, "files"),
		DataPaths:        stringList(cmd, v, "data-paths"),
		Prefix:           v.GetString("prefix"),
		IgnoreRegression: v.GetBool("ignore-regression"),
		Quiet:            v.GetBool("quiet"),
		Verbose:          v.GetBool("verbose"),
		DryRun:           v.GetBool("dry-run"),
		Commit:           optionalBool(v, "commit"),
		Tag:              optionalBool(v, "tag"),
		Push:             optionalBool(v, "push"),
	}

	if len(cfg.DataPaths) > len(cfg.Files) {
		return cfg, usageError("got %d --data-paths for %d --files; each data path pairs with the file at the same position",
			len(cfg.DataPaths), len(cfg.Files))
	}
	if cfg.Commit != nil && !*cfg.Commit && (isTrue(cfg.Tag) || isTrue(cfg.Push)) {
		return cfg, usageError("--tag and --push need a commit; drop --commit=false")
	}
	return cfg, nil
}

// stringList reads a repeatable flag. Command line values are taken as
// given, empty entries included, so data paths stay paired with their
// files. Otherwise the environment or config file value applies.
func stringList(cmd *cobra.Command, v *viper.Viper, key string) []string {
	if f := cmd.Flags().Lookup(key); f != nil && f.Changed {
		if vals, err := cmd.Flags().GetStringArray(key); err == nil {
			return vals
		}
	}
	return v.GetStringSlice(key)
}

// optionalBool returns nil when key was not set by a flag, the environment
// or the config file.
func optionalBool(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}

func isTrue(b *bool) bool { return b != nil && *b }
