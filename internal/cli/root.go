/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cli implements the nsx command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/builder"
	"dirpx.dev/nsx/config"
	"dirpx.dev/nsx/internal/ctxlog"
	"dirpx.dev/nsx/internal/logging"
	"dirpx.dev/nsx/manifest"
)

// Execute runs the command tree with args and returns the process exit code.
func Execute(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// session is the per-invocation state shared by subcommands.
type session struct {
	v        *viper.Viper
	settings config.Settings
	log      *slog.Logger
	reg      apis.Registry
	res      apis.Resolver
}

// context returns ctx carrying the session logger.
func (s *session) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, s.log)
}

// NewRootCmd builds the nsx command tree. Every invocation gets a fresh
// registry seeded from the configured manifests.
func NewRootCmd() *cobra.Command {
	s := &session{v: viper.New()}

	root := &cobra.Command{
		Use:           "nsx",
		Short:         "Hierarchical namespace registry",
		Long:          "nsx materializes dotted namespace paths such as Admin::Posts, creating only what is missing.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .nsx.yaml or .nsx.toml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("separator", config.DefaultSeparator, "path separator")
	pf.Int("max-depth", config.DefaultMaxDepth, "maximum number of path segments")
	pf.Bool("strict-names", config.DefaultStrictNames, "require constant-style segment names")
	pf.StringSlice("manifest", nil, "manifest file applied before the command runs (repeatable)")

	_ = s.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = s.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = s.v.BindPFlag("separator", pf.Lookup("separator"))
	_ = s.v.BindPFlag("max_depth", pf.Lookup("max-depth"))
	_ = s.v.BindPFlag("strict_names", pf.Lookup("strict-names"))
	_ = s.v.BindPFlag("manifests", pf.Lookup("manifest"))

	root.AddCommand(
		newRegisterCmd(s),
		newResolveCmd(s),
		newLookupCmd(s),
		newTreeCmd(s),
		newApplyCmd(s),
		newWatchCmd(s),
	)
	return root
}

// setup loads settings, builds the logger and registry, and applies the
// configured manifests.
func (s *session) setup(cmd *cobra.Command) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := s.readConfig(cmd); err != nil {
		return err
	}
	settings, err := config.LoadSettings(s.v)
	if err != nil {
		return err
	}
	s.settings = settings
	s.log = logging.New(settings.Log.Level, settings.Log.Format, cmd.ErrOrStderr())

	cfg := settings.Registry()
	b := builder.New()
	s.reg = b.BuildRegistry(cfg, nil, s.log)
	s.res = b.BuildResolver(cfg, s.reg, nil)

	ctx := s.context(cmd.Context())
	for _, f := range settings.Manifests {
		if _, err := manifest.LoadAndApply(ctx, s.reg, f); err != nil {
			return fmt.Errorf("applying manifest: %w", err)
		}
	}
	return nil
}

func (s *session) readConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		s.v.SetConfigFile(cfgFile)
	} else {
		s.v.SetConfigName(".nsx")
		s.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			s.v.AddConfigPath(home)
		}
	}

	s.v.SetEnvPrefix(config.EnvPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	s.v.AutomaticEnv()

	if err := s.v.ReadInConfig(); err != nil {
		// It's fine if no config file is found; we use defaults.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// printTree writes the container tree, two spaces of indent per level.
func printTree(w io.Writer, reg apis.Registry) {
	reg.Walk(func(c apis.Container) bool {
		for i := 1; i < c.Depth(); i++ {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprintln(w, c.Name())
		return true
	})
}
