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

package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/manifest"
)

func newRegisterCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "register <path>...",
		Short: "Register namespaces and print the resulting tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, p := range args {
				if err := s.reg.Register(p); err != nil {
					errs = append(errs, err)
				}
			}
			printTree(cmd.OutOrStdout(), s.reg)
			return errors.Join(errs...)
		},
	}
}

func newResolveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show what a fully-qualified path is bound to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := s.reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%s: not registered", args[0])
			}
			out := cmd.OutOrStdout()
			switch e.Kind {
			case apis.KindContainer:
				fmt.Fprintf(out, "%s\tcontainer\tchildren=%d\n", e.Path, len(e.Container.Children()))
			default:
				fmt.Fprintf(out, "%s\tvalue\t%v\n", e.Path, e.Value)
			}
			return nil
		},
	}
}

func newLookupCmd(s *session) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Resolve a relative name from inside a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := s.res.Resolve(scope, args[0])
			if !ok {
				return fmt.Errorf("%s: not found from scope %q", args[0], scope)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.FullName())
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope to resolve from (default top level)")
	return cmd
}

func newTreeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the namespace tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printTree(cmd.OutOrStdout(), s.reg)
			return nil
		},
	}
}

func newApplyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <manifest>...",
		Short: "Apply manifest files and report what changed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := s.context(cmd.Context())
			var errs []error
			for _, f := range args {
				rep, err := manifest.LoadAndApply(ctx, s.reg, f)
				if err != nil {
					errs = append(errs, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tcreated=%d existing=%d constants=%d failed=%d\n",
					f, rep.Created, rep.Existing, rep.Constants, rep.Failed)
			}
			return errors.Join(errs...)
		},
	}
}

func newWatchCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <manifest>...",
		Short: "Apply manifest files and re-apply them whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(s.context(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, err := manifest.NewWatcher(s.reg, args...)
			if err != nil {
				return err
			}
			s.log.Info("Watching manifests.", "files", args)
			return w.Run(ctx)
		},
	}
}
