// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ssrserve serves a server-side rendered single page application on port
// 3000. Set SERVER_RENDER_MODE=production to serve the build output in
// "dist"; otherwise the sources get rendered live.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thediveo/ssrserve"
	"github.com/thediveo/ssrserve/internal/config"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	cmd := &cobra.Command{
		Use:   "ssrserve",
		Short: "serve a server-side rendered single page application",
		Long: `ssrserve serves the server-side rendered index document of a single page
application, together with the static assets from the client build output.

In production mode (` + ssrserve.ModeEnvVar + `=production) the prebuilt index
template, SSR manifest, and server bundle from the build directory are used.
In development mode the index template and server bundle are read from the
sources on every request, and browsers reload when sources change.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, cfg.NewLogger(os.Stderr))
		},
	}
	flags := cmd.Flags()
	flags.String(config.KeyConfig, "", "configuration file (default: ssrserve.yaml in root directory)")
	flags.String(config.KeyMode, ssrserve.Development.String(), "serving mode: production or development")
	flags.Int(config.KeyPort, config.DefaultPort, "HTTP port to listen on")
	flags.String(config.KeyRoot, ".", "project root directory")
	flags.String(config.KeyBuildDir, "dist", "build output directory")
	flags.String(config.KeySourceDir, "src", "server bundle source directory")
	flags.String(config.KeyAssetsDir, "assets", "asset directory inside the client build output")
	flags.String(config.KeyLogLevel, "info", "log level: debug, info, warn, or error")
	flags.String(config.KeyLogFormat, "text", "log format: text or json")
	_ = v.BindPFlags(flags)
	return cmd
}

// run executes the command with the specified arguments, returning the
// process exit code.
func run(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("ssrserve failed", slog.String("err", err.Error()))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
