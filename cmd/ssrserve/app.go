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

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/thediveo/ssrserve"
	"github.com/thediveo/ssrserve/hmr"
	"github.com/thediveo/ssrserve/internal/config"
	"github.com/thediveo/ssrserve/render"
	"github.com/thediveo/ssrserve/transform"
)

// IndexName is the index template inside the client build output, as well as
// inside the project root.
const IndexName = "index.html"

// app is a fully wired server, ready to serve.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	handler http.Handler
	hmr     *hmr.Server // development only.
}

// newApp wires the handler for the configured mode. In production, a missing
// or malformed SSR manifest, as well as a broken server bundle, are errors.
func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	// Render functions get to see request URLs exactly as received, so the
	// router must not redirect unclean paths.
	router := mux.NewRouter().SkipClean(true)
	clientFs := os.DirFS(cfg.ClientDir())

	var templateFs fs.FS
	var source render.Source
	opts := []ssrserve.SSRHandlerOption{ssrserve.WithLogger(log)}
	switch cfg.Mode {
	case ssrserve.Production:
		manifest, err := render.LoadManifest(clientFs, render.ManifestName)
		if err != nil {
			return nil, err
		}
		staticSource, err := render.NewStaticSource(os.DirFS(cfg.ServerDir()))
		if err != nil {
			return nil, err
		}
		templateFs = clientFs
		source = staticSource
		opts = append(opts,
			ssrserve.WithManifest(manifest),
			ssrserve.WithStaticAssets(clientFs, cfg.AssetsDir))
	default:
		sourceFs := os.DirFS(cfg.SourceBundleDir())
		templateFs = os.DirFS(cfg.Root)
		source = render.NewLiveSource(sourceFs)
		opts = append(opts,
			ssrserve.WithPipeline(transform.New(
				transform.WithTransformer(transform.InjectScript(hmr.ClientPath)),
				transform.WithSourceRemapping(sourceFs, filepath.ToSlash(cfg.SourceDir)))),
			ssrserve.WithStaticAssets(clientFs, cfg.AssetsDir),
			ssrserve.WithStaticAssets(newSourceFS(templateFs, cfg.BuildDir, config.FileName)))
		a.hmr = hmr.NewServer(log)
		router.Handle(hmr.SocketPath, a.hmr).Methods(http.MethodGet)
		router.Handle(hmr.ClientPath, hmr.ClientHandler()).Methods(http.MethodGet, http.MethodHead)
	}

	ssr := ssrserve.NewSSRHandler(templateFs, IndexName, source, opts...)
	router.PathPrefix("/").Handler(gzhttp.GzipHandler(ssr))
	router.Use(requestID, accessLog(log))
	a.handler = router
	return a, nil
}

// watch starts watching the project sources in development, telling all
// connected clients to reload after changes.
func (a *app) watch(ctx context.Context) {
	if a.hmr == nil {
		return
	}
	root := a.cfg.Root
	err := hmr.Watch(ctx, root, func(path string) {
		if rel, err := filepath.Rel(root, path); err == nil {
			path = filepath.ToSlash(rel)
		}
		a.hmr.Broadcast(ctx, hmr.Message{Type: hmr.FullReload, Path: path})
	},
		hmr.WithSkipDir(filepath.Join(root, a.cfg.BuildDir)),
		hmr.WithWatchLogger(a.log))
	if err != nil {
		a.log.Warn("source watcher failed to start", slog.String("err", err.Error()))
	}
}

// serve wires and then runs the server until ctx gets cancelled. Startup
// errors are returned before ever listening.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting ssrserve",
		slog.String("mode", cfg.Mode.String()),
		slog.Int("port", cfg.Port),
		slog.String("root", cfg.Root))
	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("startup failed", slog.String("err", err.Error()))
		return err
	}
	a.watch(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errch := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr))
		errch <- srv.ListenAndServe()
	}()
	select {
	case err := <-errch:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sourceFS serves the project root in development, except for the build
// output and the configuration file.
type sourceFS struct {
	fs.FS
	private []string // unrooted paths, including everything below them.
}

// newSourceFS returns fsys with the specified paths relative to the project
// root hidden. Absolute paths and paths outside the root are ignored.
func newSourceFS(fsys fs.FS, private ...string) fs.FS {
	s := sourceFS{FS: fsys}
	for _, p := range private {
		if filepath.IsAbs(p) {
			continue
		}
		p = path.Clean(filepath.ToSlash(p))
		if p == "." || p == ".." || strings.HasPrefix(p, "../") {
			continue
		}
		s.private = append(s.private, p)
	}
	return s
}

func (s sourceFS) Open(name string) (fs.File, error) {
	for _, p := range s.private {
		if name == p || strings.HasPrefix(name, p+"/") {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
	}
	return s.FS.Open(name)
}
