// Copyright 2022, 2026 Harald Albrecht.
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

package ssrserve

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// staticAssets is a layer of static assets, served as-is.
type staticAssets struct {
	fs   fs.FS    // the FS to serve static assets from.
	dirs []string // (unrooted) asset directories; misses in here are final.
}

// WithStaticAssets adds a layer of static assets to be served from fsys
// before falling back to server-side rendering. Layers are consulted in the
// order they were added. Requests for missing files inside any of the
// specified asset directories (such as "assets") are answered with 404 and
// never reach the renderer. Paths with any element starting with a dot, such
// as ".env" or ".git/config", are never served statically.
//
// In order to serve the static assets from a directory on the OS file
// system, use os.DirFS:
//
//	h := NewSSRHandler(..., WithStaticAssets(os.DirFS("dist/client"), "assets"))
func WithStaticAssets(fsys fs.FS, assetDirs ...string) SSRHandlerOption {
	return func(h *SSRHandler) {
		s := &staticAssets{fs: fsys}
		for _, dir := range assetDirs {
			dir = path.Clean("/" + dir)[1:]
			if dir == "" {
				continue // would swallow everything.
			}
			s.dirs = append(s.dirs, dir)
		}
		h.statics = append(h.statics, s)
	}
}

// serveStaticAsset tries to serve a static asset specified in uripath from the
// static asset layers, returning true if successful or when the request must
// not fall through to rendering. If no such static asset exists, nothing is
// served and false is returned instead.
//
// IMPORTANT: the passed r.URL.Path must have already been sanitized.
func (h *SSRHandler) serveStaticAsset(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	path := r.URL.Path[1:] // ...fs.FS uses unrooted paths.
	if path == "" {
		return false // hitting root is always a case for rendering.
	}
	statics := h.statics
	if hidden(path) {
		statics = nil // dotfiles stay private, yet misses in asset dirs are final.
	}
	for _, s := range statics {
		// Thankfully, fs.Stat deals with fs.FS implementations that don't
		// support fs.StatFS and works around this situation.
		info, err := fs.Stat(s.fs, path)
		// If we have a "regular" file then serve it as-is. Please note that
		// http.FileServer and http.ServeFileFS won't do, as they redirect
		// ".../index.html" instead of serving it.
		if err == nil && info.Mode().IsRegular() {
			if err := s.serveFile(w, r, path, info); err != nil {
				NormalizedHttpError(w, err)
			}
			return true
		}
		// If we got an error and it isn't a missing static asset, then
		// normalize (or rather, sanitize) the error and send that back to the
		// client.
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			NormalizedHttpError(w, err)
			return true
		}
	}
	for _, s := range h.statics {
		if s.inAssetDir(path) {
			NormalizedHttpError(w, fs.ErrNotExist)
			return true
		}
	}
	return false
}

// serveFile serves the regular file at the (unrooted) path, with the content
// type derived from its name and support for range and conditional requests.
func (s *staticAssets) serveFile(w http.ResponseWriter, r *http.Request, path string, info fs.FileInfo) error {
	f, err := s.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		content = bytes.NewReader(data)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return nil
}

// hidden returns true if any element of the (unrooted) path starts with a dot.
func hidden(path string) bool {
	for _, elem := range strings.Split(path, "/") {
		if strings.HasPrefix(elem, ".") {
			return true
		}
	}
	return false
}

// inAssetDir returns true if the (unrooted) path is located inside one of the
// asset directories of this layer.
func (s *staticAssets) inAssetDir(path string) bool {
	for _, dir := range s.dirs {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	return false
}
