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
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/thediveo/ssrserve/render"
	"github.com/thediveo/ssrserve/transform"
)

// ForwardedPrefixHeader, if present, specifies the prefix that need to be
// preprended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// baseRe matches the base element in index.html in order to allow us to
// dynamically rewrite the base the SPA is served from.
//
// Please note: "*?" instead of "*" ensures that our irregular expression
// doesn't get too greedy, gobbling much more than it should until the last(!)
// empty element.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/?>)`)

// SSRHandler implements an http.Handler serving static assets when the
// request path names a static asset, and otherwise the server-side rendered
// index document.
type SSRHandler struct {
	templateFs    fs.FS              // the FS to read the index template from.
	index         string             // (unrooted) path and name of the index template inside templateFs.
	source        render.Source      // hands out the render function.
	manifest      render.Manifest    // read-only; empty in development.
	pipeline      transform.Pipeline // HTML transforms and error diagnostics.
	statics       []*staticAssets    // static asset layers, in order of precedence.
	indexRewriter IndexRewriter      // optional user function to post-process the rendered document.
	log           *slog.Logger
}

// Response is the outcome of successfully rendering an index document.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// NewSSRHandler returns a new HTTP handler rendering the index template from
// templateFs, using the render functions handed out by source. The index
// parameter typically is "index.html" and gets sanitized.
//
// Static assets are served only when at least one static asset layer has
// been configured using WithStaticAssets.
func NewSSRHandler(templateFs fs.FS, index string, source render.Source, opts ...SSRHandlerOption) *SSRHandler {
	h := &SSRHandler{
		templateFs: templateFs,
		index:      path.Clean("/" + index)[1:],
		source:     source,
		manifest:   render.Manifest{},
		pipeline:   transform.New(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SSRHandlerOption sets optional properties at the time of creating an
// SSRHandler.
type SSRHandlerOption func(*SSRHandler)

// IndexRewriter rewrites (parts) of the rendered index document to be
// delivered to a requesting client, after the rendered markup has been
// substituted. It can be optionally activated using the WithIndexRewriter
// option when creating a new SSRHandler.
type IndexRewriter func(r *http.Request, index string) string

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the rendered index document to requesting clients, allowing for
// application-specific changes.
func WithIndexRewriter(rewriter IndexRewriter) SSRHandlerOption {
	return func(h *SSRHandler) {
		h.indexRewriter = rewriter
	}
}

// WithManifest sets the SSR manifest passed to the render function.
func WithManifest(m render.Manifest) SSRHandlerOption {
	return func(h *SSRHandler) {
		if m != nil {
			h.manifest = m
		}
	}
}

// WithPipeline sets the HTML transform pipeline; it defaults to an empty
// transform.Chain.
func WithPipeline(p transform.Pipeline) SSRHandlerOption {
	return func(h *SSRHandler) {
		if p != nil {
			h.pipeline = p
		}
	}
}

// WithLogger sets the logger for reporting failed requests.
func WithLogger(log *slog.Logger) SSRHandlerOption {
	return func(h *SSRHandler) {
		if log != nil {
			h.log = log
		}
	}
}

// ServeHTTP either serves a static asset or otherwise the rendered index
// document. This behavior is required for SPAs with client-side DOM routers,
// as otherwise bookmarking (router) links or reloading an SPA with the current
// route other than "/" would fail.
func (h *SSRHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Take a note of the request URL before we sanitize the path: the render
	// function gets to see the URL exactly as it was received.
	rawurl := requestURL(r)
	// Get the absolute and also cleaned path to the requested resource in order
	// to prevent parent directory traversal outside the static assets
	// directory. Slapping "/" ensures that path.Clean does NOT to use the
	// current working dir for resolving the request path ... whichever current
	// working directory it might be at the moment is.
	r.URL.Path = path.Clean("/" + r.URL.Path)
	if h.serveStaticAsset(w, r) {
		return
	}
	h.serveRendered(w, r, rawurl)
}

// serveRendered serves the rendered index document, or the raw error message
// in case rendering failed. Only the log gets the diagnostically improved
// error.
func (h *SSRHandler) serveRendered(w http.ResponseWriter, r *http.Request, rawurl string) {
	resp, err := h.handle(r, rawurl)
	if err != nil {
		var stage Stage
		var rerr *RequestError
		if errors.As(err, &rerr) {
			stage = rerr.Stage
		}
		h.log.Error("server-side rendering failed",
			slog.String("url", rawurl),
			slog.String("stage", string(stage)),
			slog.String("err", h.pipeline.FixStacktrace(err).Error()))
		RenderHttpError(w, err)
		return
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}

// Handle renders the index document for the specified request, returning
// either the response or a *RequestError.
func (h *SSRHandler) Handle(r *http.Request) (*Response, error) {
	return h.handle(r, requestURL(r))
}

func (h *SSRHandler) handle(r *http.Request, rawurl string) (*Response, error) {
	ctx := r.Context()
	// Grab the index template fresh from the FS, so any changes to it become
	// visible with the next request.
	tmpl, err := fs.ReadFile(h.templateFs, h.index)
	if err != nil {
		return nil, &RequestError{Stage: StageTemplate, Err: err}
	}
	// Sanitize the base path so it cannot interfere with our regexp replacement
	// operations where we need to use "$1" and "$2" back references. As this
	// ain't VMS (shudder), we don't need "$" in SPA paths anyway.
	base := strings.ReplaceAll(h.basename(r), "$", "")
	doc := baseRe.ReplaceAllString(string(tmpl), "${1}"+base+"${2}")
	doc, err = h.pipeline.TransformIndexHTML(ctx, rawurl, doc)
	if err != nil {
		return nil, &RequestError{Stage: StageTransform, Err: err}
	}

	renderFn, err := h.source.Load(ctx)
	if err != nil {
		return nil, &RequestError{Stage: StageRender, Err: err}
	}
	result, err := renderFn(ctx, rawurl, h.manifest)
	if err != nil {
		return nil, &RequestError{Stage: StageRender, Err: err}
	}
	if result == nil {
		result = &render.Result{}
	}

	// The preload links go in first, so that the rendered markup never gets
	// scanned for placeholders.
	doc, _ = substitute(doc, PreloadLinksPlaceholder, result.PreloadLinks)
	doc, ok := substitute(doc, OutletPlaceholder, result.Markup)
	if !ok {
		h.log.Warn("index template lacks outlet placeholder",
			slog.String("index", h.index),
			slog.String("placeholder", OutletPlaceholder))
	}
	if h.indexRewriter != nil {
		doc = h.indexRewriter(r, doc)
	}
	return &Response{
		Status:      http.StatusOK,
		ContentType: "text/html",
		Body:        doc,
	}, nil
}

// requestURL returns the request's path and query exactly as received.
func requestURL(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// originalReqPath returns the (hopefully) original path when hitting the first
// proxy in a chain, based on what has been passed down to us. If no suitable
// forwarding information is present, the original -- and already sanitized --
// request URL path.
func (h *SSRHandler) originalReqPath(r *http.Request) string {
	// Was the request path rewritten? Then the original request path was the
	// forwarded prefix, followed by the remaining part we now see in the
	// request.
	if fwprefix := r.Header.Get(ForwardedPrefixHeader); fwprefix != "" {
		fwprefix = path.Clean("/" + fwprefix)
		return path.Join(fwprefix, r.URL.Path)
	}
	// Was the original HTTP request URL passed upon us? There seem to be
	// different interpretations with some proxy implementations only passing
	// the request path, but not the full original URI to us...
	if fwurl := r.Header.Get(ForwardedUriHeader); fwurl != "" {
		if strings.HasPrefix(fwurl, "/") {
			return path.Clean(fwurl)
		}
		if u, err := url.Parse(fwurl); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// basename returns the URI request path base based on the given request, by
// consulting proxy headers when available. Rewriting forwarding proxies need to
// preserve the original client-side request URI path for this to work; if
// deriving the base name is impossible, the base is taken to be "/" from the
// clients' perspective.
func (h *SSRHandler) basename(r *http.Request) string {
	reqPath := r.URL.Path
	originalReqPath := h.originalReqPath(r)
	var base string
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(originalReqPath, "/") {
		// take care of the situation where the reverse proxy redirects from
		// /foo to /foo/ and then rewrites the path to /.
		originalReqPath += "/"
	}
	// If the request path we see is a proper suffix of the original request
	// path, take only the common base part (~prefix).
	if strings.HasSuffix(originalReqPath, reqPath) {
		base = originalReqPath[:len(originalReqPath)-len(reqPath)]
	}
	// Ensure that the base path always ends with a "/", as otherwise browsers
	// clip off the final element in a dirname() fashion.
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
