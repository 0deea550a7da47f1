/*

Package ssrserve serves the HTML document of server-side rendered "Single Page
Applications" (SPAs), together with the static assets of the client build.

The SSRHandler type implements http.Handler. Requests for files found in the
client build output (and, in development, the source root) are served as
static assets as-is. All other requests render the index document: the
index.html template is read fresh from disk, passed through an HTML transform
pipeline, and the markup returned by a render function then replaces the
"<!--ssr-outlet-->" placeholder.

Where the index template and the render function come from depends on the
Mode, which is fixed at process start:

  - Production reads the prebuilt "dist/client/index.html" and renders using
    the server bundle in "dist/server", loaded exactly once. The SSR manifest
    "dist/client/ssr-manifest.json" supplies the assets to preload.
  - Development reads the source root "index.html" and re-resolves the server
    bundle in "src" on every request, so edits show up without restarting.

The render capability lives in package render, the HTML transform capability
in package transform, and development live reloading in package hmr.

*/
package ssrserve
