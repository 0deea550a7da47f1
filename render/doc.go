/*

Package render provides the render capability of the SSR pipeline: turning a
request URL into the markup of the rendered application.

A Source hands out render functions. StaticSource loads its render function
exactly once, as is appropriate for a prebuilt production server bundle.
LiveSource instead re-resolves the server bundle each time it is asked, so
that any change to the bundle sources becomes visible on the very next
request.

A server bundle is a directory containing an "entry-server.yaml" route table
together with pongo2 page templates. Routes use gorilla/mux path templates,
such as "/users/{id}", and the matched route variables get passed to the page
template as "params".

*/
package render
