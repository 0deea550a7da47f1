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

/*
Package fixture provides a small SSR project for testing: sources in "src",
a source root "index.html", and a build output in "dist" with its client part
(index template, assets, SSR manifest) and server bundle.
*/
package fixture

import (
	"embed"
	"io/fs"
)

//go:embed all:project
var embedded embed.FS

// Project is the fixture project's root.
var Project = sub("project")

// Client is the client build output of the fixture project.
var Client = sub("project/dist/client")

// Server is the prebuilt server bundle of the fixture project.
var Server = sub("project/dist/server")

// Sources is the server bundle source directory of the fixture project.
var Sources = sub("project/src")

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(embedded, dir)
	if err != nil {
		panic(err)
	}
	return fsys
}
