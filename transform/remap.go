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

package transform

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// SourceError is a template error mapped back to its source location.
type SourceError struct {
	File    string // source file name, including the source prefix.
	Line    int    // 1-based; 0 if unknown.
	Column  int    // 1-based; 0 if unknown.
	Excerpt string // the offending source line, if available.
	Err     error  // the original error.
}

// Error returns the location, the original message, and the source excerpt
// with a caret pointing at the offending column.
func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ":%d", e.Column)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.message())
	if e.Excerpt != "" {
		lineno := fmt.Sprintf("%d", e.Line)
		fmt.Fprintf(&b, "\n\n  %s | %s", lineno, e.Excerpt)
		if e.Column > 0 {
			fmt.Fprintf(&b, "\n  %s | %s^",
				strings.Repeat(" ", len(lineno)), strings.Repeat(" ", e.Column-1))
		}
	}
	return b.String()
}

func (e *SourceError) Unwrap() error { return e.Err }

// message returns the original message without pongo2's location prefix,
// as we're reporting the location ourselves.
func (e *SourceError) message() string {
	var perr *pongo2.Error
	if errors.As(e.Err, &perr) && perr.OrigError != nil {
		return perr.OrigError.Error()
	}
	return e.Err.Error()
}

// remap returns a SourceError for template errors, otherwise err unchanged.
func remap(fsys fs.FS, prefix string, err error) error {
	var perr *pongo2.Error
	if !errors.As(err, &perr) || perr.Filename == "" {
		return err
	}
	name := strings.TrimPrefix(path.Clean("/"+perr.Filename), "/")
	serr := &SourceError{
		File:   path.Join(prefix, name),
		Line:   perr.Line,
		Column: perr.Column,
		Err:    err,
	}
	if perr.Line > 0 {
		if src, rerr := fs.ReadFile(fsys, name); rerr == nil {
			lines := strings.Split(string(src), "\n")
			if perr.Line <= len(lines) {
				serr.Excerpt = strings.TrimRight(lines[perr.Line-1], "\r")
			}
		}
	}
	return serr
}
