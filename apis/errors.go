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

package apis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath matches every *InvalidPathError via errors.Is.
	ErrInvalidPath = errors.New("nsx: invalid path")
	// ErrNameCollision matches every *NameCollisionError via errors.Is.
	ErrNameCollision = errors.New("nsx: name collision")
)

// InvalidPathError reports a path that is empty, has an empty or malformed
// segment, is too deep, or names a parent that is not registered.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("nsx: invalid path %q: %s", e.Path, e.Reason)
}

// Is reports whether target is ErrInvalidPath.
func (e *InvalidPathError) Is(target error) bool { return target == ErrInvalidPath }

// NameCollisionError reports a path segment already bound to something that
// cannot be used as requested, e.g. a value where a container is needed.
type NameCollisionError struct {
	Path     string
	Existing Kind
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("nsx: %q is already bound to a %s", e.Path, e.Existing)
}

// Is reports whether target is ErrNameCollision.
func (e *NameCollisionError) Is(target error) bool { return target == ErrNameCollision }
