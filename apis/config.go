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

// Config carries read-only knobs that control how paths are parsed and validated.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Separator joins path segments, e.g. "::" in "Admin::Posts".
	Separator string

	// MaxDepth limits the number of segments in a single path.
	// Acts as a safety guard against pathological input.
	MaxDepth int

	// StrictNames requires every segment to look like a constant name:
	// a leading uppercase ASCII letter followed by letters, digits or '_'.
	// If false, any identifier ([A-Za-z_][A-Za-z0-9_]*) is accepted.
	StrictNames bool
}
