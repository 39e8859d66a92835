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

package manifest

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

func loadTOML(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	for i, c := range m.Constants {
		if c.Path == "" {
			return nil, fmt.Errorf("parsing %s: constant #%d has no path", file, i)
		}
		switch c.Value.(type) {
		case string, int64, float64, bool:
		default:
			return nil, fmt.Errorf("parsing %s: constant %q: unsupported value type %T", file, c.Path, c.Value)
		}
	}
	return &m, nil
}
