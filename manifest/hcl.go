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
	"math/big"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

type hclFile struct {
	Namespaces []hclNamespace `hcl:"namespace,block"`
	Constants  []hclConstant  `hcl:"constant,block"`
}

type hclNamespace struct {
	Path string `hcl:"path,label"`
}

type hclConstant struct {
	Path  string    `hcl:"path,label"`
	Value cty.Value `hcl:"value"`
}

func loadHCL(file string) (*Manifest, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", file, diags.Error())
	}

	var raw hclFile
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", file, diags.Error())
	}

	m := &Manifest{}
	for _, ns := range raw.Namespaces {
		m.Namespaces = append(m.Namespaces, ns.Path)
	}
	for _, c := range raw.Constants {
		v, err := goValue(c.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: constant %q: %w", file, c.Path, err)
		}
		m.Constants = append(m.Constants, Constant{Path: c.Path, Value: v})
	}
	return m, nil
}

// goValue converts a primitive cty value to the same Go types the TOML
// decoder produces, so both formats bind identical values.
func goValue(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, fmt.Errorf("value must be a known, non-null primitive")
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
	}
}
