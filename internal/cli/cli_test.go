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

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the command tree in an empty working directory so no stray
// .nsx.* or .env file is picked up.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func testdata(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "manifest", "testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return abs
}

func TestRegister_PrintsTree(t *testing.T) {
	out, err := run(t, "register", "Bar", "Abc123::Foo::Bar", "Abc123::Foo::Bar")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want := "Abc123\n  Foo\n    Bar\nBar\n"
	if out != want {
		t.Fatalf("output:\n%s\nwant:\n%s", out, want)
	}
}

func TestRegister_InvalidPath(t *testing.T) {
	_, err := run(t, "register", "Good", "Bad::")
	if err == nil || !strings.Contains(err.Error(), "invalid path") {
		t.Fatalf("want invalid path error, got %v", err)
	}
}

func TestResolve_WithManifest(t *testing.T) {
	out, err := run(t, "--manifest", testdata(t, "admin.toml"), "resolve", "Admin::VERSION")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "Admin::VERSION\tvalue\t1.2\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = run(t, "--manifest", testdata(t, "admin.toml"), "resolve", "Admin")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "Admin\tcontainer\tchildren=2\n" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "resolve", "Nope"); err == nil {
		t.Fatalf("resolve of unknown path: want error")
	}
}

func TestLookup_Scope(t *testing.T) {
	hcl := testdata(t, "admin.hcl")

	out, err := run(t, "--manifest", hcl, "lookup", "--scope", "Abc123::Foo", "Bar")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if strings.TrimSpace(out) != "Abc123::Foo::Bar" {
		t.Fatalf("lookup from Abc123::Foo = %q", out)
	}

	out, err = run(t, "--manifest", hcl, "lookup", "--scope", "Abc123", "Bar")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if strings.TrimSpace(out) != "Bar" {
		t.Fatalf("lookup from Abc123 = %q", out)
	}
}

func TestApply_Report(t *testing.T) {
	out, err := run(t, "apply", testdata(t, "admin.toml"), testdata(t, "admin.hcl"))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 report lines, got %q", out)
	}
	if !strings.HasSuffix(lines[0], "created=4 existing=0 constants=4 failed=0") {
		t.Fatalf("first report = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "created=0 existing=4 constants=4 failed=0") {
		t.Fatalf("second report = %q", lines[1])
	}
}

func TestConfigFile_And_Env(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "nsx.toml")
	if err := os.WriteFile(cfg, []byte("separator = \".\"\nstrict_names = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfg, "register", "admin.posts")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out != "admin\n  posts\n" {
		t.Fatalf("unexpected output %q", out)
	}

	t.Setenv("NSX_MAX_DEPTH", "2")
	if _, err := run(t, "register", "A::B::C"); err == nil {
		t.Fatalf("NSX_MAX_DEPTH=2: want depth error")
	}

	if _, err := run(t, "--config", filepath.Join(dir, "missing.toml"), "tree"); err == nil {
		t.Fatalf("explicit missing config: want error")
	}
}
