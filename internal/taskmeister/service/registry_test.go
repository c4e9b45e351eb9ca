package service

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDuplicateAlias(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.toml", "alias = \"web\"\ncmd = \"true\"\n")
	writeFile(t, dir, "b.toml", "alias = \"web\"\ncmd = \"false\"\n")

	if _, err := Load([]string{dir}); err == nil {
		t.Fatalf("Load() error = nil, want duplicate alias error")
	}
}

func TestLoadAndAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "web.toml", "alias = \"web\"\ncmd = \"true\"\n")
	writeFile(t, dir, "worker.toml", "alias = \"worker\"\ncmd = \"true\"\n")

	registry, err := Load([]string{dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	all := registry.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d services, want 2", len(all))
	}
	if all[0].Alias != "web" || all[1].Alias != "worker" {
		t.Fatalf("All() = %v, want sorted [web worker]", aliasesOf(all))
	}
}

func aliasesOf(svcs []Service) []string {
	out := make([]string, len(svcs))
	for i, s := range svcs {
		out[i] = s.Alias
	}
	return out
}

func TestRegistryDiff(t *testing.T) {
	old := NewRegistry()
	old.Put(Service{Alias: "unchanged", Cmd: "true"})
	old.Put(Service{Alias: "removed", Cmd: "true"})
	old.Put(Service{Alias: "changed", Cmd: "true"})

	next := NewRegistry()
	next.Put(Service{Alias: "unchanged", Cmd: "true"})
	next.Put(Service{Alias: "changed", Cmd: "false"})
	next.Put(Service{Alias: "added", Cmd: "true"})

	diffs := old.Diff(next)

	byAlias := make(map[string]DiffEntry, len(diffs))
	for _, d := range diffs {
		byAlias[d.Alias] = d
	}

	if !byAlias["removed"].IsRemoved() {
		t.Errorf("removed entry = %+v, want IsRemoved", byAlias["removed"])
	}
	if !byAlias["changed"].IsChanged() {
		t.Errorf("changed entry = %+v, want IsChanged", byAlias["changed"])
	}
	if !byAlias["added"].IsAdded() {
		t.Errorf("added entry = %+v, want IsAdded", byAlias["added"])
	}
	if byAlias["unchanged"].IsRemoved() || byAlias["unchanged"].IsChanged() || byAlias["unchanged"].IsAdded() {
		t.Errorf("unchanged entry = %+v, want no action", byAlias["unchanged"])
	}
}

func TestRegistryPutAndDelete(t *testing.T) {
	r := NewRegistry()
	r.Put(Service{Alias: "web", Cmd: "true"})

	if _, ok := r.Get("web"); !ok {
		t.Fatalf("Get(web) not found after Put")
	}

	r.Delete("web")
	if _, ok := r.Get("web"); ok {
		t.Fatalf("Get(web) found after Delete")
	}
}

func TestLoadWalksNestedDirs(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeFile(t, nested, "web.toml", "alias = \"web\"\ncmd = \"true\"\n")

	registry, err := Load([]string{dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := registry.Get("web"); !ok {
		t.Fatalf("Get(web) not found after walking nested dir")
	}
}
