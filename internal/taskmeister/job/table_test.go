package job

import "testing"

func TestTableGetOrCreate(t *testing.T) {
	table := NewTable()

	j1 := table.GetOrCreate("web")
	if !j1.Status.IsCreated() {
		t.Fatalf("fresh job status = %v, want Created", j1.Status)
	}

	j1.Status = Running(true)

	j2 := table.GetOrCreate("web")
	if j2 != j1 {
		t.Fatalf("GetOrCreate returned a different record for the same alias")
	}
	if !j2.Status.IsRunning() {
		t.Fatalf("GetOrCreate returned a fresh record instead of the existing one")
	}
}

func TestTableDelete(t *testing.T) {
	table := NewTable()
	table.GetOrCreate("web")

	table.Delete("web")

	if _, ok := table.Get("web"); ok {
		t.Fatalf("Get(web) found a record after Delete")
	}
}

func TestTableAll(t *testing.T) {
	table := NewTable()
	table.GetOrCreate("web")
	table.GetOrCreate("worker")

	all := table.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d jobs, want 2", len(all))
	}
}
