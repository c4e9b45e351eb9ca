package job

// Table is the in-memory Job Table keyed by alias (spec.md §3). Only the
// Orchestrator goroutine touches a Table, so it needs no lock (spec.md
// invariant 4).
type Table struct {
	jobs map[string]*Job
}

// NewTable creates an empty Job Table.
func NewTable() *Table {
	return &Table{jobs: make(map[string]*Job)}
}

// Get returns the Job for alias, if one has ever been started.
func (t Table) Get(alias string) (*Job, bool) {
	j, ok := t.jobs[alias]
	return j, ok
}

// GetOrCreate returns the existing Job for alias, creating one in the
// Created state if none exists yet.
func (t *Table) GetOrCreate(alias string) *Job {
	j, ok := t.jobs[alias]
	if !ok {
		j = New(alias)
		t.jobs[alias] = j
	}
	return j
}

// Delete removes alias's Job record. Called when the remove_service flag is
// consumed on a Finished transition (spec.md §4.3).
func (t *Table) Delete(alias string) {
	delete(t.jobs, alias)
}

// All returns every Job currently tracked, in no particular order.
func (t Table) All() []*Job {
	jobs := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		jobs = append(jobs, j)
	}
	return jobs
}
