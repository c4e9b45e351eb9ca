package job

import "testing"

func TestStatusPredicates(t *testing.T) {
	tests := map[string]struct {
		status      Status
		wantCreated bool
		wantStart   bool
		wantRunning bool
		wantHealthy bool
		wantStop    bool
		wantFinish  bool
		wantTimeout bool
	}{
		"created":           {status: Created, wantCreated: true},
		"starting":          {status: Starting, wantStart: true},
		"running healthy":   {status: Running(true), wantRunning: true, wantHealthy: true},
		"running unhealthy": {status: Running(false), wantRunning: true, wantHealthy: false},
		"stopping":          {status: Stopping, wantStop: true},
		"finished":          {status: Finished(1), wantFinish: true},
		"timed out":         {status: TimedOut, wantTimeout: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.status.IsCreated(); got != tc.wantCreated {
				t.Errorf("IsCreated() = %v, want %v", got, tc.wantCreated)
			}
			if got := tc.status.IsStarting(); got != tc.wantStart {
				t.Errorf("IsStarting() = %v, want %v", got, tc.wantStart)
			}
			if got := tc.status.IsRunning(); got != tc.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", got, tc.wantRunning)
			}
			if got := tc.status.IsHealthy(); got != tc.wantHealthy {
				t.Errorf("IsHealthy() = %v, want %v", got, tc.wantHealthy)
			}
			if got := tc.status.IsStopping(); got != tc.wantStop {
				t.Errorf("IsStopping() = %v, want %v", got, tc.wantStop)
			}
			if got := tc.status.IsFinished(); got != tc.wantFinish {
				t.Errorf("IsFinished() = %v, want %v", got, tc.wantFinish)
			}
			if got := tc.status.IsTimedOut(); got != tc.wantTimeout {
				t.Errorf("IsTimedOut() = %v, want %v", got, tc.wantTimeout)
			}
		})
	}
}

func TestStatusExitCode(t *testing.T) {
	s := Finished(17)
	if got := s.ExitCode(); got != 17 {
		t.Errorf("ExitCode() = %d, want 17", got)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[string]struct {
		status Status
		want   string
	}{
		"created":   {Created, "created"},
		"starting":  {Starting, "starting"},
		"healthy":   {Running(true), "running(healthy)"},
		"unhealthy": {Running(false), "running(unhealthy)"},
		"stopping":  {Stopping, "stopping"},
		"finished":  {Finished(2), "finished(2)"},
		"timed_out": {TimedOut, "timed_out"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.status.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestJobFlagsConsumeOnce(t *testing.T) {
	j := New("web")

	j.SetFlags(Flags{RemoveService: true, RestartJob: true})

	got := j.ConsumeFlags()
	if !got.RemoveService || !got.RestartJob {
		t.Fatalf("ConsumeFlags() = %+v, want both true", got)
	}

	got = j.ConsumeFlags()
	if got.RemoveService || got.RestartJob {
		t.Fatalf("second ConsumeFlags() = %+v, want zero value", got)
	}
}

func TestNewJobStartsCreated(t *testing.T) {
	j := New("web")
	if !j.Status.IsCreated() {
		t.Errorf("New job status = %v, want Created", j.Status)
	}
	if j.Alias != "web" {
		t.Errorf("Alias = %q, want web", j.Alias)
	}
}
