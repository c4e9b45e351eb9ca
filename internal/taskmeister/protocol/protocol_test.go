package protocol

import "testing"

func TestResponsePartConstructors(t *testing.T) {
	if p := Info("ok"); p.Info == nil || *p.Info != "ok" || p.IsError() {
		t.Errorf("Info(%q) = %+v", "ok", p)
	}
	if p := Err("boom"); p.Error == nil || *p.Error != "boom" || !p.IsError() {
		t.Errorf("Err(%q) = %+v", "boom", p)
	}
	if p := Stream([]byte("x")); string(p.Stream) != "x" || p.IsError() {
		t.Errorf("Stream(%q) = %+v", "x", p)
	}
}
