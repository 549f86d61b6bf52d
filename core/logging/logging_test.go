package logging

import "testing"

func TestNew(t *testing.T) {
	for _, mode := range []string{"", "dev", "PROD", "off"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.Debug("hello")
	}
	if _, err := New("verbose"); err == nil {
		t.Error("unknown mode accepted")
	}
}
