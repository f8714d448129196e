package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home directory: %v", err)
	}
	t.Setenv("MOLTSCOPE_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "absolute untouched", in: "/tmp/moltscope.db", want: "/tmp/moltscope.db"},
		{name: "bare tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/.local/share/moltscope/moltscope.db", want: filepath.Join(home, ".local", "share", "moltscope", "moltscope.db")},
		{name: "env var", in: "$MOLTSCOPE_TEST_DIR/scores.db", want: "/var/data/scores.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
