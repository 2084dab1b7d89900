package cli

import (
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/matzehuels/pinboard/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[board]
columns = 4
width = 1200

[board.insets]
left = 16
right = 16

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[server]
addr = ":9090"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Board.Columns != 4 || cfg.Board.Width != 1200 || cfg.Board.Insets.Left != 16 {
		t.Errorf("board config = %+v", cfg.Board)
	}
	if cfg.Board.Padding != defaultConfig().Board.Padding {
		t.Errorf("unset padding should keep its default, got %v", cfg.Board.Padding)
	}
	if cfg.Cache.Backend != cacheBackendRedis || cfg.Server.Addr != ":9090" {
		t.Errorf("cache/server config = %+v %+v", cfg.Cache, cfg.Server)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() without a file error: %v", err)
	}
	if cfg.Board.Columns != defaultConfig().Board.Columns {
		t.Errorf("expected defaults, got %+v", cfg.Board)
	}

	if err := os.MkdirAll(filepath.Join(xdg, "pinboard"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(xdg, "pinboard"), "config.toml", "[board]\ncolumns = 5\n")
	cfg, err = loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Board.Columns != 5 {
		t.Errorf("columns = %d, want 5 from the default location", cfg.Board.Columns)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		code    perrors.Code
	}{
		{"malformed", "[board", perrors.ErrCodeInvalidConfig},
		{"unknown key", "[board]\ncolumnz = 3\n", perrors.ErrCodeInvalidConfig},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n", perrors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", perrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeFile(t, dir, tt.name+".toml", tt.content))
			if got := perrors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}

	_, err := loadConfig(filepath.Join(dir, "missing.toml"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}
