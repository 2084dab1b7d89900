package cli

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinboard/pkg/board"
)

const testBoard = `{
  "config": {"width": 300},
  "items": [
    {"id": "a", "title": "Alpha", "height": 100},
    {"id": "b", "height": 50},
    {"id": "c", "image": "wide.png"}
  ]
}`

// run executes the root command with args in an isolated environment.
func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func boardDir(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	f, err := os.Create(filepath.Join(dir, "wide.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 276, 138))); err != nil {
		t.Fatal(err)
	}
	return dir, writeFile(t, dir, "board.json", testBoard)
}

func readLayout(t *testing.T, path string) board.Layout {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var l board.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return l
}

func TestLayoutCommand(t *testing.T) {
	dir, path := boardDir(t)
	if err := run(t, "layout", path); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	l := readLayout(t, filepath.Join(dir, "board.layout.json"))
	if l.ItemCount != 3 || l.Columns != 2 {
		t.Fatalf("layout = %+v", l)
	}
	// inner width 150 - 12 = 138, so the 2:1 image is 69 tall
	if h := l.Items[2].Frame.Height; h != 69 {
		t.Errorf("image item height = %v, want 69", h)
	}
}

func TestLayoutCommandFlags(t *testing.T) {
	dir, path := boardDir(t)
	out := filepath.Join(dir, "out.json")
	if err := run(t, "layout", path, "-o", out, "--columns", "3", "--width", "600", "--no-images"); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	l := readLayout(t, out)
	if l.Columns != 3 || l.Width != 600 || l.ColumnWidth != 200 {
		t.Errorf("flags not applied: columns=%d width=%v column width=%v", l.Columns, l.Width, l.ColumnWidth)
	}
	if h := l.Items[2].Frame.Height; h != board.DefaultConfig().FallbackHeight {
		t.Errorf("--no-images should leave the fallback height, got %v", h)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", filepath.Join(dir, "nope.json")}},
		{"bad columns", []string{"layout", writeFile(t, dir, "ok.json", `{"items": []}`), "--columns", "0"}},
		{"bad policy", []string{"layout", writeFile(t, dir, "ok2.json", `{"items": []}`), "--policy", "random"}},
		{"no args", []string{"layout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	dir, path := boardDir(t)
	if err := run(t, "render", path, "--top", "100", "--view-height", "50"); err != nil {
		t.Fatalf("render error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "board.svg"))
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, `viewBox="0.0 100.0 300.0 50.0"`) {
		t.Errorf("viewport not applied: %.120s", svg)
	}
	// item a spans y 6..106 and c starts at 118, so only a is in view
	if !strings.Contains(svg, `id="item-a"`) || strings.Contains(svg, `id="item-c"`) {
		t.Error("unexpected items in viewport render")
	}
}

func TestRenderCommandBadColor(t *testing.T) {
	_, path := boardDir(t)
	if err := run(t, "render", path, "--fill", "red"); err == nil {
		t.Error("expected error for invalid fill color")
	}
	if err := run(t, "render", path, "--stroke", `"/><script>`); err == nil {
		t.Error("expected error for invalid stroke color")
	}
}

func TestRenderCommandStroke(t *testing.T) {
	dir, path := boardDir(t)
	if err := run(t, "render", path, "--stroke", "#123"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "board.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), `stroke="#123"`); n != 3 {
		t.Errorf("stroke applied to %d items, want 3", n)
	}
}

func TestVisibleCommand(t *testing.T) {
	_, path := boardDir(t)
	if err := run(t, "visible", path, "--top", "0", "--view-height", "10"); err != nil {
		t.Errorf("visible error: %v", err)
	}
	if err := run(t, "visible", path, "--view-height", "-1"); err == nil {
		t.Error("expected error for negative viewport height")
	}
}

func TestCachePathCommand(t *testing.T) {
	if err := run(t, "cache", "path"); err != nil {
		t.Errorf("cache path error: %v", err)
	}
	if err := run(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear error: %v", err)
	}
}

func TestConfigFlag(t *testing.T) {
	dir, path := boardDir(t)
	cfg := writeFile(t, dir, "pinboard.toml", "[board]\ncolumns = 3\n")
	out := filepath.Join(dir, "out.json")

	if err := run(t, "--config", cfg, "layout", path, "-o", out, "--no-images"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if l := readLayout(t, out); l.Columns != 3 {
		t.Errorf("columns = %d, want 3 from config file", l.Columns)
	}
}
