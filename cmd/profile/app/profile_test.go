package app

import (
	"context"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/roman-kulish/flightlog-fusion/internal/align"
	"github.com/roman-kulish/flightlog-fusion/internal/merge"
	"github.com/roman-kulish/flightlog-fusion/internal/storage"
)

func testProfile(n int) *ProfileData {
	p := NewProfileData(1)
	for i := 0; i < n; i++ {
		p.Update(&merge.Record{
			Time:     "10:00:00",
			Distance: int64(i * 10),
			Link:     align.LinkStats{Bitrate: float64(i % 40), Delay: 30},
		})
	}
	return p
}

func TestProfileData_Columns(t *testing.T) {
	p := testProfile(10)

	cols := p.Columns(4)
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}

	// rows split 2,3,2,3
	expected := []Column{
		{FirstRow: 0, Bitrate: 0.5, Distance: 10},
		{FirstRow: 2, Bitrate: 3, Distance: 40},
		{FirstRow: 5, Bitrate: 5.5, Distance: 60},
		{FirstRow: 7, Bitrate: 8, Distance: 90},
	}
	for i, want := range expected {
		if cols[i] != want {
			t.Errorf("column %d = %+v, want %+v", i, cols[i], want)
		}
	}

	if got := len(p.Columns(100)); got != 10 {
		t.Errorf("expected one column per row when wider than rows, got %d", got)
	}
	if p.Columns(0) != nil || NewProfileData(1).Columns(10) != nil {
		t.Error("expected no columns")
	}
}

func TestProfileData_Update(t *testing.T) {
	p := testProfile(50)
	if p.Rows != 50 || p.MaxDistance != 490 {
		t.Errorf("unexpected totals rows=%d maxDistance=%d", p.Rows, p.MaxDistance)
	}
	if p.BitrateMin != 0 || p.BitrateMax != 39 {
		t.Errorf("unexpected bitrate range %.1f - %.1f", p.BitrateMin, p.BitrateMax)
	}
}

func TestBitrateHistogram_Bounds(t *testing.T) {
	h := NewBitrateHistogram()
	if h.GetPercentileBounds() != defaultBitrateBounds() {
		t.Error("expected default bounds without samples")
	}

	for i := 0; i < 100; i++ {
		h.Update(float64(i % 50))
	}
	h.Update(math.NaN())

	b := h.GetPercentileBounds()
	if h.Count() != 100 {
		t.Errorf("NaN should be ignored, count = %d", h.Count())
	}
	if b.Min < 0 || b.Min > 5 || b.Max < 45 || b.Max > 55 {
		t.Errorf("unexpected bounds %+v", b)
	}
	if math.Abs(b.Mean-24.5) > 1e-9 {
		t.Errorf("mean = %f, want 24.5", b.Mean)
	}
}

func TestBitrateHistogram_MinimumRange(t *testing.T) {
	h := NewBitrateHistogram()
	for i := 0; i < 40; i++ {
		h.Update(25)
	}

	b := h.GetPercentileBounds()
	if b.Max-b.Min < minimumBitrateRange {
		t.Errorf("range %.2f below minimum", b.Max-b.Min)
	}
	if b.Min > 25 || b.Max < 25 {
		t.Errorf("bounds %+v do not cover the readings", b)
	}
}

func TestColorMapper(t *testing.T) {
	bounds := BitrateBounds{Min: 0, Max: 50}

	for theme := range validThemes {
		cm := NewColorMapper(theme, bounds)

		lo, hi := cm.GetColor(-10), cm.GetColor(100)
		if lo != cm.GetColor(0) {
			t.Errorf("%s: values below range should clamp to the first color", theme)
		}
		if hi != cm.GetColor(60) {
			t.Errorf("%s: values above range should clamp to the last color", theme)
		}
		if lo == hi {
			t.Errorf("%s: gradient ends should differ", theme)
		}
	}

	cm := NewColorMapper(LinkTheme, BitrateBounds{Min: 10, Max: 10})
	if cm.GetColor(10) == nil {
		t.Error("expected a color for an empty range")
	}
}

func TestColorMapper_ThermalEnds(t *testing.T) {
	cm := NewColorMapper(ThermalTheme, BitrateBounds{Min: 0, Max: 50})

	r, g, b, _ := cm.GetColor(0).RGBA()
	if r > 0x0200 || g > 0x0200 || b > 0x0200 {
		t.Errorf("lowest bitrate should be black, got %04x %04x %04x", r, g, b)
	}

	r, g, b, _ = cm.GetColor(50).RGBA()
	if r < 0xfd00 || g < 0xfd00 || b < 0xfd00 {
		t.Errorf("highest bitrate should be white, got %04x %04x %04x", r, g, b)
	}

	// red stop sits a third of the way along
	r, g, b, _ = cm.GetColor(50.0 / 3).RGBA()
	if r < 0xe000 || g > 0x2000 || b > 0x2000 {
		t.Errorf("expected red at the second stop, got %04x %04x %04x", r, g, b)
	}
}

func TestProfileData_BoundsIgnoreRowOrder(t *testing.T) {
	ascending := NewProfileData(1)
	descending := NewProfileData(1)
	for i := 0; i < 200; i++ {
		ascending.Update(&merge.Record{Link: align.LinkStats{Bitrate: float64(i) / 4}})
		descending.Update(&merge.Record{Link: align.LinkStats{Bitrate: float64(199-i) / 4}})
	}

	a, d := ascending.Bounds(), descending.Bounds()
	if a.Min != d.Min || a.Max != d.Max {
		t.Errorf("bounds depend on row order: %+v vs %+v", a, d)
	}
	if a != ascending.Histogram.GetPercentileBounds() {
		t.Errorf("bounds %+v differ from the histogram percentiles", a)
	}
}

func TestProfileRenderer_Render(t *testing.T) {
	p := testProfile(300)

	r, err := NewProfileRenderer(RenderConfig{Width: 200, Height: 100, ColorTheme: GrayscaleTheme})
	if err != nil {
		t.Fatalf("NewProfileRenderer() error: %v", err)
	}

	img, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	expectedW := 200 + defaultLeftBorder + defaultRightBorder
	expectedH := 100 + defaultTopBorder + defaultBottomBorder
	if img.Bounds().Dx() != expectedW || img.Bounds().Dy() != expectedH {
		t.Errorf("image size %v, want %dx%d", img.Bounds().Size(), expectedW, expectedH)
	}

	// distance line starts at the bottom left of the plot
	if c := img.At(defaultLeftBorder, defaultTopBorder+99); c != color.Color(distanceColor) {
		t.Errorf("expected distance line at plot origin, got %v", c)
	}
}

func TestProfileRenderer_NoAnnotations(t *testing.T) {
	r, err := NewProfileRenderer(RenderConfig{Width: 50, Height: 20, NoAnnotations: true})
	if err != nil {
		t.Fatalf("NewProfileRenderer() error: %v", err)
	}

	img, err := r.Render(testProfile(10))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 20 {
		t.Errorf("unexpected image size %v", img.Bounds().Size())
	}

	if _, err = r.Render(NewProfileData(2)); err == nil {
		t.Error("expected error rendering an empty session")
	}
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		span, ticks, want float64
	}{
		{span: 1000, ticks: 5, want: 200},
		{span: 1234, ticks: 4, want: 500},
		{span: 90, ticks: 10, want: 10},
		{span: 3, ticks: 10, want: 1},
		{span: 0, ticks: 5, want: 1},
	}
	for _, tt := range tests {
		if got := niceStep(tt.span, tt.ticks); got != tt.want {
			t.Errorf("niceStep(%v, %v) = %v, want %v", tt.span, tt.ticks, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "flights.db")

	store := storage.NewSqliteStore(dbPath)
	id, err := store.CreateSession(ctx, storage.Source{Path: "a.csv"}, storage.Source{Path: "a.srt"}, merge.DefaultSchema(), nil)
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	records := make([]merge.Record, 120)
	for i := range records {
		records[i] = merge.Record{Time: "10:00:00", Distance: int64(i * 5), Link: align.LinkStats{Bitrate: 20 + float64(i%10)}}
	}
	if err = store.StoreRecords(ctx, id, records); err != nil {
		t.Fatalf("StoreRecords() error: %v", err)
	}
	if err = store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	c, err := NewConfigFromCLI([]string{"-db", dbPath, "-s", "1", "-o", filepath.Join(dir, "profile"), "-width", "100", "-height", "50"})
	if err != nil {
		t.Fatalf("NewConfigFromCLI() error: %v", err)
	}

	if err = Run(ctx, c, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "profile.png"))
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if img.Bounds().Dx() != 100+defaultLeftBorder+defaultRightBorder {
		t.Errorf("unexpected image width %d", img.Bounds().Dx())
	}
}

func TestNewConfigFromCLI(t *testing.T) {
	c, err := NewConfigFromCLI([]string{"-db", "f.db", "-o", "out", "-f", "JPEG", "-theme", "thermal", "-min-bitrate", "5"})
	if err != nil {
		t.Fatalf("NewConfigFromCLI() error: %v", err)
	}
	if c.OutputFile != "out.jpeg" || c.Theme != ThermalTheme {
		t.Errorf("unexpected config %+v", c)
	}
	if c.MinBitrate == nil || *c.MinBitrate != 5 || c.MaxBitrate != nil {
		t.Errorf("unexpected bitrate overrides %v %v", c.MinBitrate, c.MaxBitrate)
	}

	invalid := [][]string{
		{"-o", "out"},
		{"-db", "f.db"},
		{"-db", "f.db", "-o", "out", "-f", "gif"},
		{"-db", "f.db", "-o", "out", "-theme", "neon"},
		{"-db", "f.db", "-o", "out", "-s", "0"},
		{"-db", "f.db", "-o", "out", "-min-bitrate", "20", "-max-bitrate", "10"},
	}
	for _, args := range invalid {
		if _, err = NewConfigFromCLI(args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}
