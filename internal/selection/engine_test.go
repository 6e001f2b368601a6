package selection

import (
	"errors"
	goimage "image"
	"testing"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/mask"
)

// checkerboard returns a size x size buffer of cell x cell black and white squares.
func checkerboard(size, cell int) *image.Buffer {
	buf := image.NewBuffer(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(0)
			if (x/cell+y/cell)%2 == 1 {
				v = 255
			}
			buf.Set(x, y, v, v, v, 255)
		}
	}
	return buf
}

func newEngine(t *testing.T, buf *image.Buffer, opts ...Option) *Engine {
	t.Helper()
	e, err := New(buf, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestMagicWandContiguousCheckerboard(t *testing.T) {
	e := newEngine(t, checkerboard(8, 2))

	if err := e.MagicWand(goimage.Pt(2, 2), 0, true, Replace); err != nil {
		t.Fatalf("MagicWand() error = %v", err)
	}

	m := e.Mask()
	if m.Count() != 4 {
		t.Errorf("selected %d pixels, want 4", m.Count())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := x >= 2 && x <= 3 && y >= 2 && y <= 3
			if m.Selected(x, y) != want {
				t.Errorf("Selected(%d, %d) = %v, want %v", x, y, m.Selected(x, y), want)
			}
		}
	}
}

func TestMagicWandGlobal(t *testing.T) {
	e := newEngine(t, checkerboard(8, 2))

	if err := e.MagicWand(goimage.Pt(0, 0), 0, false, Replace); err != nil {
		t.Fatalf("MagicWand() error = %v", err)
	}
	if e.Mask().Count() != 32 {
		t.Errorf("selected %d pixels, want 32", e.Mask().Count())
	}
	if !e.Mask().Selected(7, 7) || e.Mask().Selected(2, 0) {
		t.Error("global match selected the wrong cells")
	}
}

func TestMagicWandTolerance(t *testing.T) {
	buf := image.NewBuffer(5, 1)
	for x, v := range []uint8{100, 110, 120, 200, 105} {
		buf.Set(x, 0, v, v, v, 255)
	}

	tests := []struct {
		name       string
		tolerance  float64
		contiguous bool
		want       int
	}{
		{"exact", 0, true, 1},
		{"near neighbour", 20, true, 2},
		{"chain stops at outlier", 40, true, 3},
		{"global skips outlier", 40, false, 4},
		{"wide global", 200, false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, buf)
			if err := e.MagicWand(goimage.Pt(0, 0), tt.tolerance, tt.contiguous, Replace); err != nil {
				t.Fatalf("MagicWand() error = %v", err)
			}
			if got := e.Mask().Count(); got != tt.want {
				t.Errorf("selected %d pixels, want %d", got, tt.want)
			}
		})
	}
}

func TestMagicWandOps(t *testing.T) {
	e := newEngine(t, checkerboard(4, 2))

	if err := e.MagicWand(goimage.Pt(0, 0), 0, true, Replace); err != nil {
		t.Fatal(err)
	}
	if err := e.MagicWand(goimage.Pt(3, 3), 0, true, Add); err != nil {
		t.Fatal(err)
	}
	if e.Mask().Count() != 8 {
		t.Errorf("after Add selected %d pixels, want 8", e.Mask().Count())
	}

	if err := e.MagicWand(goimage.Pt(0, 0), 0, true, Subtract); err != nil {
		t.Fatal(err)
	}
	if e.Mask().Count() != 4 || !e.Mask().Selected(3, 3) || e.Mask().Selected(0, 0) {
		t.Errorf("after Subtract mask = %v", e.Mask().Data)
	}

	if err := e.MagicWand(goimage.Pt(2, 0), 0, true, Replace); err != nil {
		t.Fatal(err)
	}
	if e.Mask().Count() != 4 || e.Mask().Selected(3, 3) || !e.Mask().Selected(2, 0) {
		t.Errorf("after Replace mask = %v", e.Mask().Data)
	}
}

func TestMagicWandOutOfBounds(t *testing.T) {
	e := newEngine(t, checkerboard(4, 2))

	for _, p := range []goimage.Point{{X: -1, Y: 0}, {X: 0, Y: 4}, {X: 100, Y: 100}} {
		if err := e.MagicWand(p, 10, true, Replace); err != nil {
			t.Errorf("MagicWand(%v) error = %v, want nil", p, err)
		}
	}
	if e.HistoryLen() != 0 {
		t.Errorf("HistoryLen() = %d, want 0", e.HistoryLen())
	}
	if e.Mask().Count() != 0 {
		t.Errorf("mask changed by off-canvas seed")
	}
}

func TestMagicWandLargeUniformRegion(t *testing.T) {
	buf := image.NewBuffer(600, 600)
	for i := 3; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = 255
	}
	e := newEngine(t, buf)

	if err := e.MagicWand(goimage.Pt(300, 300), 0, true, Replace); err != nil {
		t.Fatalf("MagicWand() error = %v", err)
	}
	if e.Mask().Count() != 600*600 {
		t.Errorf("selected %d pixels, want %d", e.Mask().Count(), 600*600)
	}
}

func TestBulkColorErase(t *testing.T) {
	buf := image.NewBuffer(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			buf.Set(x, y, 255, 255, 255, 255)
		}
	}
	// Two disjoint near-red squares.
	for _, origin := range []goimage.Point{{X: 0, Y: 0}, {X: 7, Y: 7}} {
		for y := origin.Y; y < origin.Y+2; y++ {
			for x := origin.X; x < origin.X+2; x++ {
				buf.Set(x, y, 250, 10, 5, 255)
			}
		}
	}

	e := newEngine(t, buf)
	erased, err := e.BulkColorErase(colour.Opaque(255, 0, 0), 30)
	if err != nil {
		t.Fatalf("BulkColorErase() error = %v", err)
	}
	if erased != 8 {
		t.Errorf("BulkColorErase() erased %d, want 8", erased)
	}

	for _, p := range []goimage.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 7, Y: 7}, {X: 8, Y: 8}} {
		if _, _, _, a := e.Buffer().At(p.X, p.Y); a != 0 {
			t.Errorf("alpha at %v = %d, want 0", p, a)
		}
	}
	if _, _, _, a := e.Buffer().At(5, 5); a != 255 {
		t.Errorf("alpha at background = %d, want 255", a)
	}
	if e.Mask().Count() != 0 {
		t.Error("BulkColorErase() modified the mask")
	}
	if _, _, _, a := buf.At(0, 0); a != 255 {
		t.Error("BulkColorErase() modified the caller's buffer")
	}
}

func TestBrushStrokeAndLasso(t *testing.T) {
	e := newEngine(t, image.NewBuffer(20, 20))

	if err := e.BrushStroke(goimage.Pt(2, 10), goimage.Pt(17, 10), 2, 100, mask.Paint); err != nil {
		t.Fatalf("BrushStroke() error = %v", err)
	}
	for x := 2; x <= 17; x++ {
		if !e.Mask().Selected(x, 10) {
			t.Errorf("stroke gap at x=%d", x)
		}
	}

	if err := e.BrushStroke(goimage.Pt(10, 10), goimage.Pt(10, 10), 3, 100, mask.Erase); err != nil {
		t.Fatalf("BrushStroke() error = %v", err)
	}
	if e.Mask().Selected(10, 10) {
		t.Error("erase stroke left (10,10) selected")
	}

	before := e.HistoryLen()
	if err := e.LassoClose([]goimage.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}); err != nil {
		t.Fatalf("LassoClose() error = %v", err)
	}
	if e.HistoryLen() != before {
		t.Error("degenerate lasso recorded history")
	}

	if err := e.LassoClose([]goimage.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}); err != nil {
		t.Fatalf("LassoClose() error = %v", err)
	}
	if !e.Mask().Selected(1, 1) || !e.Mask().Selected(3, 3) {
		t.Error("lasso did not select its interior")
	}
	if !e.Mask().Selected(17, 10) {
		t.Error("lasso did not union with the existing selection")
	}
}

func TestBrushStrokeOffCanvas(t *testing.T) {
	e := newEngine(t, image.NewBuffer(8, 8))

	for _, seg := range [][2]goimage.Point{
		{goimage.Pt(100, 100), goimage.Pt(100, 100)},
		{goimage.Pt(20, -30), goimage.Pt(40, 50)},
		{goimage.Pt(-1<<40, -5), goimage.Pt(1<<40, -5)},
	} {
		if err := e.BrushStroke(seg[0], seg[1], 2, 100, mask.Paint); err != nil {
			t.Fatalf("BrushStroke(%v, %v) error = %v", seg[0], seg[1], err)
		}
	}
	if e.HistoryLen() != 0 {
		t.Errorf("HistoryLen() = %d after off canvas strokes, want 0", e.HistoryLen())
	}
	if mask.HasSelection(e.Mask()) {
		t.Error("off canvas strokes selected pixels")
	}

	// A far off canvas start is clipped, not walked.
	if err := e.BrushStroke(goimage.Pt(-1<<40, 0), goimage.Pt(3, 3), 2, 100, mask.Paint); err != nil {
		t.Fatalf("BrushStroke() error = %v", err)
	}
	if e.HistoryLen() != 1 {
		t.Errorf("HistoryLen() = %d, want 1", e.HistoryLen())
	}
	for x := 0; x <= 3; x++ {
		if !e.Mask().Selected(x, 3) {
			t.Errorf("clipped stroke missed (%d,3)", x)
		}
	}
	if e.Mask().Selected(6, 3) {
		t.Error("clipped stroke ran past its end point")
	}
}

func TestUndoRoundTrip(t *testing.T) {
	orig := checkerboard(16, 4)
	e := newEngine(t, orig)

	steps := []func() error{
		func() error { return e.MagicWand(goimage.Pt(1, 1), 10, true, Replace) },
		func() error { _, err := e.BulkColorErase(colour.Opaque(255, 255, 255), 5); return err },
		func() error { return e.BrushStroke(goimage.Pt(0, 15), goimage.Pt(15, 0), 2, 50, mask.Paint) },
		func() error {
			return e.LassoClose([]goimage.Point{{X: 8, Y: 8}, {X: 15, Y: 8}, {X: 12, Y: 15}})
		},
		func() error { return e.Grow(1) },
		func() error { return e.Feather(2) },
		func() error { return e.Shrink(1) },
		func() error { return e.Invert() },
		func() error { return e.Clear() },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
	}
	if e.HistoryLen() != len(steps) {
		t.Fatalf("HistoryLen() = %d, want %d", e.HistoryLen(), len(steps))
	}

	for range steps {
		if !e.Undo() {
			t.Fatal("Undo() = false before history was exhausted")
		}
	}

	if e.Mask().Count() != 0 || !e.Mask().Equal(mask.New(16, 16)) {
		t.Error("mask not restored to empty")
	}
	if !e.Buffer().Equal(orig) {
		t.Error("buffer not restored bit-for-bit")
	}
	if e.Undo() {
		t.Error("Undo() on empty history = true, want false")
	}
}

func TestHistoryLimit(t *testing.T) {
	e := newEngine(t, checkerboard(4, 1), WithHistoryLimit(2))

	for i := range 3 {
		if err := e.MagicWand(goimage.Pt(i, 0), 0, false, Add); err != nil {
			t.Fatal(err)
		}
	}
	if e.HistoryLen() != 2 {
		t.Errorf("HistoryLen() = %d, want 2", e.HistoryLen())
	}
	e.Undo()
	e.Undo()
	if e.Undo() {
		t.Error("Undo() past the history limit = true")
	}
	// The first wand cannot be undone once evicted.
	if e.Mask().Count() != 8 {
		t.Errorf("selected %d pixels, want 8", e.Mask().Count())
	}
}

func TestSetMask(t *testing.T) {
	e := newEngine(t, image.NewBuffer(4, 4))

	m := mask.New(4, 4)
	m.Set(1, 1, 255)
	if err := e.SetMask(m); err != nil {
		t.Fatalf("SetMask() error = %v", err)
	}
	if !e.Mask().Selected(1, 1) {
		t.Error("SetMask() did not install the mask")
	}

	if err := e.SetMask(mask.New(3, 4)); !errors.Is(err, image.ErrInvalidDimensions) {
		t.Errorf("SetMask() error = %v, want ErrInvalidDimensions", err)
	}
}

func TestNewRejectsInvalidBuffer(t *testing.T) {
	_, err := New(&image.Buffer{Width: 2, Height: 2, Pix: make([]uint8, 3)})
	if !errors.Is(err, image.ErrInvalidDimensions) {
		t.Errorf("New() error = %v, want ErrInvalidDimensions", err)
	}
}

func TestParseOp(t *testing.T) {
	for _, op := range []Op{Replace, Add, Subtract} {
		got, err := ParseOp(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOp(%q) = %v, %v, want %v", op.String(), got, err, op)
		}
	}
	if _, err := ParseOp("xor"); err == nil {
		t.Error("ParseOp(xor) error = nil")
	}
}
