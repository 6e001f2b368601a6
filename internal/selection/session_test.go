package selection

import (
	"errors"
	goimage "image"
	"testing"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/mask"
)

func TestSessionLifecycle(t *testing.T) {
	orig := checkerboard(4, 2)
	e := newEngine(t, orig)

	if e.State() != Idle {
		t.Fatalf("State() = %v, want idle", e.State())
	}
	if err := e.Begin(); err != nil || e.State() != Selecting {
		t.Fatalf("Begin() = %v, state %v", err, e.State())
	}
	if err := e.MagicWand(goimage.Pt(0, 0), 0, true, Replace); err != nil {
		t.Fatal(err)
	}

	preview, err := e.Preview()
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if e.State() != Previewing {
		t.Errorf("State() = %v, want previewing", e.State())
	}
	if _, _, _, a := preview.At(0, 0); a != 0 {
		t.Errorf("preview alpha at selection = %d, want 0", a)
	}
	if !e.Buffer().Equal(orig) {
		t.Error("Preview() modified the engine buffer")
	}

	// A gesture after previewing returns to selecting.
	if err := e.Grow(0); err != nil || e.State() != Selecting {
		t.Errorf("Grow() = %v, state %v, want selecting", err, e.State())
	}

	out, err := e.Commit()
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if e.State() != Committed {
		t.Errorf("State() = %v, want committed", e.State())
	}
	if _, _, _, a := out.At(0, 0); a != 0 {
		t.Errorf("committed alpha at selection = %d, want 0", a)
	}
	if _, _, _, a := out.At(3, 0); a != 255 {
		t.Errorf("committed alpha outside selection = %d, want 255", a)
	}
}

func TestBulkEraseCommitWithEmptyMask(t *testing.T) {
	e := newEngine(t, checkerboard(4, 2))
	n, err := e.BulkColorErase(colour.Opaque(255, 255, 255), 0)
	if err != nil || n != 8 {
		t.Fatalf("BulkColorErase() = %d, %v, want 8 pixels", n, err)
	}

	out, err := e.Commit()
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if e.State() != Committed {
		t.Errorf("State() = %v, want committed", e.State())
	}
	if _, _, _, a := out.At(2, 0); a != 0 {
		t.Errorf("erased alpha = %d, want 0", a)
	}
	if _, _, _, a := out.At(0, 0); a != 255 {
		t.Errorf("untouched alpha = %d, want 255", a)
	}
}

func TestSessionKeepMode(t *testing.T) {
	e := newEngine(t, checkerboard(4, 2), WithApplyMode(mask.ApplyKeep))
	if err := e.MagicWand(goimage.Pt(0, 0), 0, true, Replace); err != nil {
		t.Fatal(err)
	}
	out, err := e.Commit()
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if _, _, _, a := out.At(0, 0); a != 255 {
		t.Errorf("kept alpha = %d, want 255", a)
	}
	if _, _, _, a := out.At(3, 0); a != 0 {
		t.Errorf("dropped alpha = %d, want 0", a)
	}
}

func TestSessionClosed(t *testing.T) {
	tests := []struct {
		name  string
		close func(*Engine) error
		want  State
	}{
		{"committed", func(e *Engine) error { _, err := e.Commit(); return err }, Committed},
		{"cancelled", func(e *Engine) error { return e.Cancel() }, Cancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, checkerboard(4, 2))
			if err := e.MagicWand(goimage.Pt(0, 0), 0, true, Replace); err != nil {
				t.Fatal(err)
			}
			if err := tt.close(e); err != nil {
				t.Fatalf("close error = %v", err)
			}
			if e.State() != tt.want {
				t.Errorf("State() = %v, want %v", e.State(), tt.want)
			}

			if err := e.MagicWand(goimage.Pt(0, 0), 0, true, Replace); !errors.Is(err, ErrSessionClosed) {
				t.Errorf("MagicWand() error = %v, want ErrSessionClosed", err)
			}
			if _, err := e.BulkColorErase(e.pixelAt(0), 0); !errors.Is(err, ErrSessionClosed) {
				t.Errorf("BulkColorErase() error = %v, want ErrSessionClosed", err)
			}
			if _, err := e.Preview(); !errors.Is(err, ErrSessionClosed) {
				t.Errorf("Preview() error = %v, want ErrSessionClosed", err)
			}
			if _, err := e.Commit(); !errors.Is(err, ErrSessionClosed) {
				t.Errorf("Commit() error = %v, want ErrSessionClosed", err)
			}
			if err := e.Cancel(); !errors.Is(err, ErrSessionClosed) {
				t.Errorf("Cancel() error = %v, want ErrSessionClosed", err)
			}
			if e.Undo() {
				t.Error("Undo() on closed session = true")
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if Previewing.String() != "previewing" || State(99).String() != "unknown" {
		t.Errorf("unexpected state names %q %q", Previewing.String(), State(99).String())
	}
}
