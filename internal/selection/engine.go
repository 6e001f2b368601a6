// Package selection implements the interactive selection engine: magic wand,
// brush and lasso gestures over a pixel buffer, with bounded undo.
//
// An Engine is owned by a single editing session. It is not safe for concurrent
// use and holds no locks; callers hand it to one goroutine at a time.
package selection

import (
	"errors"
	"fmt"
	goimage "image"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/history"
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/mask"
)

// ErrSessionClosed is returned by operations on a committed or cancelled session.
var ErrSessionClosed = errors.New("selection session is closed")

// Op controls how a magic wand match combines with the current mask.
type Op int

const (
	// Replace discards the current mask and selects the match.
	Replace Op = iota
	// Add unions the match into the current mask.
	Add
	// Subtract clears the match from the current mask.
	Subtract
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	default:
		return "replace"
	}
}

// ParseOp parses an operation name as produced by Op.String.
func ParseOp(s string) (Op, error) {
	switch s {
	case "replace", "":
		return Replace, nil
	case "add":
		return Add, nil
	case "subtract":
		return Subtract, nil
	default:
		return Replace, fmt.Errorf("unknown selection op %q (valid: replace, add, subtract)", s)
	}
}

// snapshot is the pre-mutation state of one user action. Exactly one field is set.
type snapshot struct {
	mask *mask.Mask
	buf  *image.Buffer
}

// Engine holds one mask, the buffer it selects over and the undo history.
type Engine struct {
	buf       *image.Buffer
	mask      *mask.Mask
	history   *history.Stack[snapshot]
	state     State
	applyMode mask.ApplyMode
	logger    hclog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards output.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistoryLimit overrides the undo depth chosen from the image size.
func WithHistoryLimit(limit int) Option {
	return func(e *Engine) {
		e.history = history.New[snapshot](limit)
	}
}

// WithApplyMode sets how Preview and Commit composite the mask. The default erases
// the selection.
func WithApplyMode(mode mask.ApplyMode) Option {
	return func(e *Engine) {
		e.applyMode = mode
	}
}

// New creates an engine over a copy of buf with an empty mask.
func New(buf *image.Buffer, opts ...Option) (*Engine, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		buf:     buf.Clone(),
		mask:    mask.New(buf.Width, buf.Height),
		history: history.New[snapshot](history.LimitFor(buf.Width, buf.Height)),
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.Debug("selection engine created", "width", buf.Width, "height", buf.Height, "undo_limit", e.history.Limit())
	return e, nil
}

// Mask returns the current mask. It must not be modified.
func (e *Engine) Mask() *mask.Mask {
	return e.mask
}

// Buffer returns the engine's buffer. It must not be modified.
func (e *Engine) Buffer() *image.Buffer {
	return e.buf
}

// HistoryLen returns the number of undoable actions.
func (e *Engine) HistoryLen() int {
	return e.history.Len()
}

// pushMask records the current mask before a mask mutation.
func (e *Engine) pushMask() {
	e.history.Push(snapshot{mask: e.mask.Clone()})
}

// pushBuffer records the current buffer before a buffer mutation.
func (e *Engine) pushBuffer() {
	e.history.Push(snapshot{buf: e.buf.Clone()})
}

// Undo restores the state before the most recent action. It reports whether anything
// was restored; an empty history or a closed session is a no-op.
func (e *Engine) Undo() bool {
	if e.state.closed() {
		return false
	}
	s, ok := e.history.Pop()
	if !ok {
		return false
	}
	if s.mask != nil {
		e.mask = s.mask
	} else {
		e.buf = s.buf
	}
	e.logger.Debug("undo", "remaining", e.history.Len())
	return true
}

// SetMask replaces the current mask with a copy of m, for example one loaded from disk.
func (e *Engine) SetMask(m *mask.Mask) error {
	if err := e.touch(); err != nil {
		return err
	}
	if err := m.CheckSize(e.buf.Width, e.buf.Height); err != nil {
		return err
	}
	e.pushMask()
	e.mask = m.Clone()
	return nil
}

// MagicWand selects pixels whose RGB colour is within tolerance of the seed pixel.
// Contiguous selection floods 4-connected neighbours from the seed; otherwise every
// matching pixel in the image is selected. A seed outside the image is a no-op.
func (e *Engine) MagicWand(seed goimage.Point, tolerance float64, contiguous bool, op Op) error {
	if err := e.touch(); err != nil {
		return err
	}
	if !e.buf.InBounds(seed.X, seed.Y) {
		e.logger.Trace("magic wand seed outside image", "x", seed.X, "y", seed.Y)
		return nil
	}

	r, g, b, a := e.buf.At(seed.X, seed.Y)
	target := colour.RGBA{R: r, G: g, B: b, A: a}

	var match []bool
	if contiguous {
		match = e.floodMatch(seed, target, tolerance)
	} else {
		match = e.globalMatch(target, tolerance)
	}

	e.pushMask()
	next := e.mask.Clone()
	if op == Replace {
		next.Clear()
	}

	selected := 0
	for i, ok := range match {
		if !ok {
			continue
		}
		selected++
		if op == Subtract {
			next.Data[i] = 0
		} else {
			next.Data[i] = 255
		}
	}
	e.mask = next

	e.logger.Debug("magic wand", "x", seed.X, "y", seed.Y, "tolerance", tolerance,
		"contiguous", contiguous, "op", op, "matched", selected)
	return nil
}

// pixelAt returns the colour at linear index i.
func (e *Engine) pixelAt(i int) colour.RGBA {
	p := e.buf.Pix[i*4 : i*4+4 : i*4+4]
	return colour.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// floodMatch marks the 4-connected pixels reachable from seed whose colour is within
// tolerance of target.
func (e *Engine) floodMatch(seed goimage.Point, target colour.RGBA, tolerance float64) []bool {
	w, h := e.buf.Width, e.buf.Height
	match := make([]bool, w*h)
	visited := make([]bool, w*h)

	start := seed.Y*w + seed.X
	visited[start] = true
	stack := []int{start}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !colour.Within(e.pixelAt(i), target, tolerance, false) {
			continue
		}
		match[i] = true

		x, y := i%w, i/w
		for _, n := range [4]struct {
			ok bool
			i  int
		}{
			{x > 0, i - 1},
			{x < w-1, i + 1},
			{y > 0, i - w},
			{y < h-1, i + w},
		} {
			if n.ok && !visited[n.i] {
				visited[n.i] = true
				stack = append(stack, n.i)
			}
		}
	}
	return match
}

// globalMatch marks every pixel within tolerance of target.
func (e *Engine) globalMatch(target colour.RGBA, tolerance float64) []bool {
	match := make([]bool, e.buf.Width*e.buf.Height)
	for i := range match {
		match[i] = colour.Within(e.pixelAt(i), target, tolerance, false)
	}
	return match
}

// BulkColorErase zeroes the alpha of every pixel within tolerance of target anywhere in
// the image, using the alpha-aware metric. It returns the number of pixels erased.
// The mask is left unchanged.
func (e *Engine) BulkColorErase(target colour.RGBA, tolerance float64) (int, error) {
	if err := e.touch(); err != nil {
		return 0, err
	}

	e.pushBuffer()
	erased := 0
	n := e.buf.Width * e.buf.Height
	for i := range n {
		if e.buf.Pix[i*4+3] == 0 {
			continue
		}
		if colour.Within(e.pixelAt(i), target, tolerance, true) {
			e.buf.Pix[i*4+3] = 0
			erased++
		}
	}

	e.logger.Debug("bulk colour erase", "target", target.HexAlpha(), "tolerance", tolerance, "erased", erased)
	return erased, nil
}

// BrushStroke stamps a circular brush along the segment from one point to another.
// The stroke is clipped to the canvas. A stroke that never reaches the canvas is a
// no-op and records no history.
func (e *Engine) BrushStroke(from, to goimage.Point, radius int, hardness float64, mode mask.BrushMode) error {
	if err := e.touch(); err != nil {
		return err
	}

	stamps := mask.StrokePoints(from, to, radius, e.buf.Width, e.buf.Height)
	if len(stamps) == 0 {
		e.logger.Trace("brush stroke off canvas", "from", from, "to", to, "radius", radius)
		return nil
	}

	e.pushMask()
	next := e.mask.Clone()
	for _, p := range stamps {
		next.StampCircle(p, radius, hardness, mode)
	}
	e.mask = next

	e.logger.Trace("brush stroke", "from", from, "to", to, "radius", radius, "hardness", hardness, "mode", mode)
	return nil
}

// LassoClose fills the closed polygon and unions it into the mask. Fewer than three
// points is a no-op.
func (e *Engine) LassoClose(points []goimage.Point) error {
	if err := e.touch(); err != nil {
		return err
	}
	if len(points) < 3 {
		e.logger.Trace("lasso discarded", "points", len(points))
		return nil
	}

	e.pushMask()
	next := e.mask.Clone()
	next.FillPolygon(points)
	e.mask = next

	e.logger.Debug("lasso closed", "points", len(points))
	return nil
}

// morph replaces the mask with f applied to it.
func (e *Engine) morph(name string, n int, f func(*mask.Mask) *mask.Mask) error {
	if err := e.touch(); err != nil {
		return err
	}
	e.pushMask()
	e.mask = f(e.mask)
	e.logger.Debug(name, "n", n, "selected", e.mask.Count())
	return nil
}

// Grow dilates the mask by n pixels.
func (e *Engine) Grow(n int) error {
	return e.morph("grow", n, func(m *mask.Mask) *mask.Mask { return mask.Grow(m, n) })
}

// Shrink erodes the mask by n pixels.
func (e *Engine) Shrink(n int) error {
	return e.morph("shrink", n, func(m *mask.Mask) *mask.Mask { return mask.Shrink(m, n) })
}

// Feather blurs the mask edge with a Gaussian of the given radius.
func (e *Engine) Feather(radius int) error {
	return e.morph("feather", radius, func(m *mask.Mask) *mask.Mask { return mask.Feather(m, radius) })
}

// Invert flips the selection.
func (e *Engine) Invert() error {
	return e.morph("invert", 0, mask.Invert)
}

// Clear deselects everything.
func (e *Engine) Clear() error {
	return e.morph("clear", 0, func(m *mask.Mask) *mask.Mask { return mask.New(m.Width, m.Height) })
}
