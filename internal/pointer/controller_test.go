package pointer

import (
	"image"
	"testing"

	"image-stacker/internal/stack"

	"github.com/stretchr/testify/require"
)

func newStack(heights ...int) *stack.Stack {
	s := stack.New(1200, 800)
	for i, h := range heights {
		s.Add("img", image.NewRGBA(image.Rect(0, 0, 600, h)))
		if i < len(heights)-1 {
			s.Fix(i)
		}
	}
	return s
}

func TestDownOnTopHandleStartsTrim(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.True(t, c.Down(300, 19))
	require.Equal(t, Trimming{Index: 0, Handle: HandleTop}, c.State())
}

func TestDownOnBottomHandleStartsTrim(t *testing.T) {
	s := newStack(300)
	stack.SetTrimBottom(s.At(0), 50)
	c := NewController(s)

	// Visible bottom is at 250; the untrimmed bottom edge is no handle.
	require.True(t, c.Down(10, 265))
	require.Equal(t, Trimming{Index: 0, Handle: HandleBottom}, c.State())
}

func TestTopHandleWinsOverBottom(t *testing.T) {
	s := newStack(300)
	stack.SetTrimBottom(s.At(0), 280)
	c := NewController(s)

	require.True(t, c.Down(10, 10))
	require.Equal(t, Trimming{Index: 0, Handle: HandleTop}, c.State())
}

func TestDownInsideStartsDrag(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.True(t, c.Down(100, 150))
	require.Equal(t, Dragging{Index: 0}, c.State())

	// Drag hit-testing uses the untrimmed height.
	c.Up()
	stack.SetTrimBottom(s.At(0), 100)
	require.True(t, c.Down(600, 290))
	require.Equal(t, Dragging{Index: 0}, c.State())
}

func TestDownOutsideStaysIdle(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.False(t, c.Down(601, 150))
	require.Equal(t, Idle{}, c.State())
	require.False(t, c.Down(100, 400))
	require.Equal(t, Idle{}, c.State())
}

func TestDownOnFixedEntityNeverDrags(t *testing.T) {
	s := newStack(300, 200)
	c := NewController(s)
	before := s.At(0).Y

	// Inside the first (fixed) entity, away from the editable one.
	require.False(t, c.Down(100, 100))
	require.Equal(t, Idle{}, c.State())
	require.False(t, c.Move(100, 160))
	require.Equal(t, before, s.At(0).Y)

	// Once everything is fixed nothing can be grabbed.
	s.Fix(1)
	require.False(t, c.Down(100, 400))
	require.Equal(t, Idle{}, c.State())
}

func TestDragMovesIncrementally(t *testing.T) {
	s := newStack(300)
	changes := 0
	c := NewController(s)
	c.OnChange = func() { changes++ }

	require.True(t, c.Down(100, 150))
	require.True(t, c.Move(100, 160))
	require.Equal(t, 10.0, s.At(0).Y)
	require.True(t, c.Move(100, 155))
	require.Equal(t, 5.0, s.At(0).Y)
	require.Equal(t, 2, changes)
}

func TestDragGrowsSurface(t *testing.T) {
	s := newStack(300)
	require.Equal(t, 300.0, s.Height)
	c := NewController(s)

	require.True(t, c.Down(100, 150))
	require.True(t, c.Move(100, 200))

	e := s.At(0)
	require.Equal(t, 50.0, e.Y)
	require.Equal(t, e.Y+e.Height, s.Height)
}

func TestDragUpKeepsSurface(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.True(t, c.Down(100, 150))
	require.True(t, c.Move(100, 100))
	require.Equal(t, -50.0, s.At(0).Y)
	require.Equal(t, 300.0, s.Height)
}

func TestTrimTopFollowsPointer(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.True(t, c.Down(10, 5))
	require.True(t, c.Move(10, 45))
	require.Equal(t, 40.0, s.At(0).TrimTop())
	require.True(t, c.Move(10, 1000))
	require.Equal(t, 200.0, s.At(0).TrimTop())
	require.True(t, c.Move(10, -1000))
	require.Equal(t, 0.0, s.At(0).TrimTop())
}

func TestTrimBottomInvertsDelta(t *testing.T) {
	s := newStack(300)
	e := s.At(0)
	stack.SetTrimBottom(e, 50)
	c := NewController(s)

	require.True(t, c.Down(10, 250))
	require.Equal(t, Trimming{Index: 0, Handle: HandleBottom}, c.State())

	require.True(t, c.Move(10, 280))
	require.Equal(t, 20.0, e.TrimBottom())

	require.True(t, c.Move(10, 320))
	require.Equal(t, 0.0, e.TrimBottom())

	require.True(t, c.Move(10, 250))
	require.Equal(t, 70.0, e.TrimBottom())
}

func TestUpAndLeaveReset(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	c.Down(100, 150)
	c.Up()
	require.Equal(t, Idle{}, c.State())
	require.False(t, c.Move(100, 200))
	require.Equal(t, 0.0, s.At(0).Y)

	c.Down(10, 5)
	c.Leave()
	require.Equal(t, Idle{}, c.State())
}

func TestMoveAfterRemovalFallsBackToIdle(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.True(t, c.Down(100, 150))
	s.Remove(0)
	require.False(t, c.Move(100, 200))
	require.Equal(t, Idle{}, c.State())
}

func TestMoveAfterFixFallsBackToIdle(t *testing.T) {
	s := newStack(300)
	c := NewController(s)

	require.True(t, c.Down(100, 150))
	s.Fix(0)
	require.False(t, c.Move(100, 200))
	require.Equal(t, Idle{}, c.State())
	require.Equal(t, 0.0, s.At(0).Y)
}

func TestHandleString(t *testing.T) {
	require.Equal(t, "top", HandleTop.String())
	require.Equal(t, "bottom", HandleBottom.String())
	require.Equal(t, "unknown", Handle(7).String())
}

func TestProbeLeavesStateAlone(t *testing.T) {
	s := newStack(300, 300)
	c := NewController(s)

	require.Equal(t, Trimming{Index: 1, Handle: HandleTop}, c.Probe(10, 305))
	require.Equal(t, Dragging{Index: 1}, c.Probe(10, 450))
	require.Equal(t, Trimming{Index: 1, Handle: HandleBottom}, c.Probe(10, 590))
	require.Equal(t, Idle{}, c.Probe(10, 100))
	require.Equal(t, Idle{}, c.State())
}

func TestBottomTrimGrowsSurface(t *testing.T) {
	s := newStack(300)
	e := s.At(0)
	stack.SetTrimBottom(e, 100)
	s.Fix(0)
	require.Equal(t, 200.0, s.Height)
	s.Unfix(0)

	c := NewController(s)
	require.True(t, c.Down(50, 200))
	require.Equal(t, Trimming{Index: 0, Handle: HandleBottom}, c.State())

	require.True(t, c.Move(50, 300))
	require.Zero(t, e.TrimBottom())
	require.Equal(t, 300.0, e.VisibleBottom())
	require.GreaterOrEqual(t, s.Height, e.VisibleBottom())
}
