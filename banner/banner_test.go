package banner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimers records scheduled callbacks so tests can fire them in order.
type fakeTimers struct {
	delays    []time.Duration
	callbacks []func()
	stopped   []bool
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) func() bool {
	i := len(f.callbacks)
	f.delays = append(f.delays, d)
	f.callbacks = append(f.callbacks, fn)
	f.stopped = append(f.stopped, false)
	return func() bool {
		f.stopped[i] = true
		return true
	}
}

func newTestBanner(opts ...Option) (*Banner, *fakeTimers) {
	timers := &fakeTimers{}
	b := New(opts...)
	b.after = timers.afterFunc
	return b, timers
}

func TestBanner_StartsHidden(t *testing.T) {
	b := New()
	assert.Equal(t, State{}, b.State())
}

func TestBanner_ShowAndHideAfterDelay(t *testing.T) {
	b, timers := newTestBanner()

	b.Success("Signed up a@x.com for Chess Club")

	assert.Equal(t, State{Text: "Signed up a@x.com for Chess Club", Kind: KindSuccess, Visible: true}, b.State())
	require.Len(t, timers.callbacks, 1)
	assert.Equal(t, DefaultHideAfter, timers.delays[0])

	timers.callbacks[0]()

	state := b.State()
	assert.False(t, state.Visible)
	assert.Equal(t, "Signed up a@x.com for Chess Club", state.Text)
}

func TestBanner_EarlierTimerHidesLaterMessage(t *testing.T) {
	b, timers := newTestBanner()

	b.Error("first")
	b.Success("second")
	require.Len(t, timers.callbacks, 2)

	// The first message's timer fires while the second is on screen.
	timers.callbacks[0]()

	state := b.State()
	assert.Equal(t, "second", state.Text)
	assert.Equal(t, KindSuccess, state.Kind)
	assert.False(t, state.Visible)
}

func TestBanner_WithHideAfter(t *testing.T) {
	b, timers := newTestBanner(WithHideAfter(time.Second))
	b.Show("x", KindError)
	assert.Equal(t, time.Second, timers.delays[0])
}

func TestBanner_StopCancelsPending(t *testing.T) {
	b, timers := newTestBanner()
	b.Show("a", KindError)
	b.Show("b", KindError)

	timers.callbacks[0]()
	b.Stop()

	assert.False(t, timers.stopped[0], "fired timer is no longer pending")
	assert.True(t, timers.stopped[1])
}

func TestBanner_RealTimer(t *testing.T) {
	b := New(WithHideAfter(20 * time.Millisecond))
	b.Success("done")
	assert.True(t, b.State().Visible)

	assert.Eventually(t, func() bool {
		return !b.State().Visible
	}, time.Second, 5*time.Millisecond)
}
