package page

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/attention"
	"github.com/lixenwraith/attention-era/audio"
	"github.com/lixenwraith/attention-era/contact"
	"github.com/lixenwraith/attention-era/cursor"
	"github.com/lixenwraith/attention-era/engine"
	"github.com/lixenwraith/attention-era/motion"
	"github.com/lixenwraith/attention-era/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanPoster collects closures posted from background goroutines
type chanPoster chan func()

func (c chanPoster) Post(fn func()) bool {
	c <- fn
	return true
}

func (c chanPoster) drain(t *testing.T) {
	t.Helper()
	select {
	case fn := <-c:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("nothing posted to the loop")
	}
}

type fakeAudio struct {
	state    audio.State
	started  int
	enables  int
	touches  int
	closed   bool
	autoplay bool
}

func (f *fakeAudio) Start() (audio.PlayResult, error) {
	f.started++
	if f.autoplay {
		f.state.Playing = true
		return audio.PlayResult{Outcome: audio.OutcomeStarted}, nil
	}
	f.state.NeedsGesture = true
	return audio.PlayResult{Outcome: audio.OutcomeBlocked, Reason: audio.ErrGestureRequired}, nil
}

func (f *fakeAudio) EnableFromGesture() audio.PlayResult {
	f.enables++
	f.state.Playing = true
	f.state.NeedsGesture = false
	return audio.PlayResult{Outcome: audio.OutcomeStarted}
}

func (f *fakeAudio) NoteInteraction() {
	f.touches++
}

func (f *fakeAudio) ToggleMute() bool {
	f.state.Muted = !f.state.Muted
	return f.state.Muted
}

func (f *fakeAudio) State() audio.State {
	return f.state
}

func (f *fakeAudio) Close() {
	f.closed = true
}

type fakeSubmitter struct {
	got []contact.Submission
}

func (f *fakeSubmitter) Submit(_ context.Context, s contact.Submission) (*contact.Ack, error) {
	f.got = append(f.got, s)
	return &contact.Ack{Message: contact.MsgReceived, ID: "ack-1"}, nil
}

type harness struct {
	page   *Page
	screen tcell.SimulationScreen
	clock  *engine.MockClock
	poster chanPoster
	motion *motion.Tracker
	audio  *fakeAudio
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)

	tracker, err := motion.NewTracker(motion.StaticSource(false), engine.Immediate{}, nil)
	require.NoError(t, err)

	h := &harness{
		screen: screen,
		clock:  engine.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		poster: make(chanPoster, 8),
		motion: tracker,
		audio:  &fakeAudio{},
	}
	opts.Screen = screen
	opts.Clock = h.clock
	opts.Poster = h.poster
	opts.Motion = tracker
	opts.Seed = 42
	if opts.Audio == nil {
		opts.Audio = h.audio
	}

	h.page, err = New(opts)
	require.NoError(t, err)
	return h
}

func (h *harness) mount(t *testing.T) {
	t.Helper()
	require.NoError(t, h.page.Mount())
	t.Cleanup(h.page.Unmount)
	h.page.Frame()
}

func (h *harness) key(k tcell.Key) bool {
	return h.page.HandleEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.page.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func (h *harness) click(x, y int) {
	h.page.HandleEvent(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	h.page.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func (h *harness) text() string {
	cells, w, _ := h.screen.GetContents()
	var sb strings.Builder
	for i, c := range cells {
		if len(c.Runes) > 0 {
			sb.WriteRune(c.Runes[0])
		} else {
			sb.WriteByte(' ')
		}
		if (i+1)%w == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func findNode(n *cursor.Node, id string) *cursor.Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if hit := findNode(c, id); hit != nil {
			return hit
		}
	}
	return nil
}

func TestMountDrawsAndUnmountCancelsEverything(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.page.Mount())
	h.page.Frame()

	out := h.text()
	assert.Contains(t, out, "ATTENTION ERA")
	assert.Contains(t, out, "RESISTANCE_TERMINAL")
	assert.Positive(t, h.page.Pending())
	assert.Equal(t, 1, h.audio.started, "autoplay is requested on mount")

	h.page.Unmount()
	assert.Zero(t, h.page.Pending())
	assert.Zero(t, h.clock.Pending(), "no timer survives teardown")
	assert.True(t, h.audio.closed)

	// Teardown twice is a no-op
	h.page.Unmount()
}

func TestSecondPageMountFails(t *testing.T) {
	first := newHarness(t, Options{})
	first.mount(t)

	second := newHarness(t, Options{})
	assert.ErrorIs(t, second.page.Mount(), ErrAlreadyMounted)

	first.page.Unmount()
	require.NoError(t, second.page.Mount())
	second.page.Unmount()
}

func TestChaosTriggersStorm(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.typeText("xxchaos")
	assert.True(t, h.page.Detector().Active())
	assert.True(t, h.page.Storming())
	h.page.Frame()

	h.clock.Advance(3 * time.Second)
	assert.False(t, h.page.Detector().Active())
	assert.False(t, h.page.Storming())
	for _, r := range "CHAOS" {
		assert.False(t, h.page.Detector().Lit(r))
	}
}

func TestStormFlashSuppressedUnderReducedMotion(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.key(tcell.KeyF2)
	require.True(t, h.motion.Enabled())

	h.typeText("CHAOS")
	assert.True(t, h.page.Detector().Active(), "detection keeps working")
	assert.False(t, h.page.Storming(), "no inverted flash with reduced motion")

	h.key(tcell.KeyF2)
	assert.True(t, h.page.Storming())
}

func TestReducedMotionHidesCursor(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.page.HandleEvent(tcell.NewEventMouse(30, 10, tcell.ButtonNone, tcell.ModNone))
	require.True(t, h.page.Cursor().Visible())

	h.key(tcell.KeyF2)
	assert.False(t, h.page.Cursor().Visible())
	h.key(tcell.KeyF2)
	assert.True(t, h.page.Cursor().Visible())
}

func TestKeypressSkipsManifesto(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)
	require.False(t, h.page.Typewriter().Done())

	h.key(tcell.KeyDown)
	assert.True(t, h.page.Typewriter().Done())
}

func TestFormRejectsMissingFields(t *testing.T) {
	sub := &fakeSubmitter{}
	h := newHarness(t, Options{Contact: sub})
	h.mount(t)

	for range 5 {
		h.key(tcell.KeyTab)
	}
	require.Equal(t, FocusSubmit, h.page.Focus())
	h.key(tcell.KeyEnter)

	assert.Equal(t, contact.MsgMissingFields, h.page.FormStatus())
	assert.Empty(t, sub.got)
}

func TestFormSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	h := newHarness(t, Options{Contact: sub})
	h.mount(t)

	h.key(tcell.KeyTab)
	h.key(tcell.KeyTab)
	require.Equal(t, FocusCodename, h.page.Focus())
	h.typeText("neo")
	h.key(tcell.KeyEnter)
	h.typeText("neo@zion.net")
	h.key(tcell.KeyEnter)
	h.typeText("wake up")
	h.key(tcell.KeyEnter)
	require.Equal(t, FocusSubmit, h.page.Focus())
	h.key(tcell.KeyEnter)

	h.poster.drain(t)
	require.Len(t, sub.got, 1)
	assert.Equal(t, contact.Submission{Codename: "neo", Email: "neo@zion.net", Message: "wake up"}, sub.got[0])
	assert.Contains(t, h.page.FormStatus(), "Transmission Sent")
	assert.Empty(t, h.page.form.fields[0], "fields reset after success")
}

func TestFormAcceptsLocallyWithoutSubmitter(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.page.setFocus(FocusCodename)
	h.typeText("trinity")
	h.page.setFocus(FocusEmail)
	h.typeText("t@zion.net")
	h.page.setFocus(FocusMessage)
	h.typeText("follow")
	h.page.submitForm()

	assert.Contains(t, h.page.FormStatus(), "Transmission Sent")
}

func TestConsoleTakesInput(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.key(tcell.KeyTab)
	require.Equal(t, FocusConsole, h.page.Focus())
	h.typeText("help")
	h.key(tcell.KeyEnter)

	out := h.page.Console().Output()
	require.NotEmpty(t, out)
	assert.Equal(t, "> help", out[0].Text)
}

func TestDrawsOnNarrowTerminals(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	// A focused field with a value takes the clipping path
	h.key(tcell.KeyTab)
	h.key(tcell.KeyTab)
	require.Equal(t, FocusCodename, h.page.Focus())
	h.typeText("neo")

	for w := 1; w <= 13; w++ {
		for _, ht := range []int{2, 6, 30} {
			h.screen.SetSize(w, ht)
			done := make(chan struct{})
			go func() {
				defer close(done)
				h.page.HandleEvent(tcell.NewEventResize(w, ht))
				h.page.Draw()
			}()
			select {
			case <-done:
			case <-time.After(3 * time.Second):
				t.Fatalf("draw did not return at %dx%d", w, ht)
			}
		}
	}

	h.screen.SetSize(120, 40)
	h.page.HandleEvent(tcell.NewEventResize(120, 40))
	h.page.Draw()
	assert.Contains(t, h.text(), "RESISTANCE_TERMINAL")
}

func TestNavLinkScrolls(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	link := findNode(h.page.root, "nav-"+anchorContact)
	require.NotNil(t, link)
	h.click(link.Rect.X, link.Rect.Y)

	assert.Positive(t, h.page.Scroll())
	h.key(tcell.KeyHome)
	assert.Zero(t, h.page.Scroll())
}

func TestWheelScrolls(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.page.HandleEvent(tcell.NewEventMouse(5, 5, tcell.WheelDown, tcell.ModNone))
	assert.Positive(t, h.page.Scroll())
	h.page.HandleEvent(tcell.NewEventMouse(5, 5, tcell.WheelUp, tcell.ModNone))
	assert.Zero(t, h.page.Scroll())
}

func TestSoundControl(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)
	require.True(t, h.audio.state.NeedsGesture)

	h.key(tcell.KeyF3)
	assert.Equal(t, 1, h.audio.enables)
	assert.True(t, h.audio.state.Playing)

	h.key(tcell.KeyF3)
	assert.True(t, h.audio.state.Muted)
	assert.Equal(t, 1, h.audio.enables)
}

func TestInteractionNotifiesAudio(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.key(tcell.KeyDown)
	h.click(3, 3)
	assert.Equal(t, 2, h.audio.touches)
}

func TestClickRollsScoreOnce(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	// Same stream the page seeds its score with
	want := attention.NewSimulator(engine.NewMockClock(time.Time{}), rand.New(rand.NewPCG(42, 1)))
	for range 20 {
		h.click(3, 3)
		want.Increment()
	}
	assert.Equal(t, want.Score(), h.page.Score().Score())

	// Plain motion rolls once per event too
	h.page.HandleEvent(tcell.NewEventMouse(4, 3, tcell.ButtonNone, tcell.ModNone))
	want.Increment()
	assert.Equal(t, want.Score(), h.page.Score().Score())
}

func TestEscapeQuits(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)
	assert.True(t, h.key(tcell.KeyEscape))
	assert.False(t, h.key(tcell.KeyDown))
}

func TestStatsCommandReportsCounters(t *testing.T) {
	h := newHarness(t, Options{})
	h.mount(t)

	h.typeText("CHAOS")
	h.key(tcell.KeyTab)
	h.typeText("stats")
	h.key(tcell.KeyEnter)

	metrics := h.page.Metrics()
	assert.Equal(t, int64(1), metrics.Ints.Get(status.Storms).Load())
	assert.Positive(t, metrics.Ints.Get(status.Gestures).Load())
	assert.Positive(t, metrics.Ints.Get(status.Frames).Load())

	var text []string
	for _, l := range h.page.Console().Output() {
		text = append(text, l.Text)
	}
	joined := strings.Join(text, "\n")
	assert.Contains(t, joined, "SESSION COUNTERS:")
	assert.Contains(t, joined, status.Storms)
}
