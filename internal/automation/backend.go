package automation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kbinani/screenshot"
)

// Backend is the native automation surface: one implementation per
// platform, driving the OS input-synthesis tools, plus a no-op variant
// for tests and dry runs. All calls happen on the executor's pinned
// thread; implementations do not need to be goroutine-safe.
type Backend interface {
	// ID identifies the backend (e.g. "xdotool", "cliclick", "nop").
	ID() string
	MoveMouse(ctx context.Context, x, y float64) error
	// Click presses button ("left", "right", "middle") count times at the
	// current cursor position. Both arguments arrive validated.
	Click(ctx context.Context, button string, count int) error
	TypeText(ctx context.Context, text string) error
	// KeyPress taps one key, a named key or a single character, with the
	// given modifiers held. Modifiers arrive canonicalized (shift, ctrl,
	// alt, meta).
	KeyPress(ctx context.Context, key string, modifiers []string) error
	ScreenSize(ctx context.Context) (width, height float64, err error)
	MousePosition(ctx context.Context) (x, y float64, err error)
}

// DetectBackend returns the platform backend for the current OS, probing
// for the required helper binaries. The error names what to install.
func DetectBackend() (Backend, error) {
	return detectPlatformBackend()
}

// displaySize reads the primary display bounds. Used by every platform
// backend; kbinani/screenshot covers X11, Wayland (via XWayland), macOS
// and Windows without cgo input permissions.
func displaySize() (float64, float64, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return 0, 0, automationErrorf("no active display")
	}
	bounds := screenshot.GetDisplayBounds(0)
	return float64(bounds.Dx()), float64(bounds.Dy()), nil
}

// UnavailableBackend answers every call with the detection failure. The
// server keeps running with it so status can report automation down
// instead of the whole bot refusing to start.
type UnavailableBackend struct {
	Err error
}

func (b *UnavailableBackend) ID() string { return "unavailable" }

func (b *UnavailableBackend) MoveMouse(context.Context, float64, float64) error { return b.Err }

func (b *UnavailableBackend) Click(context.Context, string, int) error { return b.Err }

func (b *UnavailableBackend) TypeText(context.Context, string) error { return b.Err }

func (b *UnavailableBackend) KeyPress(context.Context, string, []string) error { return b.Err }

func (b *UnavailableBackend) ScreenSize(context.Context) (float64, float64, error) {
	return 0, 0, b.Err
}

func (b *UnavailableBackend) MousePosition(context.Context) (float64, float64, error) {
	return 0, 0, b.Err
}

// NopBackend records calls without touching the OS. The zero value is
// ready to use. Tests use it to assert ordering and to prove that invalid
// input never reaches the native layer.
type NopBackend struct {
	mu    sync.Mutex
	calls []string

	Width  float64 // reported screen size (defaults to 1920x1080)
	Height float64
	MouseX float64 // reported cursor position
	MouseY float64
	Fail   error // when set, every call returns this error after recording
}

func (b *NopBackend) ID() string { return "nop" }

func (b *NopBackend) record(call string) {
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
}

// Calls returns a copy of the recorded call log in arrival order.
func (b *NopBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *NopBackend) MoveMouse(ctx context.Context, x, y float64) error {
	b.record(fmt.Sprintf("move_mouse(%g,%g)", x, y))
	if b.Fail != nil {
		return b.Fail
	}
	b.mu.Lock()
	b.MouseX, b.MouseY = x, y
	b.mu.Unlock()
	return ctx.Err()
}

func (b *NopBackend) Click(ctx context.Context, button string, count int) error {
	b.record(fmt.Sprintf("click(%s,%d)", button, count))
	if b.Fail != nil {
		return b.Fail
	}
	return ctx.Err()
}

func (b *NopBackend) TypeText(ctx context.Context, text string) error {
	b.record("type(" + text + ")")
	if b.Fail != nil {
		return b.Fail
	}
	return ctx.Err()
}

func (b *NopBackend) KeyPress(ctx context.Context, key string, modifiers []string) error {
	combo := key
	if len(modifiers) > 0 {
		combo = strings.Join(modifiers, "+") + "+" + key
	}
	b.record("key_press(" + combo + ")")
	if b.Fail != nil {
		return b.Fail
	}
	return ctx.Err()
}

func (b *NopBackend) ScreenSize(ctx context.Context) (float64, float64, error) {
	b.record("screen_size")
	if b.Fail != nil {
		return 0, 0, b.Fail
	}
	w, h := b.Width, b.Height
	if w == 0 || h == 0 {
		w, h = 1920, 1080
	}
	return w, h, ctx.Err()
}

func (b *NopBackend) MousePosition(ctx context.Context) (float64, float64, error) {
	b.record("mouse_position")
	if b.Fail != nil {
		return 0, 0, b.Fail
	}
	b.mu.Lock()
	x, y := b.MouseX, b.MouseY
	b.mu.Unlock()
	return x, y, ctx.Err()
}
