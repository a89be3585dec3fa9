//go:build linux

package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// linuxBackend drives xdotool (X11) or ydotool (Wayland), whichever is
// installed. Display metrics come from the screenshot library either way.
type linuxBackend struct {
	tool string // "xdotool" or "ydotool"
}

func detectPlatformBackend() (Backend, error) {
	if _, err := exec.LookPath("xdotool"); err == nil {
		return &linuxBackend{tool: "xdotool"}, nil
	}
	if _, err := exec.LookPath("ydotool"); err == nil {
		return &linuxBackend{tool: "ydotool"}, nil
	}
	return nil, fmt.Errorf("no desktop control backend found: install xdotool (X11) or ydotool (Wayland)")
}

func (b *linuxBackend) ID() string { return b.tool }

func (b *linuxBackend) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, b.tool, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return automationErrorf("%s %s: %v: %s", b.tool, args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *linuxBackend) MoveMouse(ctx context.Context, x, y float64) error {
	xi, yi := strconv.Itoa(int(x)), strconv.Itoa(int(y))
	if b.tool == "ydotool" {
		return b.run(ctx, "mousemove", "-a", "-x", xi, "-y", yi)
	}
	return b.run(ctx, "mousemove", xi, yi)
}

func (b *linuxBackend) Click(ctx context.Context, button string, count int) error {
	if b.tool == "ydotool" {
		// press+release codes: 0xC0 left, 0xC1 right, 0xC2 middle
		code := map[string]string{"left": "0xC0", "right": "0xC1", "middle": "0xC2"}[button]
		for i := 0; i < count; i++ {
			if err := b.run(ctx, "click", code); err != nil {
				return err
			}
		}
		return nil
	}
	// X11 button numbers: 1 left, 2 middle, 3 right
	num := map[string]string{"left": "1", "middle": "2", "right": "3"}[button]
	if count > 1 {
		return b.run(ctx, "click", "--repeat", strconv.Itoa(count), num)
	}
	return b.run(ctx, "click", num)
}

func (b *linuxBackend) TypeText(ctx context.Context, text string) error {
	if b.tool == "ydotool" {
		return b.run(ctx, "type", "--", text)
	}
	return b.run(ctx, "type", "--delay", "12", "--", text)
}

// x11Keysyms maps the catalog's named keys to X keysyms for xdotool key.
// Single characters and f1-f12 pass through unchanged.
var x11Keysyms = map[string]string{
	"return": "Return", "tab": "Tab", "escape": "Escape", "space": "space",
	"backspace": "BackSpace", "delete": "Delete",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"home": "Home", "end": "End", "pageup": "Prior", "pagedown": "Next",
}

func (b *linuxBackend) KeyPress(ctx context.Context, key string, modifiers []string) error {
	if b.tool != "xdotool" {
		return automationErrorf("key_press requires xdotool (ydotool key takes raw scancodes)")
	}
	sym := key
	if mapped, ok := x11Keysyms[key]; ok {
		sym = mapped
	} else if strings.HasPrefix(key, "f") && len(key) > 1 {
		sym = strings.ToUpper(key[:1]) + key[1:] // f5 -> F5
	}
	parts := make([]string, 0, len(modifiers)+1)
	for _, m := range modifiers {
		switch m {
		case "meta":
			parts = append(parts, "super")
		default:
			parts = append(parts, m) // shift, ctrl, alt are valid xdotool prefixes
		}
	}
	parts = append(parts, sym)
	return b.run(ctx, "key", strings.Join(parts, "+"))
}

func (b *linuxBackend) ScreenSize(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return displaySize()
}

func (b *linuxBackend) MousePosition(ctx context.Context) (float64, float64, error) {
	if b.tool != "xdotool" {
		return 0, 0, automationErrorf("mouse_position requires xdotool")
	}
	cmd := exec.CommandContext(ctx, "xdotool", "getmouselocation", "--shell")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		return 0, 0, automationErrorf("xdotool getmouselocation: %v", err)
	}
	// Output: X=512\nY=384\nSCREEN=0\nWINDOW=...
	var x, y float64
	var haveX, haveY bool
	for _, line := range strings.Split(string(out), "\n") {
		if v, ok := strings.CutPrefix(line, "X="); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				x, haveX = f, true
			}
		}
		if v, ok := strings.CutPrefix(line, "Y="); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				y, haveY = f, true
			}
		}
	}
	if !haveX || !haveY {
		return 0, 0, automationErrorf("could not parse cursor position from %q", strings.TrimSpace(string(out)))
	}
	return x, y, nil
}
