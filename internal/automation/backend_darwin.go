//go:build darwin

package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// darwinBackend prefers cliclick (brew install cliclick) and falls back to
// AppleScript via osascript for click and type. Cursor movement and
// position queries need cliclick; osascript cannot express them.
type darwinBackend struct {
	hasCliclick bool
}

func detectPlatformBackend() (Backend, error) {
	_, err := exec.LookPath("cliclick")
	return &darwinBackend{hasCliclick: err == nil}, nil
}

func (b *darwinBackend) ID() string {
	if b.hasCliclick {
		return "cliclick"
	}
	return "osascript"
}

func (b *darwinBackend) cliclick(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "cliclick", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return automationErrorf("cliclick %s: %v: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *darwinBackend) osascript(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return automationErrorf("osascript: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *darwinBackend) MoveMouse(ctx context.Context, x, y float64) error {
	if !b.hasCliclick {
		return automationErrorf("move_mouse requires cliclick (brew install cliclick)")
	}
	return b.cliclick(ctx, fmt.Sprintf("m:%d,%d", int(x), int(y)))
}

func (b *darwinBackend) Click(ctx context.Context, button string, count int) error {
	if !b.hasCliclick {
		if button != "left" || count != 1 {
			return automationErrorf("%s click x%d requires cliclick (brew install cliclick)", button, count)
		}
		return b.osascript(ctx, `tell application "System Events" to click at {current mouse position}`)
	}
	var op string
	switch button {
	case "left":
		op = "c:."
		if count == 2 {
			// real double-click timing, not two separate clicks
			return b.cliclick(ctx, "dc:.")
		}
		if count == 3 {
			return b.cliclick(ctx, "tc:.")
		}
	case "right":
		op = "rc:."
	default:
		return automationErrorf("middle click is not supported by cliclick")
	}
	for i := 0; i < count; i++ {
		if err := b.cliclick(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

func (b *darwinBackend) TypeText(ctx context.Context, text string) error {
	if b.hasCliclick {
		return b.cliclick(ctx, "t:"+text)
	}
	escaped := strings.ReplaceAll(text, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return b.osascript(ctx, fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escaped))
}

// macKeyCodes maps the catalog's named keys to macOS virtual key codes for
// System Events "key code".
var macKeyCodes = map[string]int{
	"return": 36, "tab": 48, "space": 49, "backspace": 51, "escape": 53,
	"delete": 117, "home": 115, "end": 119, "pageup": 116, "pagedown": 121,
	"left": 123, "right": 124, "down": 125, "up": 126,
	"f1": 122, "f2": 120, "f3": 99, "f4": 118, "f5": 96, "f6": 97,
	"f7": 98, "f8": 100, "f9": 101, "f10": 109, "f11": 103, "f12": 111,
}

var macModifierNames = map[string]string{
	"shift": "shift down", "ctrl": "control down",
	"alt": "option down", "meta": "command down",
}

func (b *darwinBackend) KeyPress(ctx context.Context, key string, modifiers []string) error {
	using := ""
	if len(modifiers) > 0 {
		names := make([]string, len(modifiers))
		for i, m := range modifiers {
			names[i] = macModifierNames[m]
		}
		using = " using {" + strings.Join(names, ", ") + "}"
	}
	if code, ok := macKeyCodes[key]; ok {
		return b.osascript(ctx, fmt.Sprintf(`tell application "System Events" to key code %d%s`, code, using))
	}
	escaped := strings.ReplaceAll(key, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return b.osascript(ctx, fmt.Sprintf(`tell application "System Events" to keystroke "%s"%s`, escaped, using))
}

func (b *darwinBackend) ScreenSize(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return displaySize()
}

func (b *darwinBackend) MousePosition(ctx context.Context) (float64, float64, error) {
	if !b.hasCliclick {
		return 0, 0, automationErrorf("mouse_position requires cliclick (brew install cliclick)")
	}
	cmd := exec.CommandContext(ctx, "cliclick", "p:.")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		return 0, 0, automationErrorf("cliclick p: %v", err)
	}
	// Output: "512,384"
	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) != 2 {
		return 0, 0, automationErrorf("could not parse cursor position from %q", strings.TrimSpace(string(out)))
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, automationErrorf("could not parse cursor position from %q", strings.TrimSpace(string(out)))
	}
	return x, y, nil
}
