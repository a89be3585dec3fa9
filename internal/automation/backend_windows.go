//go:build windows

package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// windowsBackend shells out to PowerShell: user32 SetCursorPos/mouse_event
// for the mouse, System.Windows.Forms.SendKeys for the keyboard.
type windowsBackend struct{}

func detectPlatformBackend() (Backend, error) {
	if _, err := exec.LookPath("powershell"); err != nil {
		return nil, fmt.Errorf("powershell not found in PATH")
	}
	return &windowsBackend{}, nil
}

func (b *windowsBackend) ID() string { return "powershell" }

func (b *windowsBackend) run(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", automationErrorf("powershell: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (b *windowsBackend) MoveMouse(ctx context.Context, x, y float64) error {
	script := fmt.Sprintf(`
Add-Type @"
using System.Runtime.InteropServices;
public class Win32SetCursor {
    [DllImport("user32.dll")]
    public static extern bool SetCursorPos(int x, int y);
}
"@
[Win32SetCursor]::SetCursorPos(%d, %d) | Out-Null
`, int(x), int(y))
	_, err := b.run(ctx, script)
	return err
}

func (b *windowsBackend) Click(ctx context.Context, button string, count int) error {
	// mouse_event down/up flag pairs per button
	flags := map[string][2]string{
		"left":   {"0x02", "0x04"},
		"right":  {"0x08", "0x10"},
		"middle": {"0x20", "0x40"},
	}[button]
	script := fmt.Sprintf(`
Add-Type @"
using System.Runtime.InteropServices;
public class Win32MouseEvent {
    [DllImport("user32.dll")]
    public static extern void mouse_event(uint dwFlags, uint dx, uint dy, uint dwData, int dwExtraInfo);
}
"@
for ($i = 0; $i -lt %d; $i++) {
    [Win32MouseEvent]::mouse_event(%s, 0, 0, 0, 0)
    [Win32MouseEvent]::mouse_event(%s, 0, 0, 0, 0)
}
`, count, flags[0], flags[1])
	_, err := b.run(ctx, script)
	return err
}

func (b *windowsBackend) TypeText(ctx context.Context, text string) error {
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
[System.Windows.Forms.SendKeys]::SendWait("%s")
`, escapeSendKeys(text))
	_, err := b.run(ctx, script)
	return err
}

// sendKeysNames maps the catalog's named keys to SendKeys tokens.
var sendKeysNames = map[string]string{
	"return": "{ENTER}", "tab": "{TAB}", "escape": "{ESC}", "space": " ",
	"backspace": "{BACKSPACE}", "delete": "{DELETE}",
	"up": "{UP}", "down": "{DOWN}", "left": "{LEFT}", "right": "{RIGHT}",
	"home": "{HOME}", "end": "{END}", "pageup": "{PGUP}", "pagedown": "{PGDN}",
	"f1": "{F1}", "f2": "{F2}", "f3": "{F3}", "f4": "{F4}", "f5": "{F5}",
	"f6": "{F6}", "f7": "{F7}", "f8": "{F8}", "f9": "{F9}", "f10": "{F10}",
	"f11": "{F11}", "f12": "{F12}",
}

func (b *windowsBackend) KeyPress(ctx context.Context, key string, modifiers []string) error {
	var prefix strings.Builder
	for _, m := range modifiers {
		switch m {
		case "shift":
			prefix.WriteString("+")
		case "ctrl":
			prefix.WriteString("^")
		case "alt":
			prefix.WriteString("%")
		default:
			return automationErrorf("SendKeys cannot express the %s modifier", m)
		}
	}
	token, ok := sendKeysNames[key]
	if !ok {
		token = escapeSendKeys(key)
	}
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
[System.Windows.Forms.SendKeys]::SendWait("%s")
`, prefix.String()+token)
	_, err := b.run(ctx, script)
	return err
}

func (b *windowsBackend) ScreenSize(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return displaySize()
}

func (b *windowsBackend) MousePosition(ctx context.Context) (float64, float64, error) {
	out, err := b.run(ctx, `
Add-Type -AssemblyName System.Windows.Forms
$p = [System.Windows.Forms.Cursor]::Position
Write-Output "$($p.X),$($p.Y)"
`)
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(out, ",")
	if len(parts) != 2 {
		return 0, 0, automationErrorf("could not parse cursor position from %q", out)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, automationErrorf("could not parse cursor position from %q", out)
	}
	return x, y, nil
}

// escapeSendKeys escapes characters that SendKeys treats as control syntax.
func escapeSendKeys(text string) string {
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case '+', '^', '%', '~', '(', ')', '{', '}', '[', ']':
			sb.WriteRune('{')
			sb.WriteRune(r)
			sb.WriteRune('}')
		case '"':
			sb.WriteString("`\"")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
