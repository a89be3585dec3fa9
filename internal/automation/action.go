package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deskbothq/deskbot/internal/types"
)

// Action is a validated automation command ready for native execution.
// Implementations are immutable once constructed.
type Action interface {
	// Name returns the wire name of the action (e.g. "move_mouse").
	Name() string
	// EncodeParams re-encodes the action parameters into the boundary
	// payload format. Decode(Name(), EncodeParams(), …) round-trips.
	EncodeParams() (json.RawMessage, error)
	// Perform issues the native call. Called only from the executor's
	// pinned thread.
	Perform(ctx context.Context, b Backend) (*Result, error)
}

// Result is the success payload of an executed action. Content is a short
// human-readable summary; Payload carries the action-dependent structure
// (coordinates for queries, typed character count, empty for pure input).
type Result struct {
	Content string          `json:"content"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Descriptor describes a registered action for catalog listings.
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
}

// DecodeFunc validates an untyped parameter payload and produces an Action.
// The bounds hint is consulted for coordinate validation; it may be nil.
type DecodeFunc func(params json.RawMessage, hint *BoundsHint) (Action, error)

type registration struct {
	desc   Descriptor
	decode DecodeFunc
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

// Register adds an action variant to the catalog. New variants register a
// descriptor and a decoder; existing variants' code paths are untouched.
// Registering a duplicate name panics: the catalog is a closed set per name.
func Register(desc Descriptor, decode DecodeFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[desc.Name]; dup {
		panic("automation: duplicate action registration: " + desc.Name)
	}
	registry[desc.Name] = registration{desc: desc, decode: decode}
}

// Catalog returns descriptors for every registered action, sorted by name.
func Catalog() []Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Descriptor, 0, len(registry))
	for _, reg := range registry {
		out = append(out, reg.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Decode validates an action name plus untyped parameters into an Action.
// All failures are *ValidationError; nothing native happens here.
func Decode(name string, params json.RawMessage, hint *BoundsHint) (Action, error) {
	registryMu.RLock()
	reg, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &types.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown automation action %q", name)}
	}
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	return reg.decode(params, hint)
}

// ---------------------------------------------------------------------------
// move_mouse
// ---------------------------------------------------------------------------

// MoveMouse moves the cursor to absolute screen coordinates.
type MoveMouse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (a *MoveMouse) Name() string { return "move_mouse" }

func (a *MoveMouse) EncodeParams() (json.RawMessage, error) {
	return json.Marshal(a)
}

func (a *MoveMouse) Perform(ctx context.Context, b Backend) (*Result, error) {
	if err := b.MoveMouse(ctx, a.X, a.Y); err != nil {
		return nil, err
	}
	return &Result{Content: fmt.Sprintf("Moved mouse to (%g, %g)", a.X, a.Y)}, nil
}

func decodeMoveMouse(params json.RawMessage, hint *BoundsHint) (Action, error) {
	var p struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &types.ValidationError{Field: "params", Reason: err.Error()}
	}
	if p.X == nil {
		return nil, &types.ValidationError{Field: "x", Reason: "move_mouse requires numeric 'x' param"}
	}
	if p.Y == nil {
		return nil, &types.ValidationError{Field: "y", Reason: "move_mouse requires numeric 'y' param"}
	}
	x, y := *p.X, *p.Y
	if x < 0 {
		return nil, &types.ValidationError{Field: "x", Reason: "coordinate must not be negative"}
	}
	if y < 0 {
		return nil, &types.ValidationError{Field: "y", Reason: "coordinate must not be negative"}
	}
	// Out-of-bound coordinates fail instead of being clamped; behavior
	// stays predictable for the caller.
	if b := boundsOf(hint); b != nil {
		if x > b.Width {
			return nil, &types.ValidationError{Field: "x", Reason: fmt.Sprintf("%g exceeds screen width %g", x, b.Width)}
		}
		if y > b.Height {
			return nil, &types.ValidationError{Field: "y", Reason: fmt.Sprintf("%g exceeds screen height %g", y, b.Height)}
		}
	}
	return &MoveMouse{X: x, Y: y}, nil
}

func boundsOf(hint *BoundsHint) *Bounds {
	if hint == nil {
		return nil
	}
	return hint.Get()
}

// ---------------------------------------------------------------------------
// click
// ---------------------------------------------------------------------------

// Click presses a mouse button at the current cursor position. Zero values
// mean a single left click.
type Click struct {
	Button string `json:"button,omitempty"`
	Count  int    `json:"count,omitempty"`
}

func (a *Click) Name() string { return "click" }

func (a *Click) EncodeParams() (json.RawMessage, error) {
	return json.Marshal(a)
}

func (a *Click) Perform(ctx context.Context, b Backend) (*Result, error) {
	button, count := a.Button, a.Count
	if button == "" {
		button = "left"
	}
	if count < 1 {
		count = 1
	}
	if err := b.Click(ctx, button, count); err != nil {
		return nil, err
	}
	if count == 1 {
		return &Result{Content: fmt.Sprintf("Performed %s click", button)}, nil
	}
	return &Result{Content: fmt.Sprintf("Performed %dx %s click", count, button)}, nil
}

func decodeClick(params json.RawMessage, _ *BoundsHint) (Action, error) {
	var p struct {
		Button string `json:"button"`
		Count  *int   `json:"count"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &types.ValidationError{Field: "params", Reason: err.Error()}
	}
	button := p.Button
	if button == "" {
		button = "left"
	}
	switch button {
	case "left", "right", "middle":
	default:
		return nil, &types.ValidationError{Field: "button", Reason: fmt.Sprintf("unknown button %q, use left, right, or middle", p.Button)}
	}
	count := 1
	if p.Count != nil {
		count = *p.Count
	}
	if count < 1 || count > maxClickCount {
		return nil, &types.ValidationError{Field: "count", Reason: fmt.Sprintf("count must be between 1 and %d", maxClickCount)}
	}
	return &Click{Button: button, Count: count}, nil
}

// maxClickCount caps repeat clicks; triple-click is the largest gesture any
// desktop convention uses.
const maxClickCount = 3

// ---------------------------------------------------------------------------
// type
// ---------------------------------------------------------------------------

// TypeText synthesizes keystrokes for a string of text.
type TypeText struct {
	Text string `json:"text"`
}

func (a *TypeText) Name() string { return "type" }

func (a *TypeText) EncodeParams() (json.RawMessage, error) {
	return json.Marshal(a)
}

func (a *TypeText) Perform(ctx context.Context, b Backend) (*Result, error) {
	if err := b.TypeText(ctx, a.Text); err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(map[string]int{"chars": len([]rune(a.Text))})
	return &Result{
		Content: fmt.Sprintf("Typed %d characters", len([]rune(a.Text))),
		Payload: payload,
	}, nil
}

func decodeTypeText(params json.RawMessage, _ *BoundsHint) (Action, error) {
	var p struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &types.ValidationError{Field: "params", Reason: err.Error()}
	}
	if p.Text == nil {
		return nil, &types.ValidationError{Field: "text", Reason: "type requires string 'text' param"}
	}
	if *p.Text == "" {
		return nil, &types.ValidationError{Field: "text", Reason: "text must not be empty"}
	}
	return &TypeText{Text: *p.Text}, nil
}

// ---------------------------------------------------------------------------
// key_press
// ---------------------------------------------------------------------------

// namedKeys is the closed set of non-character keys every backend can map
// to its tool's syntax. Aliases are folded at decode time.
var namedKeys = map[string]bool{
	"return": true, "tab": true, "escape": true, "space": true,
	"backspace": true, "delete": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

var keyAliases = map[string]string{
	"enter": "return",
	"esc":   "escape",
}

var modifierAliases = map[string]string{
	"shift":   "shift",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"meta":    "meta",
	"cmd":     "meta",
	"command": "meta",
	"win":     "meta",
	"super":   "meta",
}

// KeyPress taps a key, optionally with modifiers held. Key is either a
// single character or one of namedKeys; Modifiers are canonical tokens.
type KeyPress struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers,omitempty"`
}

func (a *KeyPress) Name() string { return "key_press" }

func (a *KeyPress) EncodeParams() (json.RawMessage, error) {
	return json.Marshal(a)
}

func (a *KeyPress) Perform(ctx context.Context, b Backend) (*Result, error) {
	if err := b.KeyPress(ctx, a.Key, a.Modifiers); err != nil {
		return nil, err
	}
	combo := a.Key
	if len(a.Modifiers) > 0 {
		combo = strings.Join(a.Modifiers, "+") + "+" + a.Key
	}
	return &Result{Content: "Pressed " + combo}, nil
}

func decodeKeyPress(params json.RawMessage, _ *BoundsHint) (Action, error) {
	var p struct {
		Key       *string  `json:"key"`
		Modifiers []string `json:"modifiers"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &types.ValidationError{Field: "params", Reason: err.Error()}
	}
	if p.Key == nil || *p.Key == "" {
		return nil, &types.ValidationError{Field: "key", Reason: "key_press requires string 'key' param"}
	}
	key := strings.ToLower(*p.Key)
	if canonical, ok := keyAliases[key]; ok {
		key = canonical
	}
	if !namedKeys[key] && len([]rune(key)) != 1 {
		return nil, &types.ValidationError{
			Field: "key",
			Reason: fmt.Sprintf("unknown key %q, use a single character or a named key "+
				"(return, tab, escape, space, backspace, delete, up, down, left, right, "+
				"home, end, pageup, pagedown, f1-f12)", *p.Key),
		}
	}
	mods := make([]string, 0, len(p.Modifiers))
	seen := map[string]bool{}
	for _, m := range p.Modifiers {
		canonical, ok := modifierAliases[strings.ToLower(m)]
		if !ok {
			return nil, &types.ValidationError{Field: "modifiers", Reason: fmt.Sprintf("unknown modifier %q, use shift, ctrl, alt, or cmd", m)}
		}
		if !seen[canonical] {
			seen[canonical] = true
			mods = append(mods, canonical)
		}
	}
	return &KeyPress{Key: key, Modifiers: mods}, nil
}

// ---------------------------------------------------------------------------
// screen_size
// ---------------------------------------------------------------------------

// ScreenSize reports the primary display dimensions. Executing it also
// refreshes the bounds hint used by move_mouse validation.
type ScreenSize struct {
	hint *BoundsHint
}

func (a *ScreenSize) Name() string { return "screen_size" }

func (a *ScreenSize) EncodeParams() (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (a *ScreenSize) Perform(ctx context.Context, b Backend) (*Result, error) {
	w, h, err := b.ScreenSize(ctx)
	if err != nil {
		return nil, err
	}
	if a.hint != nil {
		a.hint.Set(w, h)
	}
	payload, _ := json.Marshal(map[string]float64{"width": w, "height": h})
	return &Result{Content: fmt.Sprintf("%gx%g", w, h), Payload: payload}, nil
}

// ---------------------------------------------------------------------------
// mouse_position
// ---------------------------------------------------------------------------

// MousePosition reports the current cursor coordinates.
type MousePosition struct{}

func (a *MousePosition) Name() string { return "mouse_position" }

func (a *MousePosition) EncodeParams() (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (a *MousePosition) Perform(ctx context.Context, b Backend) (*Result, error) {
	x, y, err := b.MousePosition(ctx)
	if err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(map[string]float64{"x": x, "y": y})
	return &Result{Content: fmt.Sprintf("(%g, %g)", x, y), Payload: payload}, nil
}

func init() {
	Register(Descriptor{
		Name:        "move_mouse",
		Description: "Move the mouse cursor to absolute screen coordinates",
		Params:      []string{"x", "y"},
	}, decodeMoveMouse)

	Register(Descriptor{
		Name:        "click",
		Description: "Click at the current cursor position, optionally choosing button and count",
		Params:      []string{"button", "count"},
	}, decodeClick)

	Register(Descriptor{
		Name:        "type",
		Description: "Type text using simulated keystrokes",
		Params:      []string{"text"},
	}, decodeTypeText)

	Register(Descriptor{
		Name:        "key_press",
		Description: "Press a key or key combination with optional modifiers",
		Params:      []string{"key", "modifiers"},
	}, decodeKeyPress)

	Register(Descriptor{
		Name:        "screen_size",
		Description: "Return the primary display width and height",
	}, func(_ json.RawMessage, hint *BoundsHint) (Action, error) {
		return &ScreenSize{hint: hint}, nil
	})

	Register(Descriptor{
		Name:        "mouse_position",
		Description: "Return the current cursor coordinates",
	}, func(_ json.RawMessage, _ *BoundsHint) (Action, error) {
		return &MousePosition{}, nil
	})
}
