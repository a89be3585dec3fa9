package automation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/deskbothq/deskbot/internal/types"
)

func TestCatalogListsAllActions(t *testing.T) {
	want := []string{"click", "key_press", "mouse_position", "move_mouse", "screen_size", "type"}
	catalog := Catalog()
	if len(catalog) != len(want) {
		t.Fatalf("catalog has %d entries, want %d", len(catalog), len(want))
	}
	for i, desc := range catalog {
		if desc.Name != want[i] {
			t.Errorf("catalog[%d] = %q, want %q (sorted)", i, desc.Name, want[i])
		}
	}
}

func TestDecodeUnknownAction(t *testing.T) {
	_, err := Decode("self_destruct", nil, nil)
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != "action" {
		t.Errorf("field = %q, want action", ve.Field)
	}
}

func TestDecodeMoveMouse(t *testing.T) {
	tests := []struct {
		name      string
		params    string
		hint      *Bounds
		wantField string
	}{
		{name: "valid", params: `{"x": 100, "y": 200}`},
		{name: "missing x", params: `{"y": 200}`, wantField: "x"},
		{name: "missing y", params: `{"x": 100}`, wantField: "y"},
		{name: "negative x", params: `{"x": -1, "y": 0}`, wantField: "x"},
		{name: "negative y", params: `{"x": 0, "y": -0.5}`, wantField: "y"},
		{name: "x beyond bounds", params: `{"x": 2000, "y": 100}`, hint: &Bounds{Width: 1920, Height: 1080}, wantField: "x"},
		{name: "y beyond bounds", params: `{"x": 100, "y": 1100}`, hint: &Bounds{Width: 1920, Height: 1080}, wantField: "y"},
		{name: "within bounds", params: `{"x": 1920, "y": 1080}`, hint: &Bounds{Width: 1920, Height: 1080}},
		{name: "no hint yet allows large coords", params: `{"x": 99999, "y": 99999}`},
		{name: "malformed params", params: `{"x": "left"}`, wantField: "params"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := &BoundsHint{}
			if tt.hint != nil {
				hint.Set(tt.hint.Width, tt.hint.Height)
			}
			action, err := Decode("move_mouse", json.RawMessage(tt.params), hint)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if action.Name() != "move_mouse" {
					t.Errorf("name = %q", action.Name())
				}
				return
			}
			var ve *types.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestDecodeClick(t *testing.T) {
	action, err := Decode("click", nil, nil)
	if err != nil {
		t.Fatalf("bare click rejected: %v", err)
	}
	if c := action.(*Click); c.Button != "left" || c.Count != 1 {
		t.Errorf("defaults = %+v, want left x1", c)
	}

	action, err = Decode("click", json.RawMessage(`{"button": "middle", "count": 2}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := action.(*Click); c.Button != "middle" || c.Count != 2 {
		t.Errorf("decoded = %+v", c)
	}

	for name, params := range map[string]string{
		"unknown button": `{"button": "back"}`,
		"zero count":     `{"count": 0}`,
		"runaway count":  `{"count": 50}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("click", json.RawMessage(params), nil)
			var ve *types.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeKeyPress(t *testing.T) {
	tests := []struct {
		name      string
		params    string
		wantKey   string
		wantMods  []string
		wantField string
	}{
		{name: "named key", params: `{"key": "tab"}`, wantKey: "tab"},
		{name: "enter folds to return", params: `{"key": "Enter"}`, wantKey: "return"},
		{name: "single character", params: `{"key": "a"}`, wantKey: "a"},
		{name: "cmd folds to meta", params: `{"key": "c", "modifiers": ["cmd"]}`, wantKey: "c", wantMods: []string{"meta"}},
		{name: "control folds to ctrl", params: `{"key": "f5", "modifiers": ["control", "shift"]}`, wantKey: "f5", wantMods: []string{"ctrl", "shift"}},
		{name: "missing key", params: `{}`, wantField: "key"},
		{name: "unknown key", params: `{"key": "hyperspace"}`, wantField: "key"},
		{name: "unknown modifier", params: `{"key": "a", "modifiers": ["fn"]}`, wantField: "modifiers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Decode("key_press", json.RawMessage(tt.params), nil)
			if tt.wantField != "" {
				var ve *types.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if ve.Field != tt.wantField {
					t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			kp := action.(*KeyPress)
			if kp.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", kp.Key, tt.wantKey)
			}
			if len(kp.Modifiers) != len(tt.wantMods) {
				t.Fatalf("modifiers = %v, want %v", kp.Modifiers, tt.wantMods)
			}
			for i := range tt.wantMods {
				if kp.Modifiers[i] != tt.wantMods[i] {
					t.Errorf("modifiers = %v, want %v", kp.Modifiers, tt.wantMods)
				}
			}
		})
	}
}

func TestDecodeTypeText(t *testing.T) {
	if _, err := Decode("type", json.RawMessage(`{}`), nil); err == nil {
		t.Error("missing text accepted")
	}
	if _, err := Decode("type", json.RawMessage(`{"text": ""}`), nil); err == nil {
		t.Error("empty text accepted")
	}
	action, err := Decode("type", json.RawMessage(`{"text": "hello"}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.(*TypeText).Text != "hello" {
		t.Errorf("text = %q", action.(*TypeText).Text)
	}
}

func TestEncodeParamsRoundTrip(t *testing.T) {
	orig, err := Decode("move_mouse", json.RawMessage(`{"x": 10, "y": 20}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	params, err := orig.EncodeParams()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(orig.Name(), params, nil)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if *again.(*MoveMouse) != *orig.(*MoveMouse) {
		t.Errorf("round trip changed action: %+v vs %+v", again, orig)
	}
}

func TestPerformResults(t *testing.T) {
	ctx := context.Background()
	backend := &NopBackend{MouseX: 5, MouseY: 7}

	res, err := (&MoveMouse{X: 100, Y: 200}).Perform(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Moved mouse to (100, 200)" {
		t.Errorf("move content = %q", res.Content)
	}

	res, err = (&Click{}).Perform(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Performed left click" {
		t.Errorf("click content = %q", res.Content)
	}

	res, err = (&Click{Button: "right", Count: 2}).Perform(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Performed 2x right click" {
		t.Errorf("click content = %q", res.Content)
	}

	res, err = (&KeyPress{Key: "return", Modifiers: []string{"ctrl", "shift"}}).Perform(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Pressed ctrl+shift+return" {
		t.Errorf("key press content = %q", res.Content)
	}

	res, err = (&TypeText{Text: "héllo"}).Perform(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "Typed 5 characters" {
		t.Errorf("type content = %q", res.Content)
	}

	res, err = (&MousePosition{}).Perform(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "(100, 200)" {
		t.Errorf("position content = %q", res.Content)
	}
}

func TestScreenSizeRefreshesBoundsHint(t *testing.T) {
	hint := &BoundsHint{}
	backend := &NopBackend{Width: 2560, Height: 1440}

	res, err := (&ScreenSize{hint: hint}).Perform(context.Background(), backend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "2560x1440" {
		t.Errorf("content = %q", res.Content)
	}
	b := hint.Get()
	if b == nil || b.Width != 2560 || b.Height != 1440 {
		t.Errorf("hint not refreshed: %+v", b)
	}

	// A later oversized move_mouse now fails against the fresh hint.
	_, err = Decode("move_mouse", json.RawMessage(`{"x": 3000, "y": 100}`), hint)
	if err == nil || !strings.Contains(err.Error(), "exceeds screen width") {
		t.Errorf("expected bounds failure, got %v", err)
	}
}
