package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"

	"imgpaste/src/messages"
)

// Binding maps a key combination such as "Ctrl+Alt+A" to a trigger.
type Binding struct {
	Combo string
	Kind  messages.Kind
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type combo struct {
	text string
	kind messages.Kind
	keys []keyState
}

// matcher tracks key state for every binding. Not safe for concurrent use.
type matcher struct {
	combos []combo
}

func newMatcher(bindings []Binding) (*matcher, error) {
	m := &matcher{}
	for _, b := range bindings {
		if strings.TrimSpace(b.Combo) == "" {
			continue
		}
		c := combo{text: b.Combo, kind: b.Kind}
		for _, name := range parseHotkey(b.Combo) {
			rawcodes := keyNameToRawcodes(name)
			if len(rawcodes) == 0 {
				return nil, fmt.Errorf("hotkey %q: cannot map key %q", b.Combo, name)
			}
			c.keys = append(c.keys, keyState{name: name, rawcodes: rawcodes})
		}
		m.combos = append(m.combos, c)
	}
	if len(m.combos) == 0 {
		return nil, errors.New("no hotkeys configured")
	}
	return m, nil
}

// keyDown records a press and returns the triggers whose keys are now all held.
func (m *matcher) keyDown(rawcode uint16) []messages.Kind {
	var fired []messages.Kind
	for ci := range m.combos {
		c := &m.combos[ci]
		for i := range c.keys {
			if hasRawcode(c.keys[i].rawcodes, rawcode) {
				c.keys[i].pressed = true
			}
		}
		all := true
		for i := range c.keys {
			if !c.keys[i].pressed {
				all = false
				break
			}
		}
		if all {
			log.Printf("Hotkey %s detected -> %s", c.text, c.kind)
			for i := range c.keys {
				c.keys[i].pressed = false
			}
			fired = append(fired, c.kind)
		}
	}
	return fired
}

func (m *matcher) keyUp(rawcode uint16) {
	for ci := range m.combos {
		for i := range m.combos[ci].keys {
			k := &m.combos[ci].keys[i]
			if hasRawcode(k.rawcodes, rawcode) {
				k.pressed = false
			}
		}
	}
}

func hasRawcode(codes []uint16, rawcode uint16) bool {
	for _, c := range codes {
		if c == rawcode {
			return true
		}
	}
	return false
}

// Listener forwards detected hotkeys to a post function. post is called
// from the hook goroutine and must not block.
type Listener struct {
	m        *matcher
	post     func(messages.Trigger)
	mu       sync.Mutex
	stopOnce sync.Once
}

// Listen validates bindings and starts the global keyboard hook.
func Listen(bindings []Binding, post func(messages.Trigger)) (*Listener, error) {
	m, err := newMatcher(bindings)
	if err != nil {
		return nil, err
	}
	l := &Listener{m: m, post: post}
	for _, c := range m.combos {
		log.Printf("Hotkey listener configured: %s -> %s", c.text, c.kind)
	}
	go l.run()
	return l, nil
}

func (l *Listener) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey goroutine: %v", r)
		}
	}()

	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("ERROR: gohook.Start() returned nil channel")
		return
	}
	for ev := range evChan {
		switch ev.Kind {
		case gohook.KeyDown:
			l.mu.Lock()
			fired := l.m.keyDown(ev.Rawcode)
			l.mu.Unlock()
			for _, kind := range fired {
				if l.post != nil {
					l.post(messages.Trigger{Kind: kind, Source: messages.SourceHotkey})
				}
			}
		case gohook.KeyUp:
			l.mu.Lock()
			l.m.keyUp(ev.Rawcode)
			l.mu.Unlock()
		}
	}
	log.Printf("Hotkey event channel closed")
}

// Stop ends the keyboard hook. Safe to call more than once.
func (l *Listener) Stop() {
	l.stopOnce.Do(gohook.End)
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super", "meta":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var specialKeys = map[string]uint16{
	"space":     32, // VK_SPACE
	"enter":     13, // VK_RETURN
	"return":    13,
	"esc":       27, // VK_ESCAPE
	"escape":    27,
	"tab":       9,  // VK_TAB
	"backspace": 8,  // VK_BACK
	"delete":    46, // VK_DELETE
	"del":       46,
	"insert":    45, // VK_INSERT
	"ins":       45,
	"home":      36, // VK_HOME
	"end":       35, // VK_END
	"pageup":    33, // VK_PRIOR
	"pgup":      33,
	"pagedown":  34, // VK_NEXT
	"pgdn":      34,
	"left":      37,
	"up":        38,
	"right":     39,
	"down":      40,

	"printscreen": 44, // VK_SNAPSHOT
	"prtsc":       44,
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes.
// Modifiers return both left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "win", "cmd", "super":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}

	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}

	if code, ok := specialKeys[keyName]; ok {
		return []uint16{code}
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
