package diagtest

// keyboardLayout names every key slot of the ABNT2 bench keyboard that a
// terminal can actually deliver, with left/right variants for the dual-sided
// modifiers. Keys the terminal driver consumes or never reports (PrintScreen,
// ScrollLock, Pause, CapsLock, the Super keys, Menu) are left out: a slot no
// keystroke can reach would make full coverage impossible.
var keyboardLayout = []string{
	"esc", "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",

	"'", "1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "=",
	"backspace", "insert", "home", "pgup",

	"tab", "q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]",
	"delete", "end", "pgdn",

	"a", "s", "d", "f", "g", "h", "j", "k", "l", "ç", ";", "`",
	"enter",

	"shift-left", "\\", "z", "x", "c", "v", "b", "n", "m", ",", ".", "/",
	"shift-right", "up",

	"ctrl-left", "alt-left", "space", "alt-right", "ctrl-right",
	"left", "down", "right",
}

// modifierVariants maps a generic modifier event to every physical variant it
// could have come from. Input layers that cannot tell left from right mark
// both, matching how a technician actually exercises them.
var modifierVariants = map[string][]string{
	"shift": {"shift-left", "shift-right"},
	"ctrl":  {"ctrl-left", "ctrl-right"},
	"alt":   {"alt-left", "alt-right"},
}

// shiftedAliases maps characters produced with a held modifier back to the
// base key slot.
var shiftedAliases = map[string]string{
	"!": "1", "@": "2", "#": "3", "$": "4", "%": "5", "¨": "6", "&": "7",
	"*": "8", "(": "9", ")": "0", "_": "-", "+": "=",
	"{": "[", "}": "]", "|": "\\", ":": ";", "\"": "'",
	"<": ",", ">": ".", "?": "/", "~": "`",
}

// slotsForKey resolves a raw key name to the layout slots it marks. Chorded
// keys and shifted characters also mark the modifier that produced them,
// since a raw input layer only ever sees the combined result. Unknown keys
// resolve to nothing.
func slotsForKey(raw string) []string {
	if variants, ok := modifierVariants[raw]; ok {
		return variants
	}

	// "ctrl+a" style chords from control codes and escape prefixes.
	for mod, variants := range modifierVariants {
		if base, ok := cutChord(raw, mod); ok {
			return append(append([]string{}, variants...), base)
		}
	}

	if base, ok := shiftedAliases[raw]; ok {
		return append(append([]string{}, modifierVariants["shift"]...), base)
	}

	// An uppercase letter means shift was held.
	if len(raw) == 1 && raw[0] >= 'A' && raw[0] <= 'Z' {
		lower := string(raw[0] + ('a' - 'A'))
		return append(append([]string{}, modifierVariants["shift"]...), lower)
	}

	return []string{raw}
}

func cutChord(raw, mod string) (string, bool) {
	prefix := mod + "+"
	if len(raw) > len(prefix) && raw[:len(prefix)] == prefix {
		return raw[len(prefix):], true
	}
	return "", false
}
