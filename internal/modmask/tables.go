package modmask

import "github.com/BurntSushi/xgb/xproto"

// ModMaskTable maps a core modifier name to its X11 modifier mask.
type ModMaskTable map[string]uint16

// KeysymTable maps a modifier key name to the keysym that produces it.
type KeysymTable map[string]xproto.Keysym

// DefaultModMasks are the eight core X11 modifiers, in modmap order.
var DefaultModMasks = ModMaskTable{
	"shift":   xproto.ModMaskShift,
	"lock":    xproto.ModMaskLock,
	"control": xproto.ModMaskControl,
	"mod1":    xproto.ModMask1,
	"mod2":    xproto.ModMask2,
	"mod3":    xproto.ModMask3,
	"mod4":    xproto.ModMask4,
	"mod5":    xproto.ModMask5,
}

// ModifierOrder is the order of modifier rows in the server's modifier mapping.
var ModifierOrder = []string{"shift", "lock", "control", "mod1", "mod2", "mod3", "mod4", "mod5"}

// DefaultKeysyms lists the keysyms of keys that are commonly bound to a
// modifier row. Values come from X11/keysymdef.h.
var DefaultKeysyms = KeysymTable{
	"Shift_L":          0xffe1,
	"Shift_R":          0xffe2,
	"Control_L":        0xffe3,
	"Control_R":        0xffe4,
	"Caps_Lock":        0xffe5,
	"Shift_Lock":       0xffe6,
	"Meta_L":           0xffe7,
	"Meta_R":           0xffe8,
	"Alt_L":            0xffe9,
	"Alt_R":            0xffea,
	"Super_L":          0xffeb,
	"Super_R":          0xffec,
	"Hyper_L":          0xffed,
	"Hyper_R":          0xffee,
	"Num_Lock":         0xff7f,
	"Scroll_Lock":      0xff14,
	"Mode_switch":      0xff7e,
	"ISO_Level3_Shift": 0xfe03,
	"ISO_Level5_Shift": 0xfe11,
}

func (t ModMaskTable) clone() ModMaskTable {
	out := make(ModMaskTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func (t KeysymTable) clone() KeysymTable {
	out := make(KeysymTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
