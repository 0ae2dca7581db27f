package alpha

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the display mode code written at the start of a text file.
type Mode string

// Display modes.
const (
	ModeRotate      Mode = "a"
	ModeHold        Mode = "b"
	ModeFlash       Mode = "c"
	ModeRollUp      Mode = "e"
	ModeRollDown    Mode = "f"
	ModeRollLeft    Mode = "g"
	ModeRollRight   Mode = "h"
	ModeWipeUp      Mode = "i"
	ModeWipeDown    Mode = "j"
	ModeWipeLeft    Mode = "k"
	ModeWipeRight   Mode = "l"
	ModeScroll      Mode = "m"
	ModeAutomode    Mode = "o"
	ModeRollIn      Mode = "p"
	ModeRollOut     Mode = "q"
	ModeWipeIn      Mode = "r"
	ModeWipeOut     Mode = "s"
	ModeCRotate     Mode = "t"
	ModeTwinkle     Mode = "n0"
	ModeSparkle     Mode = "n1"
	ModeSnow        Mode = "n2"
	ModeInterlock   Mode = "n3"
	ModeSwitch      Mode = "n4"
	ModeSlide       Mode = "n5"
	ModeSpray       Mode = "n6"
	ModeStarburst   Mode = "n7"
	ModeWelcome     Mode = "n8"
	ModeSlotMachine Mode = "n9"
)

var modeNames = map[string]Mode{
	"rotate":       ModeRotate,
	"hold":         ModeHold,
	"flash":        ModeFlash,
	"roll_up":      ModeRollUp,
	"roll_down":    ModeRollDown,
	"roll_left":    ModeRollLeft,
	"roll_right":   ModeRollRight,
	"wipe_up":      ModeWipeUp,
	"wipe_down":    ModeWipeDown,
	"wipe_left":    ModeWipeLeft,
	"wipe_right":   ModeWipeRight,
	"scroll":       ModeScroll,
	"automode":     ModeAutomode,
	"roll_in":      ModeRollIn,
	"roll_out":     ModeRollOut,
	"wipe_in":      ModeWipeIn,
	"wipe_out":     ModeWipeOut,
	"c_rotate":     ModeCRotate,
	"twinkle":      ModeTwinkle,
	"sparkle":      ModeSparkle,
	"snow":         ModeSnow,
	"interlock":    ModeInterlock,
	"switch":       ModeSwitch,
	"slide":        ModeSlide,
	"spray":        ModeSpray,
	"starburst":    ModeStarburst,
	"welcome":      ModeWelcome,
	"slot_machine": ModeSlotMachine,
}

// ParseMode returns the Mode for a name such as "roll_up". Unknown names
// fall back to ModeRotate.
func ParseMode(name string) Mode {
	if m, ok := modeNames[strings.ToLower(name)]; ok {
		return m
	}
	return ModeRotate
}

// WriteText writes plain text to the text file label with an explicit
// line position and mode. Tags in text are not expanded.
func WriteText(label string, line Line, mode Mode, text string) Command {
	cmd := Command{CmdWriteText}
	cmd = append(cmd, label...)
	cmd = append(cmd, ESC, byte(line))
	cmd = append(cmd, mode...)
	return append(cmd, EscapeText(text)...)
}

// WriteTextFile writes an already encoded payload to the text file label.
func WriteTextFile(label string, payload []byte) Command {
	cmd := make(Command, 0, 1+len(label)+len(payload))
	cmd = append(cmd, CmdWriteText)
	cmd = append(cmd, label...)
	return append(cmd, payload...)
}

// ClearText empties the text file label.
func ClearText(label string) Command {
	return WriteTextFile(label, nil)
}

// WriteString writes text to the string file label. Strings are shown
// wherever a text file embeds <STRING> followed by the label.
func WriteString(label, text string) Command {
	return WriteStringFile(label, []byte(EscapeText(text)))
}

// WriteStringFile writes an already encoded payload to the string file label.
func WriteStringFile(label string, payload []byte) Command {
	cmd := make(Command, 0, 1+len(label)+len(payload))
	cmd = append(cmd, CmdWriteString)
	cmd = append(cmd, label...)
	return append(cmd, payload...)
}

// FileType is the kind of file a memory entry reserves.
type FileType byte

// File types.
const (
	FileText   FileType = 'A'
	FileString FileType = 'B'
)

// MemoryEntry reserves sign memory for one file.
type MemoryEntry struct {
	Label string
	Type  FileType
	Size  int
}

// String renders the entry as label, type, lock flag, size and the
// type-specific trailer.
func (m MemoryEntry) String() string {
	trailer := "FF00"
	if m.Type == FileString {
		trailer = "0000"
	}
	return fmt.Sprintf("%s%cL%04X%s", m.Label, byte(m.Type), m.Size, trailer)
}

// Default file sizes.
const (
	DefaultTextFileSize   = 0x0100
	DefaultStringFileSize = 0x007D
)

// DefaultMemoryMap returns five text files A..E and ten string files
// 1..10 with the default sizes.
func DefaultMemoryMap() []MemoryEntry {
	entries := make([]MemoryEntry, 0, 15)
	for label := 'A'; label <= 'E'; label++ {
		entries = append(entries, MemoryEntry{Label: string(label), Type: FileText, Size: DefaultTextFileSize})
	}
	for i := 1; i <= 10; i++ {
		entries = append(entries, MemoryEntry{Label: strconv.Itoa(i), Type: FileString, Size: DefaultStringFileSize})
	}
	return entries
}

// AllocateMemory configures sign memory. Any existing files are cleared.
func AllocateMemory(entries ...MemoryEntry) Command {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
	}
	return special(SelectMemoryConfig, b.String())
}

// SetMemoryMap configures the default memory layout.
func SetMemoryMap() Command {
	return AllocateMemory(DefaultMemoryMap()...)
}
