package sign

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
)

// Message is a text message with presentation options. Option values are
// lowercase names; unknown values are ignored rather than rejected.
type Message struct {
	Text   string `json:"text"`
	Color  string `json:"color,omitempty"`
	Effect string `json:"effect,omitempty"`
	Speed  string `json:"speed,omitempty"`
	Font   string `json:"font,omitempty"`
	Line   string `json:"line,omitempty"`
	Beep   string `json:"beep,omitempty"`
	Label  string `json:"label,omitempty"`
}

// Default presentation options.
const (
	DefaultColor  = "auto"
	DefaultEffect = "scroll"
	DefaultSpeed  = "3"
	DefaultFont   = "sans7"
	DefaultLine   = "middle"
	DefaultLabel  = "A"
)

// NewMessage returns a message with the default options.
func NewMessage(text string) Message {
	return Message{
		Text:   text,
		Color:  DefaultColor,
		Effect: DefaultEffect,
		Speed:  DefaultSpeed,
		Font:   DefaultFont,
		Line:   DefaultLine,
		Beep:   "0",
		Label:  DefaultLabel,
	}
}

var colorTags = map[string]string{
	"red":      "<C:RED>",
	"green":    "<C:GREEN>",
	"amber":    "<C:AMBER>",
	"dimred":   "<C:DIMRED>",
	"dimgreen": "<C:DIMGREEN>",
	"brown":    "<C:BROWN>",
	"yellow":   "<C:YELLOW>",
	"orange":   "<C:ORANGE>",
	"auto":     "<C:AUTO>",
	"rain1":    "<C:RAIN1>",
	"rain2":    "<C:RAIN2>",
	"mix":      "<C:COLORMIX>",
}

var effectTags = map[string]string{
	"scroll":     "<SCROLL>",
	"hold":       "<HOLD>",
	"flash":      "<FLASH>",
	"roll_up":    "<ROLL:UP>",
	"roll_down":  "<ROLL:DOWN>",
	"roll_left":  "<ROLL:LEFT>",
	"roll_right": "<ROLL:RIGHT>",
	"roll_in":    "<ROLL:IN>",
	"roll_out":   "<ROLL:OUT>",
	"wipe_up":    "<WIPE:UP>",
	"wipe_down":  "<WIPE:DOWN>",
	"wipe_left":  "<WIPE:LEFT>",
	"wipe_right": "<WIPE:RIGHT>",
	"wipe_in":    "<WIPE:IN>",
	"wipe_out":   "<WIPE:OUT>",
	"twinkle":    "<TWINKLE>",
	"sparkle":    "<SPARKLE>",
	"snow":       "<SNOW>",
	"interlock":  "<INTERLOCK>",
	"switch":     "<SWITCH>",
	"slide":      "<SLIDE>",
	"spray":      "<SPRAY>",
	"starburst":  "<STARBURST>",
	"auto":       "<AUTO>",
}

var fontTags = map[string]string{
	"sans5":   "<F:SANS5>",
	"sans7":   "<F:SANS7>",
	"serif7":  "<F:SERIF7>",
	"serif16": "<F:SERIF16>",
	"sans16":  "<F:SANS16>",
}

// Compose builds the tagged text for m and the line position effects
// should use. The tag order is effect, font, speed, color, text, beep.
// The line is returned separately so the encoder embeds it in the effect
// sequence instead of printing it.
func Compose(m Message) (string, alpha.Line) {
	var b strings.Builder

	if tag, ok := effectTags[m.Effect]; ok {
		b.WriteString(tag)
	}
	if tag, ok := fontTags[m.Font]; ok {
		b.WriteString(tag)
	}
	if n, err := strconv.Atoi(m.Speed); err == nil && n >= 1 && n <= 5 {
		b.WriteString("<SPEED:" + m.Speed + ">")
	}
	if tag, ok := colorTags[m.Color]; ok {
		b.WriteString(tag)
	}

	b.WriteString(m.Text)

	if n, err := strconv.Atoi(m.Beep); err == nil && n > 0 {
		b.WriteString("<BEEP:" + strconv.Itoa(n) + ">")
	}

	line, ok := alpha.ParseLine(m.Line)
	if !ok {
		line = alpha.LineMiddle
	}
	return b.String(), line
}

// Encode composes m and returns the write-text command for its label.
func Encode(m Message) alpha.Command {
	tagged, line := Compose(m)

	enc := alpha.NewEncoder()
	enc.SetLine(line)

	label := m.Label
	if label == "" {
		label = DefaultLabel
	}
	return alpha.WriteTextFile(label, enc.EncodeMessage(tagged))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Colors returns the accepted color names.
func Colors() []string { return sortedKeys(colorTags) }

// Effects returns the accepted effect names.
func Effects() []string { return sortedKeys(effectTags) }

// Fonts returns the accepted font names.
func Fonts() []string { return sortedKeys(fontTags) }
