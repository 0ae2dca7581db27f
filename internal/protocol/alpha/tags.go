package alpha

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Line is a display line position. Effect tags embed the current Line in
// their ESC sequence.
type Line byte

// Line positions.
const (
	LineMiddle Line = ' '
	LineTop    Line = '"'
	LineBottom Line = '&'
	LineFill   Line = '0'
)

var lineNames = map[string]Line{
	"TOP":    LineTop,
	"MIDDLE": LineMiddle,
	"BOTTOM": LineBottom,
	"FILL":   LineFill,
}

// ParseLine returns the Line for a position name (TOP, MIDDLE, BOTTOM or
// FILL). Matching is case-insensitive.
func ParseLine(name string) (Line, bool) {
	l, ok := lineNames[strings.ToUpper(strings.TrimSpace(name))]
	return l, ok
}

// String returns the position name.
func (l Line) String() string {
	for name, v := range lineNames {
		if v == l {
			return name
		}
	}
	return "Line(" + strconv.Itoa(int(l)) + ")"
}

// producer renders a tag. It receives the encoder so effect tags can read,
// and line tags can change, the current line.
type producer func(e *Encoder) string

// tagTable maps exact tag text to its producer.
var tagTable = buildTagTable()

var beepPattern = regexp.MustCompile(`^<BEEP:(\d+)>$`)

func literal(s string) producer {
	return func(*Encoder) string { return s }
}

func effect(code string) producer {
	return func(e *Encoder) string {
		return string([]byte{ESC, byte(e.line)}) + code
	}
}

func buildTagTable() map[string]producer {
	t := make(map[string]producer, 160)

	for n := 1; n <= 5; n++ {
		t["<SPEED:"+strconv.Itoa(n)+">"] = literal(string(codeSpeedBase + byte(n-1)))
		t["</SPEED:"+strconv.Itoa(n)+">"] = literal(string(codeNoHold))
	}

	colors := []struct {
		name string
		code byte
	}{
		{"RED", '1'}, {"GREEN", '2'}, {"AMBER", '3'}, {"DIMRED", '4'},
		{"DIMGREEN", '5'}, {"BROWN", '6'}, {"ORANGE", '7'}, {"YELLOW", '8'},
		{"RAIN1", '9'}, {"RAIN2", 'A'}, {"COLORMIX", 'B'}, {"AUTO", 'C'},
	}
	for _, c := range colors {
		t["<C:"+c.name+">"] = literal(string([]byte{codeSelectColor, c.code}))
		t["</C:"+c.name+">"] = literal(string([]byte{codeSelectColor, 'C'}))
	}

	fonts := map[string]byte{
		"SANS5": '1', "SANS7": '3', "SERIF7": '5', "SERIF16": '8', "SANS16": '9',
	}
	for name, code := range fonts {
		t["<F:"+name+">"] = literal(string([]byte{codeSelectFont, code}))
	}

	attrs := map[string]string{"WIDE": "0", "DWIDE": "1", "FIXEDWIDTH": "4"}
	for name, attr := range attrs {
		t["<"+name+":ON>"] = literal(string(codeCharAttr) + attr + "1")
		t["<"+name+":OFF>"] = literal(string(codeCharAttr) + attr + "0")
	}
	t["<FIXED:ON>"] = literal(string(codeCharSpacing) + "1")
	t["<FIXED:OFF>"] = literal(string(codeCharSpacing) + "0")

	effects := map[string]string{
		"<SCROLL>":        "a",
		"<HOLD>":          "b",
		"<FLASH>":         "c",
		"<ROLL:UP>":       "e",
		"<ROLL:DOWN>":     "f",
		"<ROLL:LEFT>":     "g",
		"<ROLL:RIGHT>":    "h",
		"<ROLL:IN>":       "p",
		"<ROLL:OUT>":      "q",
		"<WIPE:UP>":       "i",
		"<WIPE:DOWN>":     "j",
		"<WIPE:LEFT>":     "k",
		"<WIPE:RIGHT>":    "l",
		"<WIPE:IN>":       "r",
		"<WIPE:OUT>":      "s",
		"<2LINESCROLLUP>": "m",
		"<AUTO>":          "o",
		"<TWINKLE>":       "n0",
		"<SPARKLE>":       "n1",
		"<SNOW>":          "n2",
		"<INTERLOCK>":     "n3",
		"<SWITCH>":        "n4",
		"<SLIDE>":         "n5",
		"<SPRAY>":         "n6",
		"<STARBURST>":     "n7",

		"<ANIM:WELCOME>":    "n8",
		"<ANIM:SLOTS>":      "n9",
		"<ANIM:THANKYOU>":   "nS",
		"<ANIM:NOSMOKING>":  "nU",
		"<ANIM:DRINKDRIVE>": "nV",
		"<ANIM:HORSE>":      "nW",
		"<ANIM:FIREWORKS>":  "nX",
		"<ANIM:TURBOCAR>":   "nY",
		"<ANIM:CHERRYBOMB>": "nZ",
	}
	for tag, code := range effects {
		t[tag] = effect(code)
	}

	t["<DATE>"] = literal(string([]byte{codeCallDate, '8'}))
	t["<TIME>"] = literal(string(codeCallTime))
	t["<NOHOLD>"] = literal(string(codeNoHold))
	t["<STRING>"] = literal(string(codeCallString))

	for name, l := range lineNames {
		l := l
		t["<LINE:"+name+">"] = func(e *Encoder) string {
			e.line = l
			return string(byte(l))
		}
	}

	return t
}

// TagNames returns every recognised tag, sorted. <BEEP:n> is listed once
// in its generic form.
func TagNames() []string {
	names := make([]string, 0, len(tagTable)+1)
	for tag := range tagTable {
		names = append(names, tag)
	}
	names = append(names, "<BEEP:n>")
	sort.Strings(names)
	return names
}

// Encoder expands tag markup into sign control bytes.
//
// An Encoder carries the current line position used by effect tags, so a
// single Encoder must not be shared between concurrent messages. The zero
// value is not ready for use; call NewEncoder.
type Encoder struct {
	line Line
}

// NewEncoder returns an Encoder positioned on the middle line.
func NewEncoder() *Encoder {
	return &Encoder{line: LineMiddle}
}

// Line returns the line position effect tags currently embed.
func (e *Encoder) Line() Line {
	return e.line
}

// SetLine changes the line position used by subsequent effect tags.
func (e *Encoder) SetLine(l Line) {
	e.line = l
}

// EncodeMessage escapes non-ASCII characters and then expands tags.
func (e *Encoder) EncodeMessage(text string) []byte {
	return e.Encode(EscapeText(text))
}

// Encode expands every recognised tag in text in one left-to-right pass.
//
// Unrecognised tags and plain text are copied through. The two-character
// sequences `\p` and `\n` become new-page and new-line codes. Encode never
// fails; a <BEEP:n> whose count is not a positive integer stays literal.
//
// Output is never rescanned, and every expansion except the <LINE:*> tags
// contains a control byte, so encoding the output again changes nothing.
// The one exception is <LINE:FILL> inside an unfinished <BEEP: fragment:
// its '0' joins the digits, so "<BEEP:1<LINE:FILL>>" encodes to the literal
// text "<BEEP:10>", which a second Encode would expand.
func (e *Encoder) Encode(text string) []byte {
	var out bytes.Buffer
	out.Grow(len(text))

	for i := 0; i < len(text); {
		switch text[i] {
		case '<':
			if tag, ok := e.expandTag(text[i:]); ok {
				out.WriteString(tag.bytes)
				i += tag.consumed
				continue
			}
		case '\\':
			if i+1 < len(text) {
				switch text[i+1] {
				case 'p':
					out.WriteByte(codeNewPage)
					i += 2
					continue
				case 'n':
					out.WriteByte(codeNewLine)
					i += 2
					continue
				}
			}
		}
		out.WriteByte(text[i])
		i++
	}

	return out.Bytes()
}

type expansion struct {
	bytes    string
	consumed int
}

// expandTag tries to match a tag at the start of s.
func (e *Encoder) expandTag(s string) (expansion, bool) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return expansion{}, false
	}
	tag := s[:end+1]

	if p, ok := tagTable[tag]; ok {
		return expansion{bytes: p(e), consumed: len(tag)}, true
	}

	if m := beepPattern.FindStringSubmatch(tag); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return expansion{}, false
		}
		return expansion{bytes: string(Beep(n)), consumed: len(tag)}, true
	}

	return expansion{}, false
}
