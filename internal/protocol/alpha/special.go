package alpha

import (
	"fmt"
	"time"
)

// Command is one encoded protocol operation. The first byte is the
// command code (CmdWriteText, CmdWriteSpecial, ...). A Command is the
// payload that Frame wraps into a packet.
type Command []byte

// Code returns the command code, or 0 for an empty Command.
func (c Command) Code() byte {
	if len(c) == 0 {
		return 0
	}
	return c[0]
}

// Selector returns the special-function selector of an E or F command,
// or 0 when the command has none.
func (c Command) Selector() byte {
	if len(c) < 2 || (c[0] != CmdWriteSpecial && c[0] != CmdReadSpecial) {
		return 0
	}
	return c[1]
}

// IsRead reports whether the command asks the sign to reply.
func (c Command) IsRead() bool {
	switch c.Code() {
	case CmdReadText, CmdReadSpecial, CmdReadString, CmdReadSmallDots, CmdReadRGBDots, CmdReadLargeDots:
		return true
	}
	return false
}

// Special function selectors.
const (
	SelectTimeOfDay     byte = 0x20
	SelectSpeaker       byte = 0x21
	SelectMemoryConfig  byte = 0x24
	SelectDayOfWeek     byte = 0x26
	SelectTimeFormat    byte = 0x27
	SelectGenerateTone  byte = 0x28
	SelectRunTimeTable  byte = 0x29
	SelectDisplayAtXY   byte = 0x2B
	SelectSoftReset     byte = 0x2C
	SelectRunSequence   byte = 0x2E
	SelectDimming       byte = 0x2F
	SelectSerialAddress byte = 0x37
	SelectDate          byte = 0x3B
	SelectMemorySize    byte = 0x23
	SelectErrorRegister byte = 0x2A
)

// ToneType selects the sound made by GenerateTone.
type ToneType byte

// Tone types.
const (
	ToneBeep   ToneType = '1'
	ToneCustom ToneType = '2'
	ToneAlarm  ToneType = '3'
)

// ParseToneType maps "beep", "custom" and "alarm" to a ToneType.
func ParseToneType(name string) (ToneType, bool) {
	switch name {
	case "beep":
		return ToneBeep, true
	case "custom":
		return ToneCustom, true
	case "alarm":
		return ToneAlarm, true
	}
	return 0, false
}

// dimmingLevels are the brightness percentages the sign supports, in
// register index order.
var dimmingLevels = [...]int{100, 86, 72, 58, 44}

func special(selector byte, data string) Command {
	cmd := make(Command, 0, 2+len(data))
	cmd = append(cmd, CmdWriteSpecial, selector)
	return append(cmd, data...)
}

// SetTime sets the sign clock to the hour and minute of t (HHMM).
func SetTime(t time.Time) Command {
	return special(SelectTimeOfDay, t.Format("1504"))
}

// SetSound turns the speaker on or off.
func SetSound(on bool) Command {
	if on {
		return special(SelectSpeaker, "FF")
	}
	return special(SelectSpeaker, "00")
}

// SetWeekday sets the day of week. The day is sent as a single raw byte.
func SetWeekday(day int) Command {
	return special(SelectDayOfWeek, string([]byte{byte(day)}))
}

// Weekday returns the day index SetWeekday expects for t, counting from
// Monday as 0.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// SetTimeFormat selects 12-hour (standard) or 24-hour (military) display.
func SetTimeFormat(twelveHour bool) Command {
	if twelveHour {
		return special(SelectTimeFormat, "S")
	}
	return special(SelectTimeFormat, "M")
}

// GenerateTone makes the speaker sound. freq, duration and repeat only
// apply to ToneCustom.
func GenerateTone(tone ToneType, freq, duration, repeat int) Command {
	data := string([]byte{byte(tone)})
	if tone == ToneCustom {
		data += fmt.Sprintf("%02X%1X%1X", freq, duration, repeat)
	}
	return special(SelectGenerateTone, data)
}

// Beep sounds n short beeps. It is the expansion of the <BEEP:n> tag.
func Beep(n int) Command {
	return GenerateTone(ToneCustom, 0x02, 2, n-1)
}

// SetRunTimeTable sets when the text file label runs. start and stop are
// copied as given.
func SetRunTimeTable(label, start, stop string) Command {
	return special(SelectRunTimeTable, label+start+stop)
}

// DisplayAtXY places text at column x, row y, or removes it when
// enabled is false.
func DisplayAtXY(enabled bool, x, y int, text string) Command {
	flag := "-"
	if enabled {
		flag = "+"
	}
	return special(SelectDisplayAtXY, flag+"+"+fmt.Sprintf("%02d%02d", x, y)+text)
}

// SoftReset restarts the sign firmware without clearing memory.
func SoftReset() Command {
	return special(SelectSoftReset, "")
}

// SetDimmingRegister sets the dim level and picks the supported
// brightness closest to the requested percentage.
func SetDimmingRegister(dim, brightness int) Command {
	return special(SelectDimming, fmt.Sprintf("%02X%02d", dim, closestDimmingLevel(brightness)))
}

func closestDimmingLevel(brightness int) int {
	best, bestDiff := 0, -1
	for i, level := range dimmingLevels {
		diff := level - brightness
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// SetDimmingTime sets the hours at which dimming starts and stops.
func SetDimmingTime(start, stop int) Command {
	return special(SelectDimming, fmt.Sprintf("%02X%02X", start, stop))
}

// SetDate sets the sign calendar (MMDDYY).
func SetDate(t time.Time) Command {
	return special(SelectDate, t.Format("010206"))
}

// SetSerialAddress assigns the sign's two-character serial address.
func SetSerialAddress(addr string) Command {
	return special(SelectSerialAddress, addr)
}

// SetRunSequence sets the order in which text files play. The sequence
// runs by time table (T) and ignores file locks (U).
func SetRunSequence(labels string) Command {
	return special(SelectRunSequence, "TU"+labels)
}

func readSpecial(selector byte) Command {
	return Command{CmdReadSpecial, selector}
}

// ReadErrorRegister asks the sign for its error status register.
func ReadErrorRegister() Command {
	return readSpecial(SelectErrorRegister)
}

// ReadMemorySize asks the sign how much free memory it has.
func ReadMemorySize() Command {
	return readSpecial(SelectMemorySize)
}
