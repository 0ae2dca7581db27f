package alpha

// Framing and control bytes.
const (
	NUL byte = 0x00
	SOH byte = 0x01
	STX byte = 0x02
	ETX byte = 0x03
	EOT byte = 0x04
	ESC byte = 0x1B
)

// Embedded control codes used inside text payloads.
const (
	codeExtendedChar byte = 0x08
	codeNoHold       byte = 0x09
	codeCallDate     byte = 0x0B
	codeNewPage      byte = 0x0C
	codeNewLine      byte = 0x0D
	codeCallString   byte = 0x10
	codeCallTime     byte = 0x13
	codeSpeedBase    byte = 0x15
	codeSelectFont   byte = 0x1A
	codeSelectColor  byte = 0x1C
	codeCharAttr     byte = 0x1D
	codeCharSpacing  byte = 0x1E
)

// Command codes. The first payload byte selects the operation.
const (
	CmdWriteText      byte = 'A'
	CmdReadText       byte = 'B'
	CmdWriteSpecial   byte = 'E'
	CmdReadSpecial    byte = 'F'
	CmdWriteString    byte = 'G'
	CmdReadString     byte = 'H'
	CmdWriteSmallDots byte = 'I'
	CmdReadSmallDots  byte = 'J'
	CmdWriteRGBDots   byte = 'K'
	CmdReadRGBDots    byte = 'L'
	CmdWriteLargeDots byte = 'M'
	CmdReadLargeDots  byte = 'N'
)

// Packet addressing defaults.
const (
	// SignTypeAll addresses every sign type on the link.
	SignTypeAll byte = 'Z'

	// AddressBroadcast addresses every sign regardless of serial address.
	AddressBroadcast = "00"

	// preambleLen is the number of NUL bytes that wake the sign's
	// baud-rate detector before SOH.
	preambleLen = 5
)
