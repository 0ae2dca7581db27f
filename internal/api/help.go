package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nerrad567/alphasign-core/internal/sign"
)

const helpEndpoints = `Endpoints:
- GET /AlphaSign?msg=<message> - Send message to sign
- GET /status - Get service status
- GET /help - Show this help
- GET /settime?time=14:30 - Set sign time
- GET /setdate?date=12/25/23 - Set sign date
- GET /sound?on=true - Control sign sound
- GET /reset - Soft reset the sign
- GET /memory?action=info - Get memory info
- GET /memory?action=configure - Configure memory map
- GET /tone?type=beep&freq=1000&duration=5 - Generate tone
- GET /runtime?label=A&start=09:00&stop=17:00 - Set run time table
- GET /display?enabled=true&x=10&y=5&text=Hello - Display text at XY
- GET /dimming?action=register&dim=1&brightness=80 - Set dimming register
- GET /dimming?action=time&start=18&stop=6 - Set dimming time schedule
- GET /api/v1/health - Health check
- GET /api/v1/history?kind=&status=&limit=&offset= - Command history
- POST /api/v1/encode - Preview the bytes for a message without sending
- POST /api/v1/commands/{name} - Run any named command with JSON parameters
- GET /api/v1/ws - Live command events (channel sign.command)
`

const helpTail = `
Examples:
- /AlphaSign?msg=Hello World
- /AlphaSign?msg=Hello&color=red&effect=flash&speed=5
- /AlphaSign?msg=Welcome&color=green&effect=twinkle&beep=3
- /AlphaSign?msg=Alert&color=amber&effect=hold&line=top
- /settime?time=14:30
- /setdate?date=12/25/23

Special formatting in messages:
- <C:RED>text</C:RED> - Red text
- <SPEED:1>text</SPEED:1> - Slow speed
- <FLASH>text</FLASH> - Flash effect
- <TIME> - Current time
- <DATE> - Current date
- <ANIM:WELCOME> - Welcome animation
- <ANIM:FIREWORKS> - Fireworks animation
`

// helpText renders the plain-text usage page.
func helpText() string {
	var b strings.Builder
	b.WriteString("Alpha Sign HTTP Service Help\n\n")
	b.WriteString(helpEndpoints)
	b.WriteString("\nAlphaSign Parameters:\n")
	b.WriteString("- msg (required): The message to display\n")
	fmt.Fprintf(&b, "- color: %s\n", strings.Join(sign.Colors(), ", "))
	fmt.Fprintf(&b, "- effect: %s\n", strings.Join(sign.Effects(), ", "))
	b.WriteString("- speed: 1-5 (1=slowest, 5=fastest)\n")
	fmt.Fprintf(&b, "- font: %s\n", strings.Join(sign.Fonts(), ", "))
	b.WriteString("- line: top, middle, bottom, fill\n")
	b.WriteString("- beep: 0-9 (number of beeps)\n")
	b.WriteString("- label: A-Z (file label)\n")
	fmt.Fprintf(&b, "\nCommand names: %s\n", strings.Join(sign.ActionNames(), ", "))
	b.WriteString(helpTail)
	return b.String()
}

func (s *Server) handleHelp(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	w.Write([]byte(helpText()))
}
