package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/sign"
	"github.com/nerrad567/alphasign-core/internal/transport"
)

// run builds the named action from p and sends it. On failure it writes
// the error response and returns false.
func (s *Server) run(w http.ResponseWriter, r *http.Request, name string, p sign.Params, errPrefix string) (sign.Action, *alpha.Packet, bool) {
	action, err := sign.Build(name, p, s.now())
	if err != nil {
		writeSignError(w, errPrefix, err)
		return sign.Action{}, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), signCommandTimeout)
	defer cancel()

	reply, err := s.sign.Run(ctx, action, requestSource(r))
	if err != nil {
		s.logger.Warn("sign command failed", "command", name, "error", err)
		writeSignError(w, errPrefix, err)
		return sign.Action{}, nil, false
	}
	return action, reply, true
}

// success writes the {"status":"success","message":...} envelope merged
// with fields.
func success(w http.ResponseWriter, message string, fields map[string]any) {
	resp := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		resp[k] = v
	}
	resp["status"] = "success"
	resp["message"] = message
	writeJSON(w, http.StatusOK, resp)
}

// handleAlphaSign sends a formatted text message.
func (s *Server) handleAlphaSign(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("msg") == "" {
		writeBadRequest(w, "Missing 'msg' parameter")
		return
	}
	action, _, ok := s.run(w, r, sign.KindMessage, r.URL.Query(), "Failed to send to Alpha sign")
	if !ok {
		return
	}
	success(w, "Text sent to Alpha sign", action.Detail)
}

// handleStatus reports service and connection state.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":               ServiceName,
		"version":               s.version,
		"sign_id":               s.sign.ID(),
		"target":                s.sign.Target(),
		"sign_connected":        s.sign.IsConnected(),
		"available_connections": transport.Available(),
		"serial_available":      transport.SerialAvailable,
		"stats":                 s.sign.Stats(),
	})
}

func (s *Server) handleSetTime(w http.ResponseWriter, r *http.Request) {
	action, _, ok := s.run(w, r, sign.KindSetTime, r.URL.Query(), "Invalid time format")
	if !ok {
		return
	}
	success(w, fmt.Sprintf("Time set to %s", action.Detail["time"]), action.Detail)
}

func (s *Server) handleSetDate(w http.ResponseWriter, r *http.Request) {
	action, _, ok := s.run(w, r, sign.KindSetDate, r.URL.Query(), "Invalid date format")
	if !ok {
		return
	}
	success(w, fmt.Sprintf("Date set to %s", action.Detail["date"]), action.Detail)
}

func (s *Server) handleSound(w http.ResponseWriter, r *http.Request) {
	action, _, ok := s.run(w, r, sign.KindSound, r.URL.Query(), "Failed to set sound on sign")
	if !ok {
		return
	}
	state := "disabled"
	if on, _ := action.Detail["sound_on"].(bool); on { //nolint:errcheck // always a bool
		state = "enabled"
	}
	success(w, "Sound "+state, action.Detail)
}

// handleReset soft-resets the sign. The client marks its clock stale so the
// next command resynchronises date and time.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.run(w, r, sign.KindReset, nil, "Reset failed"); !ok {
		return
	}
	success(w, "Sign reset successfully - date/time will be synchronized on next message", nil)
}

// handleMemory reads the memory size (action=info, the default) or writes
// the default memory map (action=configure).
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "", "info":
		action, err := sign.Build(sign.KindReadMemory, nil, s.now())
		if err != nil {
			writeSignError(w, "Failed to read memory info", err)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), signCommandTimeout)
		defer cancel()

		// Many network adapters swallow replies; a missing reply still
		// counts as a delivered request.
		reply, err := s.sign.Run(ctx, action, requestSource(r))
		if err != nil && !errors.Is(err, sign.ErrNoReply) {
			writeSignError(w, "Failed to read memory info", err)
			return
		}
		fields := action.Result(reply)
		fields["action"] = "read_memory_size"
		fields["reply_received"] = reply != nil
		success(w, "Memory info requested", fields)

	case "configure":
		if _, _, ok := s.run(w, r, sign.KindConfigMemory, nil, "Failed to configure memory map"); !ok {
			return
		}
		success(w, "Memory map configured", map[string]any{"action": "set_memory_map"})

	default:
		writeBadRequest(w, "Invalid memory action")
	}
}

func (s *Server) handleTone(w http.ResponseWriter, r *http.Request) {
	action, _, ok := s.run(w, r, sign.KindTone, r.URL.Query(), "Invalid tone parameters")
	if !ok {
		return
	}
	success(w, fmt.Sprintf("Tone generated: %s", action.Detail["tone_type"]), action.Detail)
}

func (s *Server) handleRunTime(w http.ResponseWriter, r *http.Request) {
	action, _, ok := s.run(w, r, sign.KindRunTime, r.URL.Query(), "Invalid run time parameters")
	if !ok {
		return
	}
	success(w, fmt.Sprintf("Run time table set for %s", action.Detail["label"]), action.Detail)
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	action, _, ok := s.run(w, r, sign.KindDisplayXY, r.URL.Query(), "Invalid display parameters")
	if !ok {
		return
	}
	success(w, fmt.Sprintf("Text displayed at (%d,%d)", action.Detail["x"], action.Detail["y"]), action.Detail)
}

// handleDimming sets the dimming register (action=register, the default)
// or the dimming schedule (action=time).
func (s *Server) handleDimming(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("action") {
	case "", "register":
		action, _, ok := s.run(w, r, sign.KindDimmingReg, q, "Invalid dimming parameters")
		if !ok {
			return
		}
		fields := action.Result(nil)
		fields["action"] = "register"
		success(w, fmt.Sprintf("Dimming register set: dim=%d, brightness=%d",
			action.Detail["dim"], action.Detail["brightness"]), fields)

	case "time":
		action, _, ok := s.run(w, r, sign.KindDimmingTime, q, "Invalid dimming parameters")
		if !ok {
			return
		}
		fields := action.Result(nil)
		fields["action"] = "time"
		success(w, fmt.Sprintf("Dimming time set: %02d:00-%02d:00",
			action.Detail["start"], action.Detail["stop"]), fields)

	default:
		writeBadRequest(w, "Invalid dimming action")
	}
}
