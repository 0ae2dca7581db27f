package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/alphasign-core/internal/auth"
	"github.com/nerrad567/alphasign-core/internal/history"
	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/sign"
	"github.com/nerrad567/alphasign-core/internal/transport"
)

// EncodeResponse is the body of POST /api/v1/encode.
type EncodeResponse struct {
	Tagged     string `json:"tagged"`
	Line       string `json:"line"`
	PayloadHex string `json:"payload_hex"`
	PacketHex  string `json:"packet_hex"`
	Bytes      int    `json:"bytes"`
	Fragments  int    `json:"fragments"`
}

// framing returns the sign type and address used for packets.
func (s *Server) framing() (byte, string) {
	signType := alpha.SignTypeAll
	if len(s.signCfg.Type) == 1 {
		signType = s.signCfg.Type[0]
	}
	address := s.signCfg.Address
	if address == "" {
		address = alpha.AddressBroadcast
	}
	return signType, address
}

// handleEncode returns the exact bytes a message would put on the wire.
// Nothing is sent.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	m := sign.NewMessage("")
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if m.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}

	tagged, line := sign.Compose(m)
	payload := sign.Encode(m)
	signType, address := s.framing()
	packet := alpha.FrameTo(payload, signType, address)

	writeJSON(w, http.StatusOK, EncodeResponse{
		Tagged:     tagged,
		Line:       line.String(),
		PayloadHex: hex.EncodeToString(payload),
		PacketHex:  hex.EncodeToString(packet),
		Bytes:      len(packet),
		Fragments:  len(transport.Split(packet)),
	})
}

// handleCommand runs any named sign command. The body is an optional JSON
// object of string parameters, named as in the query interface.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	params := sign.MapParams{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "body must be a JSON object of string parameters")
		return
	}

	action, err := sign.Build(name, params, s.now())
	if err != nil {
		writeSignError(w, "invalid command", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), signCommandTimeout)
	defer cancel()

	reply, err := s.sign.Run(ctx, action, requestSource(r))
	if err != nil {
		writeSignError(w, name+" failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"command": name,
		"sign_id": s.sign.ID(),
		"detail":  action.Result(reply),
	})
}

// handleHistory lists recorded commands, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "history is not configured")
		return
	}

	q := r.URL.Query()
	filter := history.Filter{
		SignID: q.Get("sign_id"),
		Kind:   q.Get("kind"),
		Status: q.Get("status"),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, p.name+" must be a non-negative integer")
			return
		}
		*p.dst = n
	}

	result, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing history failed", "error", err)
		writeInternalError(w, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// tokenRequest is the body of POST /api/v1/auth/token.
type tokenRequest struct {
	Subject    string `json:"subject"`
	Role       string `json:"role"`
	TTLMinutes int    `json:"ttl_minutes,omitempty"`
}

// tokenResponse mirrors the OAuth token response shape.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleIssueToken mints a token for another caller. Only reachable with
// an admin token, so it is absent in practice when auth is disabled.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if !s.secCfg.JWT.Enabled {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "jwt auth is disabled")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		writeBadRequest(w, "role must be viewer, operator or admin")
		return
	}

	ttl := time.Duration(req.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Duration(s.secCfg.JWT.AccessTokenTTL) * time.Minute
	}
	now := s.now()
	token, expires, err := auth.GenerateAccessToken(auth.TokenRequest{
		Subject: req.Subject,
		Role:    role,
		Issuer:  s.secCfg.JWT.Issuer,
		TTL:     ttl,
		Now:     now,
	}, s.secCfg.JWT.Secret)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(expires.Sub(now).Seconds()),
	})
}
