package sign

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
)

// Params looks up request parameters by name. An absent parameter reads
// as "". url.Values satisfies it.
type Params interface {
	Get(key string) string
}

// MapParams adapts a plain string map to Params.
type MapParams map[string]string

// Get returns m[key].
func (m MapParams) Get(key string) string { return m[key] }

func get(p Params, key, def string) string {
	if v := p.Get(key); v != "" {
		return v
	}
	return def
}

// Action is a command ready to send plus the values worth echoing back to
// the caller.
type Action struct {
	Kind    string
	Command alpha.Command
	Read    bool
	Detail  map[string]any
}

type builder func(p Params, now time.Time) (Action, error)

var builders = map[string]builder{
	KindMessage:       buildMessage,
	KindSetTime:       buildSetTime,
	KindSetDate:       buildSetDate,
	KindSound:         buildSound,
	KindReset:         buildReset,
	KindConfigMemory:  buildConfigureMemory,
	KindReadMemory:    buildReadMemory,
	KindReadErrors:    buildReadErrors,
	KindTone:          buildTone,
	KindRunTime:       buildRunTime,
	KindDisplayXY:     buildDisplayXY,
	KindDimmingReg:    buildDimmingRegister,
	KindDimmingTime:   buildDimmingTime,
	KindClearText:     buildClearText,
	KindWriteString:   buildWriteString,
	KindRunSequence:   buildRunSequence,
	KindSerialAddress: buildSerialAddress,
}

// ActionNames returns every name Build accepts, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build turns a named command and its parameters into an Action.
// Parameter names and defaults follow the HTTP query interface.
func Build(name string, p Params, now time.Time) (Action, error) {
	b, ok := builders[name]
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown command %q", ErrInvalidParameter, name)
	}
	if p == nil {
		p = MapParams{}
	}
	a, err := b(p, now)
	if err != nil {
		return Action{}, err
	}
	a.Kind = name
	a.Read = a.Command.IsRead()
	return a, nil
}

// MessageFromParams reads msg (or text), color, effect, speed, font, line,
// beep and label, filling in the defaults.
func MessageFromParams(p Params) Message {
	m := NewMessage(get(p, "msg", p.Get("text")))
	m.Color = get(p, "color", m.Color)
	m.Effect = get(p, "effect", m.Effect)
	m.Speed = get(p, "speed", m.Speed)
	m.Font = get(p, "font", m.Font)
	m.Line = get(p, "line", m.Line)
	m.Beep = get(p, "beep", m.Beep)
	m.Label = get(p, "label", m.Label)
	return m
}

func buildMessage(p Params, _ time.Time) (Action, error) {
	m := MessageFromParams(p)
	if m.Text == "" {
		return Action{}, ErrEmptyMessage
	}
	tagged, _ := Compose(m)
	return Action{
		Command: Encode(m),
		Detail:  map[string]any{"original": m.Text, "processed": tagged},
	}, nil
}

func buildSetTime(p Params, now time.Time) (Action, error) {
	t, err := ParseClock(p.Get("time"), now)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Command: alpha.SetTime(t),
		Detail:  map[string]any{"time": t.Format("15:04")},
	}, nil
}

func buildSetDate(p Params, now time.Time) (Action, error) {
	t, err := ParseDate(p.Get("date"), now)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Command: alpha.SetDate(t),
		Detail:  map[string]any{"date": t.Format("01/02/06")},
	}, nil
}

func buildSound(p Params, _ time.Time) (Action, error) {
	on := ParseBool(get(p, "on", "false"))
	return Action{
		Command: alpha.SetSound(on),
		Detail:  map[string]any{"sound_on": on},
	}, nil
}

func buildReset(Params, time.Time) (Action, error) {
	return Action{Command: alpha.SoftReset()}, nil
}

func buildConfigureMemory(Params, time.Time) (Action, error) {
	return Action{
		Command: alpha.SetMemoryMap(),
		Detail:  map[string]any{"action": "configure"},
	}, nil
}

func buildReadMemory(Params, time.Time) (Action, error) {
	return Action{
		Command: alpha.ReadMemorySize(),
		Detail:  map[string]any{"action": "info"},
	}, nil
}

func buildReadErrors(Params, time.Time) (Action, error) {
	return Action{Command: alpha.ReadErrorRegister()}, nil
}

func buildTone(p Params, _ time.Time) (Action, error) {
	name := get(p, "type", "beep")
	tone, ok := alpha.ParseToneType(name)
	if !ok {
		name, tone = "beep", alpha.ToneBeep
	}
	freq, err := ParseInt("freq", p.Get("freq"), 0)
	if err != nil {
		return Action{}, err
	}
	duration, err := ParseInt("duration", p.Get("duration"), 5)
	if err != nil {
		return Action{}, err
	}
	repeat, err := ParseInt("repeat", p.Get("repeat"), 0)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Command: alpha.GenerateTone(tone, freq, duration, repeat),
		Detail: map[string]any{
			"tone_type": name,
			"frequency": freq,
			"duration":  duration,
			"repeat":    repeat,
		},
	}, nil
}

func buildRunTime(p Params, _ time.Time) (Action, error) {
	label := get(p, "label", DefaultLabel)
	start := get(p, "start", "00:00")
	stop := get(p, "stop", "23:59")
	return Action{
		Command: alpha.SetRunTimeTable(label, StripColons(start), StripColons(stop)),
		Detail:  map[string]any{"label": label, "start": start, "stop": stop},
	}, nil
}

func buildDisplayXY(p Params, _ time.Time) (Action, error) {
	enabled := ParseBool(get(p, "enabled", "true"))
	x, err := ParseInt("x", p.Get("x"), 0)
	if err != nil {
		return Action{}, err
	}
	y, err := ParseInt("y", p.Get("y"), 0)
	if err != nil {
		return Action{}, err
	}
	text := p.Get("text")
	return Action{
		Command: alpha.DisplayAtXY(enabled, x, y, text),
		Detail:  map[string]any{"enabled": enabled, "x": x, "y": y, "text": text},
	}, nil
}

func buildDimmingRegister(p Params, _ time.Time) (Action, error) {
	dim, err := ParseInt("dim", p.Get("dim"), 0)
	if err != nil {
		return Action{}, err
	}
	brightness, err := ParseInt("brightness", p.Get("brightness"), 100)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Command: alpha.SetDimmingRegister(dim, brightness),
		Detail:  map[string]any{"dim": dim, "brightness": brightness},
	}, nil
}

func buildDimmingTime(p Params, _ time.Time) (Action, error) {
	start, err := ParseInt("start", p.Get("start"), 0)
	if err != nil {
		return Action{}, err
	}
	stop, err := ParseInt("stop", p.Get("stop"), 23)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Command: alpha.SetDimmingTime(start, stop),
		Detail:  map[string]any{"start": start, "stop": stop},
	}, nil
}

func buildClearText(p Params, _ time.Time) (Action, error) {
	label := get(p, "label", DefaultLabel)
	return Action{
		Command: alpha.ClearText(label),
		Detail:  map[string]any{"label": label},
	}, nil
}

func buildWriteString(p Params, _ time.Time) (Action, error) {
	label := get(p, "label", "1")
	text := p.Get("text")
	return Action{
		Command: alpha.WriteString(label, text),
		Detail:  map[string]any{"label": label, "text": text},
	}, nil
}

func buildRunSequence(p Params, _ time.Time) (Action, error) {
	labels := get(p, "labels", DefaultLabel)
	if strings.ContainsAny(labels, " ,") {
		return Action{}, fmt.Errorf("%w: labels %q must be contiguous", ErrInvalidParameter, labels)
	}
	return Action{
		Command: alpha.SetRunSequence(labels),
		Detail:  map[string]any{"labels": labels},
	}, nil
}

func buildSerialAddress(p Params, _ time.Time) (Action, error) {
	addr := p.Get("address")
	if len(addr) != 2 {
		return Action{}, fmt.Errorf("%w: address %q must be two characters", ErrInvalidParameter, addr)
	}
	return Action{
		Command: alpha.SetSerialAddress(addr),
		Detail:  map[string]any{"address": addr},
	}, nil
}

// Result returns a copy of Detail with the sign's reply added under
// reply, reply_hex and reply_type. A nil reply adds nothing.
func (a Action) Result(reply *alpha.Packet) map[string]any {
	out := make(map[string]any, len(a.Detail)+3)
	for k, v := range a.Detail {
		out[k] = v
	}
	if reply == nil {
		return out
	}
	out["reply"] = string(reply.Payload)
	out["reply_hex"] = hex.EncodeToString(reply.Payload)
	out["reply_type"] = string(reply.Type)
	return out
}
