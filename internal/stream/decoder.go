// Package stream decodes the generation backend's event stream
// incrementally. The wire format is a sequence of frames, each an
// "event: <name>" line followed by a "data: <json-or-string>" line and a
// blank line. The decoder is a plain state machine: Feed bytes in, get
// typed events out, no goroutines and no live connection required.
package stream

import (
	"bytes"
	"strings"

	"sajtmaskin/internal/util/jsonutil"
)

// DefaultMaxBuffer caps the growable frame buffer. On overflow the decoder
// drops from the front at a frame boundary and keeps going; it never aborts
// the stream.
const DefaultMaxBuffer = 64 * 1024

var frameSep = []byte("\n\n")

// Decoder turns a raw chunked byte stream into semantic events.
// Fields seen in any frame (chat id, version id, demo url) are latched
// last-seen-wins, because the source may repeat or omit them per frame.
// The zero value is not usable; call NewDecoder.
type Decoder struct {
	buf bytes.Buffer
	max int

	// skipToBoundary is set after an overflow: input is discarded until
	// the next frame boundary so a half frame is never parsed.
	skipToBoundary bool

	chatID     string
	versionID  string
	demoURL    string
	chatIDSent bool
	doneSent   bool
}

func NewDecoder(maxBuffer int) *Decoder {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Decoder{max: maxBuffer}
}

// Feed appends a chunk and returns every event completed by it, in arrival
// order. After Feed returns, the internal buffer never exceeds the
// configured maximum.
func (d *Decoder) Feed(chunk []byte) []Event {
	if len(chunk) == 0 {
		return nil
	}

	d.buf.Write(chunk)

	if d.skipToBoundary {
		i := bytes.Index(d.buf.Bytes(), frameSep)
		if i < 0 {
			// The separator may straddle chunks: keep the tail that could
			// still be its prefix and wait for more input.
			if d.buf.Len() > len(frameSep)-1 {
				d.buf.Next(d.buf.Len() - (len(frameSep) - 1))
			}
			return nil
		}
		d.buf.Next(i + len(frameSep))
		d.skipToBoundary = false
	}

	var events []Event
	for {
		raw := d.buf.Bytes()
		i := bytes.Index(raw, frameSep)
		if i < 0 {
			break
		}
		frame := make([]byte, i)
		copy(frame, raw[:i])
		d.buf.Next(i + len(frameSep))
		if evs := d.decodeFrame(frame); len(evs) > 0 {
			events = append(events, evs...)
		}
	}

	// Whatever is left is one partial frame. If it already exceeds the cap
	// it can never complete inside the buffer: drop it whole and discard
	// until the next boundary rather than truncating mid-frame. The last
	// byte stays so a separator split right here is still found.
	if d.buf.Len() > d.max {
		d.buf.Next(d.buf.Len() - (len(frameSep) - 1))
		d.skipToBoundary = true
	}

	return events
}

// Finalize flushes the decoder at source exhaustion. It returns the
// terminal event exactly once per stream lifetime; ok is false when the
// terminal was already emitted during Feed or nothing was ever decoded.
func (d *Decoder) Finalize() (Event, bool) {
	if d.doneSent {
		return Event{}, false
	}
	if d.chatID == "" && d.versionID == "" && d.demoURL == "" {
		return Event{}, false
	}
	return d.terminal(), true
}

func (d *Decoder) decodeFrame(frame []byte) []Event {
	name, data := splitFrame(frame)
	if name == "" && data == "" {
		return nil
	}

	switch name {
	case "ping":
		// Keepalive only; no semantic payload.
		return []Event{{Type: EventPing}}
	case "error":
		msg := data
		if m, ok := parseObject(data); ok {
			if s, found := extractString(m, "error", "message"); found {
				msg = s
			}
		}
		return []Event{{Type: EventError, Message: msg}}
	}

	m, isObj := parseObject(data)
	if !isObj {
		// Parse failure is non-fatal: the raw text is the payload.
		switch name {
		case "thinking":
			return []Event{{Type: EventThinking, Text: data}}
		case "content", "":
			if data == "" {
				return nil
			}
			return []Event{{Type: EventContent, Text: data}}
		case "chatId":
			d.chatID = data
			return d.chatIDEvent()
		case "done":
			// A bare completion marker like "[DONE]" identifies nothing by
			// itself; the terminal needs latched version or demo info.
			if d.versionID == "" && d.demoURL == "" {
				return nil
			}
			return d.completeNow()
		default:
			return nil
		}
	}

	var events []Event

	// Latch identifying fields from every object frame, whatever its name.
	if id, ok := extractChatID(m); ok {
		d.chatID = id
	}
	if v, ok := extractVersionID(m); ok {
		d.versionID = v
	}
	demoSeen := false
	if u, ok := extractDemoURL(m); ok {
		d.demoURL = u
		demoSeen = true
	}

	if !d.chatIDSent && d.chatID != "" {
		events = append(events, d.chatIDEvent()...)
	}
	if s, ok := extractThinking(m); ok {
		events = append(events, Event{Type: EventThinking, Text: s})
	}
	if s, ok := extractContent(m); ok {
		events = append(events, Event{Type: EventContent, Text: s})
	}
	if parts, ok := extractParts(m); ok {
		events = append(events, Event{Type: EventParts, Parts: parts})
	}

	// Terminal condition: an explicit completion frame carrying version or
	// demo info, or the first appearance of a demo URL anywhere.
	explicitDone := name == "done" && (d.versionID != "" || d.demoURL != "")
	if demoSeen || explicitDone {
		events = append(events, d.completeNow()...)
	}
	return events
}

func (d *Decoder) chatIDEvent() []Event {
	if d.chatIDSent || d.chatID == "" {
		return nil
	}
	d.chatIDSent = true
	return []Event{{Type: EventChatID, ChatID: d.chatID}}
}

func (d *Decoder) completeNow() []Event {
	if d.doneSent {
		return nil
	}
	return []Event{d.terminal()}
}

func (d *Decoder) terminal() Event {
	d.doneSent = true
	return Event{
		Type:      EventDone,
		ChatID:    d.chatID,
		VersionID: d.versionID,
		DemoURL:   d.demoURL,
	}
}

// splitFrame separates the event-name line from the data line. Frames with
// no "event:" line decode as unnamed content, matching sources that send
// bare data lines.
func splitFrame(frame []byte) (name, data string) {
	for _, line := range strings.Split(string(frame), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			chunk := strings.TrimPrefix(line, "data:")
			chunk = strings.TrimPrefix(chunk, " ")
			if data == "" {
				data = chunk
			} else {
				data += "\n" + chunk
			}
		}
	}
	return name, data
}

// parseObject decodes a data payload as a JSON object. Non-object JSON and
// invalid JSON both report ok=false; callers keep the raw string.
func parseObject(data string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(data)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var m map[string]any
	if err := jsonutil.UnmarshalFlex([]byte(trimmed), &m); err != nil {
		return nil, false
	}
	return m, true
}
