package stream

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(d *Decoder, s string) []Event {
	return d.Feed([]byte(s))
}

func TestDecodeBasicFrames(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d,
		"event: chatId\ndata: {\"chatId\":\"c_123\"}\n\n"+
			"event: thinking\ndata: {\"thinking\":\"planerar layouten\"}\n\n"+
			"event: content\ndata: {\"content\":\"<header>\"}\n\n")

	require.Len(t, events, 3)
	require.Equal(t, EventChatID, events[0].Type)
	require.Equal(t, "c_123", events[0].ChatID)
	require.Equal(t, EventThinking, events[1].Type)
	require.Equal(t, "planerar layouten", events[1].Text)
	require.Equal(t, EventContent, events[2].Type)
}

func TestDecodeAcrossChunkBoundaries(t *testing.T) {
	d := NewDecoder(0)
	var events []Event
	full := "event: content\ndata: {\"content\":\"hello\"}\n\nevent: content\ndata: {\"content\":\"world\"}\n\n"
	// One byte at a time: the frame must only complete at its boundary.
	for i := 0; i < len(full); i++ {
		events = append(events, d.Feed([]byte{full[i]})...)
	}
	require.Len(t, events, 2)
	require.Equal(t, "hello", events[0].Text)
	require.Equal(t, "world", events[1].Text)
}

func TestInvalidJSONFallsBackToRawText(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d, "event: content\ndata: not {json at all\n\n")
	require.Len(t, events, 1)
	require.Equal(t, EventContent, events[0].Type)
	require.Equal(t, "not {json at all", events[0].Text)
}

func TestPingCarriesNothing(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d, "event: ping\ndata: {}\n\n")
	require.Len(t, events, 1)
	require.Equal(t, EventPing, events[0].Type)
	require.Empty(t, events[0].Text)
}

func TestLatchingLastSeenWins(t *testing.T) {
	d := NewDecoder(0)
	feedAll(d, "event: meta\ndata: {\"chatId\":\"c_1\",\"versionId\":\"v_1\"}\n\n")
	events := feedAll(d,
		"event: meta\ndata: {\"versionId\":\"v_2\"}\n\n"+
			"event: done\ndata: {\"demoUrl\":\"https://demo.v0.dev/x\"}\n\n")

	var done *Event
	for i := range events {
		if events[i].Type == EventDone {
			done = &events[i]
		}
	}
	require.NotNil(t, done)
	require.Equal(t, "c_1", done.ChatID)
	require.Equal(t, "v_2", done.VersionID)
	require.Equal(t, "https://demo.v0.dev/x", done.DemoURL)
}

func TestTerminalOnFirstDemoURL(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d, "event: meta\ndata: {\"demoUrl\":\"https://demo.v0.dev/a\"}\n\n")
	require.Len(t, events, 1)
	require.Equal(t, EventDone, events[0].Type)

	// A later completion frame must not produce a second terminal.
	events = feedAll(d, "event: done\ndata: {\"demoUrl\":\"https://demo.v0.dev/a\",\"versionId\":\"v\"}\n\n")
	for _, e := range events {
		require.NotEqual(t, EventDone, e.Type)
	}
	_, ok := d.Finalize()
	require.False(t, ok)
}

func TestFinalizeEmitsTerminalOnce(t *testing.T) {
	d := NewDecoder(0)
	feedAll(d, "event: chatId\ndata: {\"chatId\":\"c_9\"}\n\n")

	ev, ok := d.Finalize()
	require.True(t, ok)
	require.Equal(t, EventDone, ev.Type)
	require.Equal(t, "c_9", ev.ChatID)

	_, ok = d.Finalize()
	require.False(t, ok)
}

func TestBufferCapHolds(t *testing.T) {
	const bufCap = 256
	d := NewDecoder(bufCap)

	// A single frame far larger than the cap, fed in pieces.
	huge := "event: content\ndata: {\"content\":\"" + strings.Repeat("x", 4*bufCap) + "\"}\n\n"
	for i := 0; i < len(huge); i += 64 {
		end := i + 64
		if end > len(huge) {
			end = len(huge)
		}
		d.Feed([]byte(huge[i:end]))
		require.LessOrEqual(t, d.buf.Len(), bufCap)
	}

	// The stream stays alive: the next well-formed frame decodes.
	events := feedAll(d, "event: content\ndata: {\"content\":\"after overflow\"}\n\n")
	require.Len(t, events, 1)
	require.Equal(t, "after overflow", events[0].Text)
}

func TestOverflowRecoveryAcrossChunkBoundaries(t *testing.T) {
	const bufCap = 64
	d := NewDecoder(bufCap)

	// Oversized frame followed by a good one, fed one byte at a time so the
	// frame separator never arrives whole in a single chunk.
	full := "event: content\ndata: {\"content\":\"" + strings.Repeat("x", 4*bufCap) + "\"}\n\n" +
		"event: content\ndata: {\"content\":\"after overflow\"}\n\n"
	var events []Event
	for i := 0; i < len(full); i++ {
		events = append(events, d.Feed([]byte{full[i]})...)
		require.LessOrEqual(t, d.buf.Len(), bufCap)
	}

	require.Len(t, events, 1)
	require.Equal(t, EventContent, events[0].Type)
	require.Equal(t, "after overflow", events[0].Text)
}

func TestBareDoneMarkerWithoutInfoIsNotTerminal(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d, "event: done\ndata: [DONE]\n\n")
	require.Empty(t, events)
	_, ok := d.Finalize()
	require.False(t, ok)
}

func TestBareDoneMarkerAfterVersionInfoIsTerminal(t *testing.T) {
	d := NewDecoder(0)
	feedAll(d, "event: meta\ndata: {\"chatId\":\"c_1\",\"versionId\":\"v_1\"}\n\n")
	events := feedAll(d, "event: done\ndata: [DONE]\n\n")
	require.Len(t, events, 1)
	require.Equal(t, EventDone, events[0].Type)
	require.Equal(t, "v_1", events[0].VersionID)
}

func TestErrorFrame(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d, "event: error\ndata: {\"message\":\"kvoten slut\"}\n\n")
	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Type)
	require.Equal(t, "kvoten slut", events[0].Message)
}

func TestBareDataLineDecodesAsContent(t *testing.T) {
	d := NewDecoder(0)
	events := feedAll(d, "data: plain text chunk\n\n")
	require.Len(t, events, 1)
	require.Equal(t, EventContent, events[0].Type)
	require.Equal(t, "plain text chunk", events[0].Text)
}

func TestChatIDEmittedOnce(t *testing.T) {
	d := NewDecoder(0)
	var events []Event
	for i := 0; i < 3; i++ {
		events = append(events, feedAll(d, fmt.Sprintf("event: meta\ndata: {\"chatId\":\"c_%d\"}\n\n", 7))...)
	}
	n := 0
	for _, e := range events {
		if e.Type == EventChatID {
			n++
		}
	}
	require.Equal(t, 1, n)
}
