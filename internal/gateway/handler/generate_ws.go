package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/orchestrator"
	"sajtmaskin/internal/stream"
)

const generateWSWriteWait = 10 * time.Second

// generateWSPongWait is a variable so tests can shrink the keepalive window.
var generateWSPongWait = 60 * time.Second

var generateWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type generateWSInbound struct {
	Type      string                      `json:"type"`
	Prompt    string                      `json:"prompt,omitempty"`
	ChatID    string                      `json:"chatId,omitempty"`
	ProjectID string                      `json:"projectId,omitempty"`
	Files     []contextgather.ProjectFile `json:"files,omitempty"`
}

type generateWSOutbound struct {
	Type string `json:"type"`

	Text      string `json:"text,omitempty"`
	Parts     []any  `json:"parts,omitempty"`
	ChatID    string `json:"chatId,omitempty"`
	VersionID string `json:"versionId,omitempty"`
	DemoURL   string `json:"demoUrl,omitempty"`

	Result  *generateResponse `json:"result,omitempty"`
	Message string            `json:"message,omitempty"`
}

// HandleGenerateWS runs the pipeline with streamed generation output. The
// client sends one {"type":"generate",...} message and receives decoded
// stream events as they arrive, ending with a "result" message.
func (h *Handler) HandleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := generateWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(generateWSPongWait))
	})

	writeCh := make(chan generateWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(generateWSPongWait * 9 / 10)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(generateWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(generateWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	// Single finalization path: every return below cancels the context and
	// waits the writer out, whether the run completed or the client is gone.
	finish := func() {
		cancel()
		<-writerDone
	}

	for {
		// Re-arm the deadline on every iteration. Pongs extend it only while
		// a read is in progress, and a generation can run well past it.
		if err := conn.SetReadDeadline(time.Now().Add(generateWSPongWait)); err != nil {
			log.Printf("generate ws set read deadline failed: %v", err)
			finish()
			return
		}
		var in generateWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			finish()
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushGenerateWS(writeCh, generateWSOutbound{Type: "pong"})
		case "generate":
			if strings.TrimSpace(in.Prompt) == "" {
				pushGenerateWS(writeCh, generateWSOutbound{Type: "error", Message: "prompt is required"})
				continue
			}
			res, err := h.pipeline.Stream(ctx, orchestrator.Request{
				Prompt:    in.Prompt,
				ChatID:    in.ChatID,
				ProjectID: in.ProjectID,
				Owner:     owner(r),
				Model:     h.model,
				Files:     in.Files,
			}, h.platform, func(ev stream.Event) {
				pushGenerateWS(writeCh, toGenerateWSEvent(ev))
			})
			if err != nil {
				pushGenerateWS(writeCh, generateWSOutbound{Type: "error", Message: err.Error()})
				continue
			}
			resp := toGenerateResponse(res)
			pushGenerateWS(writeCh, generateWSOutbound{Type: "result", Result: &resp})
		default:
			pushGenerateWS(writeCh, generateWSOutbound{Type: "error", Message: "unsupported type"})
		}
	}
}

func toGenerateWSEvent(ev stream.Event) generateWSOutbound {
	return generateWSOutbound{
		Type:      string(ev.Type),
		Text:      ev.Text,
		Parts:     ev.Parts,
		ChatID:    ev.ChatID,
		VersionID: ev.VersionID,
		DemoURL:   ev.DemoURL,
		Message:   ev.Message,
	}
}

func pushGenerateWS(writeCh chan generateWSOutbound, out generateWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	// Channel full: drop the oldest queued message rather than blocking the
	// pipeline on a slow client.
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
