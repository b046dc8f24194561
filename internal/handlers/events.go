package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"transcription-studio/internal/jobs"
)

// watchInterval is how often a job snapshot is pushed to watchers
const watchInterval = 500 * time.Millisecond

// EventsHandler streams job progress over WebSocket
type EventsHandler struct {
	service *jobs.Service
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(service *jobs.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

// Watch pushes snapshots of one job until it reaches a terminal state.
// The connection closes after the final snapshot is delivered.
func (h *EventsHandler) Watch(c *websocket.Conn) {
	defer c.Close()

	id := c.Params("id")
	log.Printf("Watcher connected for job %s", id)

	// Reads are only needed to detect the peer going away.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var lastPayload []byte
	for {
		job, err := h.service.Get(id)
		if err != nil {
			c.WriteMessage(websocket.TextMessage, []byte(`{"error":"job not found"}`))
			return
		}

		payload, err := json.Marshal(job)
		if err != nil {
			log.Printf("Failed to encode job %s snapshot: %v", id, err)
			return
		}

		// Only push when something changed
		if string(payload) != string(lastPayload) {
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			lastPayload = payload
		}

		if job.Status.IsTerminal() {
			log.Printf("Watcher for job %s done (status: %s)", id, job.Status)
			return
		}

		select {
		case <-ticker.C:
		case <-disconnected:
			return
		}
	}
}
