package ws

import (
	"encoding/json"
	"time"
)

type JobsUpdatedEvent struct {
	Type      string  `json:"type"`
	Action    string  `json:"action"`
	IDs       []int64 `json:"ids,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// Publisher turns job changes into jobs_updated broadcasts.
type Publisher struct {
	hub *Hub
	now func() time.Time
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub, now: time.Now}
}

func (p *Publisher) PublishJobsUpdated(action string, ids []int64) {
	if p == nil || p.hub == nil {
		return
	}

	evt := JobsUpdatedEvent{
		Type:      "jobs_updated",
		Action:    action,
		IDs:       ids,
		Timestamp: p.now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	p.hub.Broadcast(b)
}
