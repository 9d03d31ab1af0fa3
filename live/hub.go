// Package live đẩy sự kiện "có phản hồi mới" tới các dashboard đang mở.
package live

import (
	"sync"
	"time"
)

const (
	subscriberBuffer = 16

	EventResponse = "response"
)

type Event struct {
	Type       string    `json:"type"`
	FormID     string    `json:"form_id"`
	ResponseID string    `json:"response_id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

type subscriber struct {
	send chan Event
}

// Hub quản lý tập subscriber theo từng form.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe trả về kênh nhận sự kiện của formID và hàm huỷ đăng ký.
func (h *Hub) Subscribe(formID string) (<-chan Event, func()) {
	s := &subscriber{send: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[formID] == nil {
		h.subs[formID] = make(map[*subscriber]struct{})
	}
	h.subs[formID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[formID], s)
			if len(h.subs[formID]) == 0 {
				delete(h.subs, formID)
			}
			h.mu.Unlock()
			close(s.send)
		})
	}
	return s.send, cancel
}

// Publish gửi không chặn; subscriber đầy buffer sẽ bị bỏ qua sự kiện này.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[e.FormID] {
		select {
		case s.send <- e:
		default:
		}
	}
}

func (h *Hub) Subscribers(formID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[formID])
}
