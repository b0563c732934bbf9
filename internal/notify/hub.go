// Package notify reparte eventos de favoritos a los websockets abiertos
// de cada usuario (varias pestañas del mismo usuario quedan sincronizadas).
package notify

import (
	"sync"
	"time"
)

// buffer por suscriptor; si se llena el evento se descarta
const subscriberBuffer = 8

type FavoritesEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Op        string    `json:"op"`
	MovieID   string    `json:"movieId"`
	Favorites []string  `json:"favorites"`
	At        time.Time `json:"at"`
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan FavoritesEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan FavoritesEvent]struct{})}
}

// Subscribe registra un canal para userID. cancel lo quita y lo cierra.
func (h *Hub) Subscribe(userID string) (<-chan FavoritesEvent, func()) {
	ch := make(chan FavoritesEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan FavoritesEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish nunca bloquea: un suscriptor lento pierde el evento.
func (h *Hub) Publish(ev FavoritesEvent) {
	if h == nil {
		return
	}
	if ev.Type == "" {
		ev.Type = "favorites"
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers cuenta las conexiones abiertas de un usuario.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
