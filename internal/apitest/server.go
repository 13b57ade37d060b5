// Package apitest runs an in-memory implementation of the chat API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"pinned/internal/models"
)

const timeLayout = "2006-01-02T15:04:05.000000"

type chat struct {
	summary  models.ChatSummary
	messages []models.Message
}

// Server is a fake backend. Fields are guarded by mu; use the methods from tests.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	chats    map[string]*chat
	order    int
	calls    map[string]int
	failures map[string]int
	models   map[string]string
	reply    func(message string) string
	sendGate chan struct{}
	nextID   func() string
}

// New starts a server. Call Close when done.
func New() *Server {
	s := &Server{
		chats:    make(map[string]*chat),
		calls:    make(map[string]int),
		failures: make(map[string]int),
		models: map[string]string{
			"llama3-8b":    "llama3-8b-8192",
			"llama3-70b":   "llama3-70b-8192",
			"mixtral-8x7b": "mixtral-8x7b-32768",
		},
		reply: func(message string) string { return "echo: " + message },
	}
	s.nextID = func() string {
		s.order++
		return fmt.Sprintf("chat-%d", s.order)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/models", s.listModels)
	r.Get("/chats", s.listChats)
	r.Get("/chats/{id}", s.getChat)
	r.Put("/chats/{id}/title", s.renameChat)
	r.Delete("/chats/{id}", s.deleteChat)
	r.Post("/chat", s.send)
	return r
}

// Route keys used by Calls and FailNext
const (
	RouteHealth = "GET /health"
	RouteModels = "GET /models"
	RouteList   = "GET /chats"
	RouteGet    = "GET /chats/{id}"
	RouteRename = "PUT /chats/{id}/title"
	RouteDelete = "DELETE /chats/{id}"
	RouteSend   = "POST /chat"
)

// Calls returns how many requests hit a route
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// FailNext makes the next request to route answer with status
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// SetReply replaces the assistant reply generator
func (s *Server) SetReply(fn func(message string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = fn
}

// SetNextID replaces the chat id generator
func (s *Server) SetNextID(fn func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = fn
}

// HoldSends blocks POST /chat until the returned release func is called
func (s *Server) HoldSends() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.sendGate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.sendGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// AddChat seeds a chat and returns its summary
func (s *Server) AddChat(id, title, model string, msgs ...models.Message) models.ChatSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().Format(timeLayout)
	c := &chat{
		summary: models.ChatSummary{
			ID: id, Title: title, Model: model,
			CreatedAt: now, UpdatedAt: now, MessageCount: len(msgs),
		},
		messages: append([]models.Message(nil), msgs...),
	}
	s.chats[id] = c
	return c.summary
}

// Chat returns the stored detail of a chat
func (s *Server) Chat(id string) (models.ChatDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return models.ChatDetail{}, false
	}
	return detailOf(c), true
}

func detailOf(c *chat) models.ChatDetail {
	return models.ChatDetail{
		ID:        c.summary.ID,
		Title:     c.summary.Title,
		Model:     c.summary.Model,
		CreatedAt: c.summary.CreatedAt,
		UpdatedAt: c.summary.UpdatedAt,
		Messages:  append([]models.Message(nil), c.messages...),
	}
}

// injected records the call and writes an injected failure if one is queued
func (s *Server) injected(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	s.calls[route]++
	s.mu.Unlock()
	return s.fail(w, route)
}

func (s *Server) fail(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	status, ok := s.failures[route]
	delete(s.failures, route)
	s.mu.Unlock()
	if !ok {
		return false
	}
	writeJSON(w, status, map[string]string{"detail": "injected failure"})
	return true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteHealth) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "timestamp": time.Now().Format(timeLayout)})
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteModels) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"models": s.models})
}

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteList) {
		return
	}
	s.mu.Lock()
	out := make([]models.ChatSummary, 0, len(s.chats))
	for _, c := range s.chats {
		sum := c.summary
		sum.MessageCount = len(c.messages)
		out = append(out, sum)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getChat(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteGet) {
		return
	}
	id := chi.URLParam(r, "id")
	d, ok := s.Chat(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) renameChat(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteRename) {
		return
	}
	id := chi.URLParam(r, "id")
	title := r.URL.Query().Get("title")
	s.mu.Lock()
	c, ok := s.chats[id]
	if ok {
		c.summary.Title = title
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "title": title})
}

func (s *Server) deleteChat(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, RouteDelete) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.chats[id]
	delete(s.chats, id)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type sendBody struct {
	Message string  `json:"message"`
	ChatID  *string `json:"chat_id"`
	Model   string  `json:"model"`
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[RouteSend]++
	gate := s.sendGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if s.fail(w, RouteSend) {
		return
	}

	var body sendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().Format(timeLayout)
	var c *chat
	if body.ChatID == nil || *body.ChatID == "" {
		id := s.nextID()
		c = &chat{summary: models.ChatSummary{
			ID: id, Title: titleFor(body.Message), Model: s.modelID(body.Model),
			CreatedAt: now, UpdatedAt: now,
		}}
		s.chats[id] = c
	} else {
		var ok bool
		c, ok = s.chats[*body.ChatID]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Chat not found"})
			return
		}
	}
	reply := s.reply(body.Message)
	c.messages = append(c.messages,
		models.Message{Role: models.RoleUser, Content: body.Message},
		models.Message{Role: models.RoleAssistant, Content: reply})
	c.summary.UpdatedAt = now

	writeJSON(w, http.StatusOK, map[string]string{
		"chat_id":  c.summary.ID,
		"message":  body.Message,
		"response": reply,
	})
}

func (s *Server) modelID(alias string) string {
	if id, ok := s.models[alias]; ok {
		return id
	}
	return s.models["llama3-8b"]
}

func titleFor(message string) string {
	r := []rune(message)
	if len(r) > 30 {
		return string(r[:27]) + "..."
	}
	return message
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
