// Conversation and chat API handlers
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnemon/mnemon/pkg/history"
	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/service"
)

// ChatHandler exposes conversation lifecycle and the live chat turn.
type ChatHandler struct {
	store *history.Store
	chat  *service.ChatService
}

func NewChatHandler(store *history.Store, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{store: store, chat: chat}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/create", h.Create)
	r.POST("/delete", h.Delete)
	r.POST("/chat/send", h.Send)
	r.GET("/chat/list", h.List)
	r.GET("/history/get", h.History)
	r.POST("/history/get", h.History)
	r.GET("/history/memory", h.Memory)
}

// Create registers a new conversation
// POST /v1/create
func (h *ChatHandler) Create(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.Name == "" || req.AI == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	id, err := h.store.Create(req.Name, req.Prompt, req.AI, req.Device)
	if err != nil {
		Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, gin.H{"conversation": id})
}

// Delete removes a conversation and all its tiers
// POST /v1/delete
func (h *ChatHandler) Delete(c *gin.Context) {
	var req struct {
		Conversation string `json:"conversation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.Conversation == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	if err := h.store.Delete(req.Conversation); err != nil {
		h.failStore(c, err)
		return
	}
	Success(c, gin.H{"conversation": req.Conversation})
}

// Send runs one chat turn
// POST /v1/chat/send
func (h *ChatHandler) Send(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.Conversation == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	reply, err := h.chat.ProcessMessage(c.Request.Context(), req)
	if err != nil {
		h.failStore(c, err)
		return
	}
	Success(c, reply)
}

// List returns conversation metadata, optionally filtered by device
// GET /v1/chat/list?device=...
func (h *ChatHandler) List(c *gin.Context) {
	Success(c, h.store.List(c.Query("device")))
}

// History returns the active tier of a conversation
// GET|POST /v1/history/get
func (h *ChatHandler) History(c *gin.Context) {
	id := c.Query("conversation")
	if id == "" && c.Request.Method == http.MethodPost {
		var req struct {
			Conversation string `json:"conversation"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			id = req.Conversation
		}
	}
	if id == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	active, err := h.store.GetActive(id)
	if err != nil {
		h.failStore(c, err)
		return
	}
	Success(c, active)
}

// Memory returns the summary tier of a conversation
// GET /v1/history/memory?conversation=...
func (h *ChatHandler) Memory(c *gin.Context) {
	id := c.Query("conversation")
	if id == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	snap, err := h.store.GetContext(id)
	if err != nil {
		h.failStore(c, err)
		return
	}
	Success(c, snap.Memory)
}

func (h *ChatHandler) failStore(c *gin.Context, err error) {
	if errors.Is(err, history.ErrNotFound) {
		Fail(c, http.StatusNotFound, "Conversation does not exist")
		return
	}
	Fail(c, http.StatusInternalServerError, err.Error())
}
