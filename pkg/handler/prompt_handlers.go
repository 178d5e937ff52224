// Prompt registry API handlers
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnemon/mnemon/pkg/service"
)

// PromptHandler exposes the named system prompt registry.
type PromptHandler struct {
	prompts *service.PromptService
}

func NewPromptHandler(prompts *service.PromptService) *PromptHandler {
	return &PromptHandler{prompts: prompts}
}

func (h *PromptHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/prompt/set", h.Set)
	r.POST("/prompt/create", h.Create)
	r.POST("/prompt/delete", h.Delete)
	r.GET("/prompt/get", h.Get)
	r.POST("/prompt/get", h.Get)
	r.GET("/prompt/list", h.List)
}

type promptRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// Set creates or overwrites a prompt
// POST /v1/prompt/set
func (h *PromptHandler) Set(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.Name == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	if err := h.prompts.Set(req.Name, req.Prompt); err != nil {
		Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, gin.H{"name": req.Name})
}

// Create registers a prompt that must not already exist
// POST /v1/prompt/create
func (h *PromptHandler) Create(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.Name == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	if _, err := h.prompts.Get(req.Name); err == nil {
		Fail(c, http.StatusConflict, "Prompt already exists")
		return
	}
	if err := h.prompts.Set(req.Name, req.Prompt); err != nil {
		Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, gin.H{"name": req.Name})
}

// Delete removes a prompt; the common prompt is protected
// POST /v1/prompt/delete
func (h *PromptHandler) Delete(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.Name == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	if err := h.prompts.Delete(req.Name); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	Success(c, gin.H{"name": req.Name})
}

// Get returns one prompt by name
// GET|POST /v1/prompt/get
func (h *PromptHandler) Get(c *gin.Context) {
	name := c.Query("name")
	if name == "" && c.Request.Method == http.MethodPost {
		var req promptRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			name = req.Name
		}
	}
	if name == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	prompt, err := h.prompts.Get(name)
	if err != nil {
		Fail(c, http.StatusNotFound, err.Error())
		return
	}
	Success(c, prompt)
}

// List returns every registered prompt
// GET /v1/prompt/list
func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.prompts.List()
	if err != nil {
		Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, prompts)
}
