// Model endpoint registry API handlers
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnemon/mnemon/pkg/models"
	"github.com/mnemon/mnemon/pkg/service"
)

// ProviderHandler exposes the upstream model endpoint registry. API keys in
// responses are always masked.
type ProviderHandler struct {
	providers *service.ProviderService
}

func NewProviderHandler(providers *service.ProviderService) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

func (h *ProviderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ai/list", h.List)
	r.GET("/ai/get", h.Get)
	r.POST("/ai/set", h.Set)
	r.POST("/ai/delete", h.Delete)
}

// List returns every registered endpoint
// GET /v1/ai/list
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.providers.List()
	if err != nil {
		Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	Success(c, providers)
}

// Get returns one endpoint by id
// GET /v1/ai/get?id=...
func (h *ProviderHandler) Get(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	cfg, err := h.providers.Get(id)
	if err != nil {
		Fail(c, http.StatusNotFound, err.Error())
		return
	}
	Success(c, cfg)
}

type providerSetRequest struct {
	ID string `json:"id"`
	models.ProviderConfig
}

// Set creates or replaces an endpoint; an empty id registers a new one
// POST /v1/ai/set
func (h *ProviderHandler) Set(c *gin.Context) {
	var req providerSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	id, err := h.providers.Set(req.ID, req.ProviderConfig)
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	Success(c, gin.H{"id": id})
}

// Delete removes an endpoint
// POST /v1/ai/delete
func (h *ProviderHandler) Delete(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusUnprocessableEntity, "")
		return
	}
	if req.ID == "" {
		Fail(c, http.StatusBadRequest, "")
		return
	}
	if err := h.providers.Delete(req.ID); err != nil {
		Fail(c, http.StatusNotFound, err.Error())
		return
	}
	Success(c, gin.H{"id": req.ID})
}
