package handler

import (
	"net/http"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type DemandsHandler struct{ svc service.DemandService }

func NewDemandsHandler(svc service.DemandService) *DemandsHandler {
	return &DemandsHandler{svc: svc}
}

func (h *DemandsHandler) Create(c *gin.Context) {
	var req dto.CreateDemandRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DemandsHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DemandsHandler) List(c *gin.Context) {
	var filter dto.DemandFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// transition writes 200 with Allowed=true/false; guard refusals are not errors.
func (h *DemandsHandler) transition(c *gin.Context, fn func() (*dto.TransitionResponse, error)) {
	resp, err := fn()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DemandsHandler) Confirm(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Confirm(c.Request.Context(), id)
	})
}

func (h *DemandsHandler) MarkAsProduced(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.MarkAsProduced(c.Request.Context(), id)
	})
}

func (h *DemandsHandler) MarkAsEnding(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.MarkAsEnding(c.Request.Context(), id)
	})
}

func (h *DemandsHandler) MarkAsDelivered(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.MarkAsDelivered(c.Request.Context(), id)
	})
}

func (h *DemandsHandler) AttachProductionOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AttachProductionOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AttachProductionOrder(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DemandsHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DemandsHandler) ListOverdue(c *gin.Context) {
	resp, err := h.svc.ListOverdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DemandsHandler) ListDueSoon(c *gin.Context) {
	window := 48 * time.Hour
	if hours := c.Query("hours"); hours != "" {
		if d, err := time.ParseDuration(hours + "h"); err == nil {
			window = d
		}
	}
	resp, err := h.svc.ListDueSoon(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
