package handler

import (
	"net/http"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductionOrdersHandler struct{ svc service.ProductionOrderService }

func NewProductionOrdersHandler(svc service.ProductionOrderService) *ProductionOrdersHandler {
	return &ProductionOrdersHandler{svc: svc}
}

func (h *ProductionOrdersHandler) Create(c *gin.Context) {
	var req dto.CreateProductionOrderRequest
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

func (h *ProductionOrdersHandler) GetByID(c *gin.Context) {
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

func (h *ProductionOrdersHandler) List(c *gin.Context) {
	var filter dto.ProductionOrderFilter
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

func (h *ProductionOrdersHandler) transition(c *gin.Context, fn func() (*dto.TransitionResponse, error)) {
	resp, err := fn()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionOrdersHandler) Schedule(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ScheduleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Schedule(c.Request.Context(), id, req)
	})
}

func (h *ProductionOrdersHandler) Start(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.StartRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Start(c.Request.Context(), id, req)
	})
}

func (h *ProductionOrdersHandler) Pause(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Pause(c.Request.Context(), id)
	})
}

func (h *ProductionOrdersHandler) Resume(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Resume(c.Request.Context(), id)
	})
}

func (h *ProductionOrdersHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CompleteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Complete(c.Request.Context(), id, req)
	})
}

func (h *ProductionOrdersHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Cancel(c.Request.Context(), id, req)
	})
}

func (h *ProductionOrdersHandler) Fail(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transition(c, func() (*dto.TransitionResponse, error) {
		return h.svc.Fail(c.Request.Context(), id, req)
	})
}

func (h *ProductionOrdersHandler) Delete(c *gin.Context) {
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

// EfficiencyReport expects from/to as RFC 3339 dates; defaults to the last 30 days.
func (h *ProductionOrdersHandler) EfficiencyReport(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		to = parsed
	}

	report, err := h.svc.EfficiencyReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ProductionOrdersHandler) ListOverdue(c *gin.Context) {
	resp, err := h.svc.ListOverdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductionOrdersHandler) ListDueSoon(c *gin.Context) {
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
