package handler

import (
	"net/http"
	"strconv"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

// CompositeHandler exposes the assembly graph: hierarchy relations, direct
// component links, batch operations and the configuration validation pass.
type CompositeHandler struct{ svc service.CompositeService }

func NewCompositeHandler(svc service.CompositeService) *CompositeHandler {
	return &CompositeHandler{svc: svc}
}

func relationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid relation id"})
		return 0, false
	}
	return id, true
}

func (h *CompositeHandler) CreateRelation(c *gin.Context) {
	var req dto.CreateRelationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRelation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CompositeHandler) GetRelation(c *gin.Context) {
	id, ok := relationID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetRelation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositeHandler) ListByProduct(c *gin.Context) {
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	resp, err := h.svc.ListRelationsByProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositeHandler) Search(c *gin.Context) {
	var filter dto.RelationFilter
	if !bindQuery(c, &filter) {
		return
	}
	data, total, err := h.svc.SearchRelations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func (h *CompositeHandler) UpdateRelation(c *gin.Context) {
	id, ok := relationID(c)
	if !ok {
		return
	}
	var req dto.UpdateRelationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRelation(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositeHandler) DeleteRelation(c *gin.Context) {
	id, ok := relationID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteRelation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompositeHandler) NextAssemblyOrder(c *gin.Context) {
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	next, err := h.svc.NextAssemblyOrder(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_assembly_order": next})
}

func (h *CompositeHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchCreateRelationsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRelationsBatch(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CompositeHandler) UpdateStatusBatch(c *gin.Context) {
	var req dto.BatchUpdateStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateRelationStatusBatch(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompositeHandler) DeleteBatch(c *gin.Context) {
	var req dto.BatchDeleteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.DeleteRelationsBatch(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompositeHandler) DuplicateConfiguration(c *gin.Context) {
	var req dto.DuplicateConfigurationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DuplicateConfiguration(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CompositeHandler) AddComponentLink(c *gin.Context) {
	var req dto.CreateComponentLinkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddComponentLink(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CompositeHandler) ListComponentLinks(c *gin.Context) {
	compositeID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	resp, err := h.svc.ListComponentLinks(c.Request.Context(), compositeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositeHandler) RemoveComponentLink(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveComponentLink(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompositeHandler) ValidateConfiguration(c *gin.Context) {
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	report, err := h.svc.ValidateHierarchyConfiguration(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
