package handlers

import (
	"net/http"

	"github.com/dhanavadh/formbuilder-backend/internal/models"
	"github.com/dhanavadh/formbuilder-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// BuilderHandler exposes the live form store to the builder UI.
type BuilderHandler struct {
	formStore *store.FormStore
}

func NewBuilderHandler(formStore *store.FormStore) *BuilderHandler {
	return &BuilderHandler{
		formStore: formStore,
	}
}

type UpdateTitleRequest struct {
	Title string `json:"title"`
}

type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type SelectFieldRequest struct {
	FieldID *string `json:"fieldId"`
}

func (h *BuilderHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.formStore.Snapshot())
}

func (h *BuilderHandler) SetTitle(c *gin.Context) {
	var req UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.formStore.SetTitle(req.Title)
	c.JSON(http.StatusOK, gin.H{"title": req.Title})
}

func (h *BuilderHandler) SetDescription(c *gin.Context) {
	var req UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.formStore.SetDescription(req.Description)
	c.JSON(http.StatusOK, gin.H{"description": req.Description})
}

func (h *BuilderHandler) AddField(c *gin.Context) {
	var req models.Field
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	field, err := h.formStore.AddField(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, field)
}

func (h *BuilderHandler) UpdateField(c *gin.Context) {
	fieldID := c.Param("id")

	var req store.FieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	field, err := h.formStore.UpdateField(fieldID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if field == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Field not found"})
		return
	}

	c.JSON(http.StatusOK, field)
}

func (h *BuilderHandler) DeleteField(c *gin.Context) {
	h.formStore.DeleteField(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Field deleted successfully"})
}

func (h *BuilderHandler) DuplicateField(c *gin.Context) {
	field, err := h.formStore.DuplicateField(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if field == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Field not found"})
		return
	}

	c.JSON(http.StatusCreated, field)
}

func (h *BuilderHandler) ReorderFields(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.formStore.ReorderFields(req.IDs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": h.formStore.Fields()})
}

func (h *BuilderHandler) SetSelectedField(c *gin.Context) {
	var req SelectFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	selected := ""
	if req.FieldID != nil {
		selected = *req.FieldID
	}
	h.formStore.SetSelectedField(selected)
	c.JSON(http.StatusOK, gin.H{"selectedFieldId": req.FieldID})
}

func (h *BuilderHandler) SaveForm(c *gin.Context) {
	form, err := h.formStore.SaveForm()
	if err != nil {
		// The in-memory collection is already updated; only persistence
		// failed.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist form", "form": form})
		return
	}

	c.JSON(http.StatusOK, form)
}

func (h *BuilderHandler) NewForm(c *gin.Context) {
	h.formStore.NewForm()
	c.JSON(http.StatusOK, h.formStore.Snapshot())
}
