package handlers

import (
	"errors"
	"net/http"

	"github.com/dhanavadh/formbuilder-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// FormsHandler manages the persisted SavedForm collection.
type FormsHandler struct {
	formStore *store.FormStore
}

func NewFormsHandler(formStore *store.FormStore) *FormsHandler {
	return &FormsHandler{
		formStore: formStore,
	}
}

func (h *FormsHandler) GetAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.formStore.Snapshot().SavedForms)
}

func (h *FormsHandler) GetByID(c *gin.Context) {
	form, ok := h.formStore.FindSavedForm(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return
	}

	c.JSON(http.StatusOK, form)
}

func (h *FormsHandler) Load(c *gin.Context) {
	if err := h.formStore.LoadForm(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrFormNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form"})
		return
	}

	c.JSON(http.StatusOK, h.formStore.Snapshot())
}

func (h *FormsHandler) Delete(c *gin.Context) {
	if err := h.formStore.DeleteForm(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist form deletion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Form deleted successfully"})
}
