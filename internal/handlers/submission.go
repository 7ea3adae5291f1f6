package handlers

import (
	"net/http"

	"github.com/dhanavadh/formbuilder-backend/internal/derivation"
	gormmodels "github.com/dhanavadh/formbuilder-backend/internal/models/gorm"
	"github.com/dhanavadh/formbuilder-backend/internal/services"
	"github.com/dhanavadh/formbuilder-backend/internal/store"
	"github.com/dhanavadh/formbuilder-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmissionHandler stores responses submitted against a saved form. Values
// are checked against the form's compiled validation contracts and derived
// values are computed server-side before anything is written.
type SubmissionHandler struct {
	submissionService *services.SubmissionService
	formStore         *store.FormStore
}

func NewSubmissionHandler(submissionService *services.SubmissionService, formStore *store.FormStore) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		formStore:         formStore,
	}
}

type SubmitFormRequest struct {
	Values map[string]any `json:"values" binding:"required"`
}

func (h *SubmissionHandler) Submit(c *gin.Context) {
	formID := c.Param("id")

	var req SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	form, ok := h.formStore.FindSavedForm(formID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return
	}

	derived := derivation.EvaluateAll(form.Fields, req.Values)
	merged := make(map[string]any, len(req.Values)+len(derived))
	for id, v := range req.Values {
		merged[id] = v
	}
	for id, v := range derived {
		merged[id] = v
	}

	if failures := validation.CheckAll(form.Fields, merged); len(failures) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": failures})
		return
	}

	submission := &gormmodels.FormSubmission{
		ID:      uuid.New().String(),
		FormID:  formID,
		Values:  req.Values,
		Derived: derived,
		Status:  "submitted",
	}

	if err := h.submissionService.Create(submission); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save form submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      submission.ID,
		"message": "Form submitted successfully",
		"derived": derived,
	})
}

func (h *SubmissionHandler) GetByID(c *gin.Context) {
	submission, err := h.submissionService.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch form submission"})
		return
	}

	if submission == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form submission not found"})
		return
	}

	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) GetByFormID(c *gin.Context) {
	submissions, err := h.submissionService.GetByFormID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch form submissions"})
		return
	}

	c.JSON(http.StatusOK, submissions)
}

func (h *SubmissionHandler) Delete(c *gin.Context) {
	if err := h.submissionService.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete form submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Form submission deleted successfully"})
}
