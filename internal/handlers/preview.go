package handlers

import (
	"net/http"

	"github.com/dhanavadh/formbuilder-backend/internal/derivation"
	"github.com/dhanavadh/formbuilder-backend/internal/store"
	"github.com/dhanavadh/formbuilder-backend/internal/validation"

	"github.com/gin-gonic/gin"
)

// PreviewHandler runs the validation contracts and derived-field evaluation
// the live preview calls on every value change.
type PreviewHandler struct {
	formStore *store.FormStore
}

func NewPreviewHandler(formStore *store.FormStore) *PreviewHandler {
	return &PreviewHandler{
		formStore: formStore,
	}
}

type PreviewCheckRequest struct {
	Values map[string]any `json:"values"`
}

type PreviewCheckResponse struct {
	Valid   bool              `json:"valid"`
	Errors  map[string]string `json:"errors"`
	Derived map[string]string `json:"derived"`
}

func (h *PreviewHandler) Check(c *gin.Context) {
	var req PreviewCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Values == nil {
		req.Values = map[string]any{}
	}

	fields := h.formStore.Fields()
	derived := derivation.EvaluateAll(fields, req.Values)

	// Derived values take part in validation: a required derived field
	// fails when its computed value is empty.
	merged := make(map[string]any, len(req.Values)+len(derived))
	for id, v := range req.Values {
		merged[id] = v
	}
	for id, v := range derived {
		merged[id] = v
	}

	failures := validation.CheckAll(fields, merged)
	c.JSON(http.StatusOK, PreviewCheckResponse{
		Valid:   len(failures) == 0,
		Errors:  failures,
		Derived: derived,
	})
}
