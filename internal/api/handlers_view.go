// handlers_view.go - Render view handlers
package api

import (
	"net/http"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
	"github.com/labstack/echo/v4"
)

// ViewHandlerImpl implements the ViewHandler interface
type ViewHandlerImpl struct {
	layouts LayoutService
}

// NewViewHandler creates a new view handler instance
func NewViewHandler(layouts LayoutService) ViewHandler {
	return &ViewHandlerImpl{layouts: layouts}
}

// HandleStartView opens a render view of a tag
func (h *ViewHandlerImpl) HandleStartView(c echo.Context) error {
	var req startViewRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	view, err := h.layouts.StartView(req.Tag)
	if err != nil {
		return mapError(err, "layout", req.Tag)
	}
	return c.JSON(http.StatusCreated, view)
}

// HandleGetView returns the last reconciliation of a view
func (h *ViewHandlerImpl) HandleGetView(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	view, ok := h.layouts.GetView(id)
	if !ok {
		return NewNotFoundError("view", id)
	}

	// Touch view to prevent cleanup while being viewed
	h.layouts.TouchView(id)

	return c.JSON(http.StatusOK, view)
}

// HandleReconcile matches the posted live items against the view's layout
func (h *ViewHandlerImpl) HandleReconcile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req reconcileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	view, err := h.layouts.Reconcile(id, req.Items)
	if err != nil {
		return mapError(err, "view", id)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleViewKeepAlive extends view lifetime for active rendering
func (h *ViewHandlerImpl) HandleViewKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if ok := h.layouts.TouchView(id); !ok {
		return NewNotFoundError("view", id)
	}

	return c.NoContent(http.StatusNoContent)
}

type startViewRequest struct {
	Tag string `json:"tag"`
}

func (r *startViewRequest) validate() error {
	if storage.ValidateTag(r.Tag) != nil {
		return NewValidationError("tag")
	}
	return nil
}

type reconcileRequest struct {
	Items []models.ItemInstance `json:"items"`
}
