// handlers_layout.go - Stored layout and layout edit handlers
package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/models"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultListLimit    = 50
	defaultHistoryLimit = 20
)

// LayoutHandlerImpl implements the LayoutHandler interface
type LayoutHandlerImpl struct {
	layouts LayoutService
}

// NewLayoutHandler creates a new layout handler instance
func NewLayoutHandler(layouts LayoutService) LayoutHandler {
	return &LayoutHandlerImpl{layouts: layouts}
}

// HandleListLayouts returns the most recently updated layouts
func (h *LayoutHandlerImpl) HandleListLayouts(c echo.Context) error {
	limit := queryInt(c, "limit", defaultListLimit)

	list, err := h.layouts.ListLayouts(limit)
	if err != nil {
		return NewInternalError("failed to list layouts", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"layouts": list,
	})
}

// HandleGetLayout returns one layout with its occupied slots
func (h *LayoutHandlerImpl) HandleGetLayout(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	view, err := h.layouts.GetLayout(tag)
	if err != nil {
		return mapError(err, "layout", tag)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleGetLayoutMsgpack returns the slots of a layout in MessagePack format
func (h *LayoutHandlerImpl) HandleGetLayoutMsgpack(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	view, err := h.layouts.GetLayout(tag)
	if err != nil {
		return mapError(err, "layout", tag)
	}

	data, err := msgpack.Marshal(&models.CompactLayout{
		Tag:        view.Tag,
		RevisionID: view.RevisionID,
		Pairs:      view.Pairs,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetHistory returns the saved revisions of a layout, newest first
func (h *LayoutHandlerImpl) HandleGetHistory(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}
	limit := queryInt(c, "limit", defaultHistoryLimit)

	revs, err := h.layouts.History(tag, limit)
	if err != nil {
		return mapError(err, "layout", tag)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tag":       tag,
		"revisions": revs,
	})
}

// HandleImportLayout replaces a layout with a serialized one
func (h *LayoutHandlerImpl) HandleImportLayout(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	var req importLayoutRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	rec, err := h.layouts.ImportLayout(tag, *req.Layout)
	if err != nil {
		return mapError(err, "layout", tag)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleDeleteLayout removes a layout and its history
func (h *LayoutHandlerImpl) HandleDeleteLayout(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	if err := h.layouts.DeleteLayout(tag); err != nil {
		return mapError(err, "layout", tag)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleAutoLayout generates a zigzag layout from the posted item snapshot
func (h *LayoutHandlerImpl) HandleAutoLayout(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	var snap models.Snapshot
	if err := c.Bind(&snap); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	rec, err := h.layouts.AutoLayout(tag, snap)
	if err != nil {
		return mapError(err, "layout", tag)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleMoveItem swaps two slots
func (h *LayoutHandlerImpl) HandleMoveItem(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	var req moveItemRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	rec, err := h.layouts.MoveItem(tag, *req.From, *req.To, liveID(req.ItemID))
	if err != nil {
		return mapError(err, "layout", tag)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleDuplicateItem copies a slot into the next free slot after it
func (h *LayoutHandlerImpl) HandleDuplicateItem(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	var req slotRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	index, rec, err := h.layouts.DuplicateItem(tag, *req.Index, liveID(req.ItemID))
	if err != nil {
		return mapError(err, "layout", tag)
	}
	return c.JSON(http.StatusOK, duplicateResponse{Index: index, Record: rec})
}

// HandleClearIndex empties a slot
func (h *LayoutHandlerImpl) HandleClearIndex(c echo.Context) error {
	tag, err := tagParam(c)
	if err != nil {
		return err
	}

	var req slotRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	rec, err := h.layouts.ClearIndex(tag, *req.Index)
	if err != nil {
		return mapError(err, "layout", tag)
	}
	return c.JSON(http.StatusOK, rec)
}

// Request/Response types

type importLayoutRequest struct {
	Layout *string `json:"layout"` // itemId:index pairs; "" clears the layout
}

func (r *importLayoutRequest) validate() error {
	if r.Layout == nil {
		return NewValidationError("layout")
	}
	return nil
}

type moveItemRequest struct {
	From   *int `json:"from"`
	To     *int `json:"to"`
	ItemID *int `json:"itemId,omitempty"` // id shown on the dragged slot
}

func (r *moveItemRequest) validate() error {
	if r.From == nil || *r.From < 0 {
		return NewValidationError("from")
	}
	if r.To == nil || *r.To < 0 {
		return NewValidationError("to")
	}
	return nil
}

type slotRequest struct {
	Index  *int `json:"index"`
	ItemID *int `json:"itemId,omitempty"`
}

func (r *slotRequest) validate() error {
	if r.Index == nil || *r.Index < 0 {
		return NewValidationError("index")
	}
	return nil
}

type duplicateResponse struct {
	Index  int                  `json:"index"`
	Record *models.LayoutRecord `json:"record"`
}

// Helper functions

func tagParam(c echo.Context) (string, error) {
	tag, err := url.PathUnescape(c.Param("tag"))
	if err != nil {
		return "", NewValidationError("tag")
	}
	if err := storage.ValidateTag(tag); err != nil {
		return "", NewValidationError("tag")
	}
	return tag, nil
}

func liveID(id *int) int {
	if id == nil || *id <= 0 {
		return -1
	}
	return *id
}

func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
