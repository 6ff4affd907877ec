package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/tripbuilder/internal/booking"
	"github.com/dharmasatrya/tripbuilder/internal/files"
	"github.com/dharmasatrya/tripbuilder/internal/models"
)

type DraftHandler struct {
	bookings *booking.Service
	log      logrus.FieldLogger
}

func NewDraftHandler(bookings *booking.Service, log logrus.FieldLogger) *DraftHandler {
	return &DraftHandler{
		bookings: bookings,
		log:      log,
	}
}

func (h *DraftHandler) Create(c echo.Context) error {
	var p booking.Patch
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	d, err := h.bookings.CreateDraft(c.Request().Context(), p)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DraftHandler) Get(c echo.Context) error {
	d, err := h.bookings.GetDraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) Update(c echo.Context) error {
	var p booking.Patch
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	d, err := h.bookings.UpdateDraft(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) Quote(c echo.Context) error {
	resp, err := h.bookings.QuoteDraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *DraftHandler) CheckStep(c echo.Context) error {
	resp, err := h.bookings.CheckStep(c.Request().Context(), c.Param("id"), booking.Step(c.Param("step")))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *DraftHandler) UploadDocument(c echo.Context) error {
	kind := models.DocumentKind(c.FormValue("kind"))
	if !kind.Valid() {
		return badRequest(c, "kind must be passport or ticket")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "A file is required")
	}
	if fh.Size > files.MaxSize {
		return respondError(c, h.log, files.ErrTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return badRequest(c, "Failed to read upload: "+err.Error())
	}
	defer src.Close()

	doc, err := h.bookings.AddDocument(c.Request().Context(), c.Param("id"), kind, fh.Filename, src)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *DraftHandler) DeleteDocument(c echo.Context) error {
	if err := h.bookings.RemoveDocument(c.Request().Context(), c.Param("id"), c.Param("docID")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DraftHandler) Finalize(c echo.Context) error {
	resp, err := h.bookings.Finalize(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, resp)
}
