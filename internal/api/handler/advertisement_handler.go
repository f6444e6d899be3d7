package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/board-api/internal/api/metrics"
	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

type AdvertisementHandler struct {
	service ports.AdvertisementService
}

func NewAdvertisementHandler(service ports.AdvertisementService) *AdvertisementHandler {
	return &AdvertisementHandler{service: service}
}

// List handles GET /v1/advertisements.
//
// @Summary      List advertisements
// @Tags         advertisements
// @Produce      json
// @Param        group  query     string  false  "SELL, BUY or SERVICE"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Page size (default 20, max 100)"
// @Success      200    {object}  listAdvertisementsResponse
// @Failure      400    {object}  errorResponse
// @Router       /v1/advertisements [get]
func (h *AdvertisementHandler) List(c echo.Context) error {
	var q listAdvertisementsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListAdvertisementsInput{
		Group: q.Group,
		Page:  q.Page,
		Limit: q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listAdvertisementsResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /v1/advertisements/:id.
//
// @Summary      Get an advertisement
// @Tags         advertisements
// @Produce      json
// @Param        id   path      int  true  "Advertisement ID"
// @Success      200  {object}  domain.Advertisement
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/advertisements/{id} [get]
func (h *AdvertisementHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	adv, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adv)
}

// Create handles POST /v1/advertisements. A repeated Idempotency-Key returns
// the advertisement created by the first request with 200, or 409 while that
// request is still running.
//
// @Summary      Post an advertisement
// @Tags         advertisements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                      false  "Client-generated key for safe retries"
// @Param        body             body      createAdvertisementRequest  true   "Advertisement"
// @Success      201              {object}  domain.Advertisement
// @Success      200              {object}  domain.Advertisement
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /v1/advertisements [post]
func (h *AdvertisementHandler) Create(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req createAdvertisementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), identity, ports.CreateAdvertisementInput{
		Title:          req.Title,
		Body:           req.Body,
		Group:          domain.Group(req.Group),
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		metrics.IdempotentReplaysTotal.Inc()
		return c.JSON(http.StatusOK, res.Advertisement)
	}
	metrics.AdvertisementsCreatedTotal.WithLabelValues(string(res.Advertisement.Group)).Inc()
	return c.JSON(http.StatusCreated, res.Advertisement)
}

// Update handles PUT /v1/advertisements/:id. Author or ADMIN only.
//
// @Summary      Update an advertisement
// @Tags         advertisements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                         true  "Advertisement ID"
// @Param        body  body      updateAdvertisementRequest  true  "Fields to change"
// @Success      200   {object}  domain.Advertisement
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/advertisements/{id} [put]
func (h *AdvertisementHandler) Update(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateAdvertisementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := ports.UpdateAdvertisementInput{Title: req.Title, Body: req.Body, IsActive: req.IsActive}
	if req.Group != nil {
		g := domain.Group(*req.Group)
		input.Group = &g
	}

	adv, err := h.service.Update(c.Request().Context(), identity, id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adv)
}

// Delete handles DELETE /v1/advertisements/:id. Author or ADMIN only.
//
// @Summary      Delete an advertisement
// @Tags         advertisements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Advertisement ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/advertisements/{id} [delete]
func (h *AdvertisementHandler) Delete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	adv, err := h.service.Delete(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "advertisement \"" + adv.Title + "\" deleted"})
}
