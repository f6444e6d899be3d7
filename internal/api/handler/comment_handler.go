package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/board-api/internal/api/metrics"
	"github.com/adboard/board-api/internal/core/ports"
)

type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List handles GET /v1/advertisements/:id/comments.
//
// @Summary      List comments of an advertisement
// @Tags         comments
// @Produce      json
// @Param        id   path      int  true  "Advertisement ID"
// @Success      200  {array}   domain.Comment
// @Failure      404  {object}  errorResponse
// @Router       /v1/advertisements/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	advID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	comments, err := h.service.List(c.Request().Context(), advID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// Create handles POST /v1/advertisements/:id/comments.
//
// @Summary      Comment on an advertisement
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Advertisement ID"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      201   {object}  domain.Comment
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/advertisements/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	advID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Create(c.Request().Context(), identity, advID, req.Body)
	if err != nil {
		return err
	}
	metrics.CommentsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, comment)
}

// Update handles PUT /v1/advertisements/:id/comments/:comment_id.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      int             true  "Advertisement ID"
// @Param        comment_id  path      int             true  "Comment ID"
// @Param        body        body      commentRequest  true  "Comment"
// @Success      200         {object}  domain.Comment
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/advertisements/{id}/comments/{comment_id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	advID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}

	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Update(c.Request().Context(), identity, advID, commentID, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /v1/advertisements/:id/comments/:comment_id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      int  true  "Advertisement ID"
// @Param        comment_id  path      int  true  "Comment ID"
// @Success      200         {object}  messageResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/advertisements/{id}/comments/{comment_id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	advID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}

	if _, err := h.service.Delete(c.Request().Context(), identity, advID, commentID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "comment deleted"})
}
