package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bwils5/cloudbooks-manager/internal/api/metrics"
	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

// BookHandler handles catalog CRUD requests.
type BookHandler struct {
	service  ports.BookService
	recorder ports.ActivityRecorder
}

func NewBookHandler(service ports.BookService, recorder ports.ActivityRecorder) *BookHandler {
	return &BookHandler{service: service, recorder: recorder}
}

type bookRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Author      string `json:"author"      validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

type listBooksResponse struct {
	Data []*domain.Book `json:"data"`
}

// List handles GET /books.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        title   query  string  false  "Title substring filter"
// @Param        author  query  string  false  "Author substring filter"
// @Param        skip    query  int     false  "Rows to skip"
// @Param        limit   query  int     false  "Max rows (default 10, cap 100)"
// @Success      200  {object}  listBooksResponse
// @Failure      401  {object}  errorResponse
// @Router       /books [get]
func (h *BookHandler) List(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	books, err := h.service.List(c.Request().Context(), ports.ListBooksInput{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return c.JSON(http.StatusOK, listBooksResponse{Data: books})
}

// Get handles GET /books/:id.
//
// @Summary      Get a book by ID
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  domain.Book
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Create handles POST /books (admin only).
//
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookRequest  true  "Book details"
// @Success      200   {object}  domain.Book
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /books [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	book, err := h.service.Create(c.Request().Context(), ports.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	metrics.BookMutationsTotal.WithLabelValues("create").Inc()
	h.recorder.Enqueue(ports.ActivityEntry{
		Action: "Created book",
		Detail: fmt.Sprintf("Title: %s", book.Title),
	})

	return c.JSON(http.StatusOK, book)
}

// Update handles PUT /books/:id (admin only).
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Book ID"
// @Param        body  body      bookRequest  true  "Book details"
// @Success      200   {object}  domain.Book
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("id")
	book, err := h.service.Update(c.Request().Context(), id, ports.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	metrics.BookMutationsTotal.WithLabelValues("update").Inc()
	h.recorder.Enqueue(ports.ActivityEntry{
		Action: "Updated book",
		Detail: fmt.Sprintf("ID: %s", id),
	})

	return c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /books/:id (admin only).
//
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	metrics.BookMutationsTotal.WithLabelValues("delete").Inc()
	h.recorder.Enqueue(ports.ActivityEntry{
		Action: "Deleted book",
		Detail: fmt.Sprintf("ID: %s", id),
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "book deleted successfully"})
}
