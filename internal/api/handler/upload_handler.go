package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
	"github.com/bwils5/cloudbooks-manager/internal/infrastructure/storage"
)

// UploadHandler handles file upload, download, and deletion.
type UploadHandler struct {
	store    storage.FileStore
	recorder ports.ActivityRecorder
}

func NewUploadHandler(store storage.FileStore, recorder ports.ActivityRecorder) *UploadHandler {
	return &UploadHandler{store: store, recorder: recorder}
}

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Upload handles POST /upload — multipart form with a "file" field.
//
// @Summary      Upload a file
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      200   {object}  uploadResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close()

	name, err := h.store.Save(fh.Filename, src)
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}

	h.recorder.Enqueue(ports.ActivityEntry{
		Action: "Uploaded file",
		Detail: fmt.Sprintf("Filename: %s", name),
	})

	return c.JSON(http.StatusOK, uploadResponse{
		Filename: name,
		URL:      "/uploads/" + name,
	})
}

// Download handles GET /uploads/:filename — streams the stored file.
//
// @Summary      Download a file
// @Tags         uploads
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        filename  path  string  true  "Stored filename"
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /uploads/{filename} [get]
func (h *UploadHandler) Download(c echo.Context) error {
	name := c.Param("filename")
	rc, err := h.store.Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, rc)
}

// Delete handles DELETE /uploads/:filename (admin only).
//
// @Summary      Delete a file
// @Tags         uploads
// @Produce      json
// @Security     BearerAuth
// @Param        filename  path  string  true  "Stored filename"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /uploads/{filename} [delete]
func (h *UploadHandler) Delete(c echo.Context) error {
	name := c.Param("filename")
	if err := h.store.Delete(name); err != nil {
		return err
	}

	h.recorder.Enqueue(ports.ActivityEntry{
		Action: "Deleted file",
		Detail: fmt.Sprintf("Filename: %s", name),
	})

	return c.JSON(http.StatusOK, messageResponse{Message: name + " deleted successfully"})
}
