package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fixlater/fixlater-backend/internal/upload"
)

const maxImagesPerRequest = 10

type UploadHandler struct {
	uploader *upload.Uploader
}

func NewUploadHandler(uploader *upload.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

func (h *UploadHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	url, err := h.store(c, fh)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}

func (h *UploadHandler) UploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image files are required"))
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image files are required"))
	}
	if len(files) > maxImagesPerRequest {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "too many files"))
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.store(c, fh)
		if err != nil {
			return uploadError(c, err)
		}
		urls = append(urls, url)
	}
	return c.JSON(http.StatusCreated, map[string]any{"urls": urls})
}

func (h *UploadHandler) store(c echo.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.uploader.UploadImage(c.Request().Context(), f, fh.Size, fh.Header.Get("Content-Type"))
}

func uploadError(c echo.Context, err error) error {
	if errors.Is(err, upload.ErrNotAnImage) || errors.Is(err, upload.ErrTooLarge) {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to store image"))
}
