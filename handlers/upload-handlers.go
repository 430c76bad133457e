package handlers

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 5 * 1024 * 1024

// UploadProfileImage stores a single image and returns its public URL.
func (h *Handler) UploadProfileImage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File too large"})
		return
	}

	url, err := h.saveUpload(c, file.Filename, func(dst string) error {
		return c.SaveUploadedFile(file, dst)
	})
	if err != nil {
		slog.Error("failed to store upload", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"url": url},
	})
}

// UploadProductImages stores up to six images and returns their public URLs.
func (h *Handler) UploadProductImages(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No files uploaded"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No files uploaded"})
		return
	}
	if len(files) > 6 {
		files = files[:6]
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File too large"})
			return
		}
		url, err := h.saveUpload(c, file.Filename, func(dst string) error {
			return c.SaveUploadedFile(file, dst)
		})
		if err != nil {
			slog.Error("failed to store upload", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
			respondError(c, traceId, err)
			return
		}
		urls = append(urls, url)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"urls": urls},
	})
}

func (h *Handler) saveUpload(c *gin.Context, original string, save func(dst string) error) (string, error) {
	dir := uploadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1e9), filepath.Ext(original))
	if err := save(filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Request.Host, name), nil
}
