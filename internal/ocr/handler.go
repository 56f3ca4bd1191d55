package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledongthuc/pdf"

	"receipt-backend/internal/shared/metrics"
	"receipt-backend/internal/shared/server/middleware"
	"receipt-backend/internal/shared/server/respond"
	"receipt-backend/internal/shared/storage/object"
	"receipt-backend/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler validates receipt uploads and relays them upstream.
type Handler struct {
	Client  *Client
	Archive object.Store
}

// NewHandler constructs a Handler. Archive may be nil.
func NewHandler(client *Client, archive object.Store) *Handler {
	return &Handler{Client: client, Archive: archive}
}

// RegisterRoutes attaches OCR routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/process/ocr-request", h.process)
}

func (h *Handler) process(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		metrics.IncOCRRejected()
		respond.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}

	fileName := strings.TrimSpace(fileHeader.Filename)
	if fileName == "" {
		metrics.IncOCRRejected()
		respond.Error(c, http.StatusBadRequest, "file name is required", nil)
		return
	}

	ext := DeriveExtension(fileName)
	if !ExtensionAllowed(ext) {
		metrics.IncOCRRejected()
		respond.Error(c, http.StatusBadRequest, fmt.Sprintf("unsupported file extension: %s", ext), nil)
		return
	}

	// Configuration is checked before any I/O so a misconfigured gateway
	// never touches the upstream service.
	if !h.Client.Configured() {
		respond.Error(c, http.StatusInternalServerError, "OCR service is not configured", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.IncOCRRejected()
		respond.Error(c, http.StatusBadRequest, "unable to read file", nil)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		metrics.IncOCRRejected()
		respond.Error(c, http.StatusBadRequest, "unable to read file", nil)
		return
	}

	h.archive(c, fileName, image, ext)

	start := time.Now()
	data, err := h.Client.Recognize(c.Request.Context(), image, fileName, ext)
	metrics.ObserveOCRUpstreamDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		metrics.IncOCRUpstreamFailed()
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			respond.Error(c, http.StatusInternalServerError, "upstream OCR request failed", upstream.Details)
			return
		}
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("ocr request failed: %v", err), nil)
		return
	}

	metrics.IncOCRRelayed()
	respond.Success(c, "", data)
}

// archive stores a copy of the upload and logs PDF page counts. Failures are
// logged and never affect the relay.
func (h *Handler) archive(c *gin.Context, fileName string, image []byte, ext string) {
	fields := map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"file_name":  fileName,
		"size_bytes": len(image),
	}

	if ext == "pdf" {
		if pages, err := pdfPageCount(image); err == nil {
			fields["pdf_pages"] = pages
		}
	}

	if h.Archive != nil {
		key, _, mimeType, err := h.Archive.Save(c.Request.Context(), fileName, bytes.NewReader(image))
		if err != nil {
			telemetry.Error("receipt.archive.failed", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"file_name":  fileName,
				"err":        err.Error(),
			})
		} else {
			fields["archive_key"] = key
			fields["mime_type"] = mimeType
		}
	}

	telemetry.Info("receipt.received", fields)
}

func pdfPageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
