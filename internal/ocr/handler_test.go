package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

type failingArchive struct {
	calls int
}

func (f *failingArchive) Save(ctx context.Context, fileName string, r io.Reader) (string, int64, string, error) {
	f.calls++
	return "", 0, "", errors.New("archive unavailable")
}

func (f *failingArchive) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return nil, errors.New("archive unavailable")
}

func newTestRouter(t *testing.T, client *Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(client, nil).RegisterRoutes(r.Group(""))
	return r
}

func multipartUpload(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
	return envelope
}

func TestProcessMissingFile(t *testing.T) {
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer upstream.Close()

	router := newTestRouter(t, NewClient(upstream.URL, "s"))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("other", "value")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["status"] != "error" || envelope["message"] != "file is required" {
		t.Fatalf("unexpected envelope: %v", envelope)
	}
	if calls.Load() != 0 {
		t.Fatalf("rejected upload must not reach upstream")
	}
}

func TestProcessBlankFileName(t *testing.T) {
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer upstream.Close()

	router := newTestRouter(t, NewClient(upstream.URL, "s"))
	body, contentType := multipartUpload(t, "file", "   ", []byte("data"))

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["message"] != "file name is required" {
		t.Fatalf("unexpected message: %v", envelope["message"])
	}
	if calls.Load() != 0 {
		t.Fatalf("rejected upload must not reach upstream")
	}
}

func TestProcessUnsupportedExtension(t *testing.T) {
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer upstream.Close()

	router := newTestRouter(t, NewClient(upstream.URL, "s"))
	body, contentType := multipartUpload(t, "file", "receipt.exe", []byte("data"))

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["message"] != "unsupported file extension: exe" {
		t.Fatalf("unexpected message: %v", envelope["message"])
	}
	if calls.Load() != 0 {
		t.Fatalf("rejected upload must not reach upstream")
	}
}

func TestProcessUnconfiguredService(t *testing.T) {
	router := newTestRouter(t, NewClient("", ""))
	body, contentType := multipartUpload(t, "file", "receipt.jpg", []byte("data"))

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["message"] != "OCR service is not configured" {
		t.Fatalf("unexpected message: %v", envelope["message"])
	}
}

func TestProcessRelaysUpstreamPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":"V2","images":[{"inferResult":"SUCCESS","fields":[]}]}`))
	}))
	defer upstream.Close()

	router := newTestRouter(t, NewClient(upstream.URL, "s"))
	body, contentType := multipartUpload(t, "file", "receipt", []byte("imagedata"))

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", w.Code, w.Body.String())
	}
	envelope := decodeEnvelope(t, w)
	if envelope["status"] != "success" {
		t.Fatalf("unexpected status: %v", envelope["status"])
	}
	data, err := json.Marshal(envelope["data"])
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var want, got map[string]any
	json.Unmarshal([]byte(`{"version":"V2","images":[{"inferResult":"SUCCESS","fields":[]}]}`), &want)
	json.Unmarshal(data, &got)
	if got["version"] != want["version"] || len(got) != len(want) {
		t.Fatalf("expected upstream payload to be relayed verbatim, got %s", data)
	}
}

func TestProcessRelaysDespiteArchiveFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"images":[{"inferResult":"SUCCESS"}]}`))
	}))
	defer upstream.Close()

	archive := &failingArchive{}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewClient(upstream.URL, "s"), archive).RegisterRoutes(router.Group(""))

	body, contentType := multipartUpload(t, "file", "receipt.jpg", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("archive failure must not affect the relay, got %d (body %s)", w.Code, w.Body.String())
	}
	envelope := decodeEnvelope(t, w)
	if envelope["status"] != "success" {
		t.Fatalf("unexpected status: %v", envelope["status"])
	}
	if envelope["data"] == nil {
		t.Fatalf("upstream payload must still be relayed")
	}
	if archive.calls != 1 {
		t.Fatalf("expected exactly one archive attempt, got %d", archive.calls)
	}
}

func TestProcessUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"0021"}`))
	}))
	defer upstream.Close()

	router := newTestRouter(t, NewClient(upstream.URL, "s"))
	body, contentType := multipartUpload(t, "file", "receipt.jpg", []byte("data"))

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["message"] != "upstream OCR request failed" {
		t.Fatalf("unexpected message: %v", envelope["message"])
	}
	details, ok := envelope["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %v", envelope["details"])
	}
	if details["code"] != "0021" {
		t.Fatalf("expected upstream code in details, got %v", details)
	}
}

func TestProcessUpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	router := newTestRouter(t, NewClient(url, "s"))
	body, contentType := multipartUpload(t, "file", "receipt.jpg", []byte("data"))

	req := httptest.NewRequest(http.MethodPost, "/process/ocr-request", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if _, ok := envelope["details"]; ok {
		t.Fatalf("transport failures must not carry details, got %v", envelope["details"])
	}
	if envelope["status"] != "error" {
		t.Fatalf("unexpected status: %v", envelope["status"])
	}
}
