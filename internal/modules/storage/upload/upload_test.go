package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "")

	url, err := s.Save(context.Background(), "darshan.jpg",
		strings.NewReader("jpeg-bytes"), 10, "image/jpeg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "/uploads/darshan.jpg" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "darshan.jpg"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestLocalStoragePublicBase(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "https://cdn.example.com/")
	url, err := s.Save(context.Background(), "a.png", strings.NewReader("x"), 1, "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "https://cdn.example.com/uploads/a.png" {
		t.Errorf("url = %q", url)
	}
}

func TestSafeNameStripsTraversal(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"my video!.mp4":    "my_video_.mp4",
		"плохое.jpg":       "______.jpg",
	}
	for in, want := range cases {
		if got := safeName(in); got != want {
			t.Errorf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildFileNameKeepsExtension(t *testing.T) {
	name := buildFileName("Morning Aarti.MP4")
	if !strings.HasPrefix(name, "file-") || !strings.HasSuffix(name, ".mp4") {
		t.Errorf("name = %q", name)
	}
}

func TestChunkManagerInOrder(t *testing.T) {
	m := NewChunkManager(t.TempDir())

	parts := []string{"aaa", "bbb", "ccc"}
	var finalPath string
	for i, p := range parts {
		path, done, err := m.Append("f1", "big.mp4", i, len(parts), strings.NewReader(p))
		if err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		if done != (i == len(parts)-1) {
			t.Fatalf("chunk %d done = %v", i, done)
		}
		finalPath = path
	}

	data, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatalf("read part: %v", err)
	}
	if string(data) != "aaabbbccc" {
		t.Errorf("assembled = %q", data)
	}
	if m.Open() != 0 {
		t.Errorf("open sessions = %d after completion", m.Open())
	}
	os.Remove(finalPath)
}

func TestChunkManagerRejectsDisorder(t *testing.T) {
	m := NewChunkManager(t.TempDir())

	// Chunk for a session that was never opened.
	if _, _, err := m.Append("ghost", "x.mp4", 1, 3, strings.NewReader("x")); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("unknown session err = %v", err)
	}

	// Skipping an index kills the session.
	if _, _, err := m.Append("f2", "x.mp4", 0, 3, strings.NewReader("a")); err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	if _, _, err := m.Append("f2", "x.mp4", 2, 3, strings.NewReader("c")); !errors.Is(err, ErrChunkOutOfOrder) {
		t.Errorf("out of order err = %v", err)
	}
	if m.Open() != 0 {
		t.Errorf("session survived an order violation")
	}

	// Index 0 restarts cleanly after a failure.
	if _, _, err := m.Append("f2", "x.mp4", 0, 2, strings.NewReader("a")); err != nil {
		t.Fatalf("restart: %v", err)
	}
	path, done, err := m.Append("f2", "x.mp4", 1, 2, strings.NewReader("b"))
	if err != nil || !done {
		t.Fatalf("finish after restart: done=%v err=%v", done, err)
	}
	os.Remove(path)
}

func TestChunkManagerReapStale(t *testing.T) {
	m := NewChunkManager(t.TempDir())
	if _, _, err := m.Append("old", "x.mp4", 0, 5, strings.NewReader("a")); err != nil {
		t.Fatalf("open session: %v", err)
	}
	m.sessions["old"].touchedAt = time.Now().Add(-2 * time.Hour)

	if n := m.ReapStale(time.Hour); n != 1 {
		t.Errorf("reaped = %d", n)
	}
	if m.Open() != 0 {
		t.Errorf("stale session survived")
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	h := NewHandler(NewLocalStorage(dir, ""), NewChunkManager(t.TempDir()), 1)
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	h.RegisterRoutes(r.Group("/api"), pass)
	return r, dir
}

func multipartBody(t *testing.T, field, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	w.Close()
	return buf, w.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body, ct := multipartBody(t, "file", "photo.jpg", "fake-jpeg", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var out struct {
		Success  bool   `json:"success"`
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || !strings.HasPrefix(out.URL, "/uploads/file-") || !strings.HasSuffix(out.Filename, ".jpg") {
		t.Errorf("response = %+v", out)
	}
}

func TestUploadHandlerMissingFile(t *testing.T) {
	r, _ := newTestRouter(t)
	body, ct := multipartBody(t, "", "", "", map[string]string{"other": "x"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChunkUploadFlow(t *testing.T) {
	r, dir := newTestRouter(t)

	send := func(index, total int, content string) *httptest.ResponseRecorder {
		body, ct := multipartBody(t, "chunk", "blob", content, map[string]string{
			"fileId":   "sess-1",
			"fileName": "aarti.mp4",
			"index":    strconv.Itoa(index),
			"total":    strconv.Itoa(total),
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/upload/chunk", body)
		req.Header.Set("Content-Type", ct)
		r.ServeHTTP(w, req)
		return w
	}

	if w := send(0, 2, "part0"); w.Code != http.StatusOK {
		t.Fatalf("chunk 0 status = %d: %s", w.Code, w.Body.String())
	}
	w := send(1, 2, "part1")
	if w.Code != http.StatusOK {
		t.Fatalf("final chunk status = %d: %s", w.Code, w.Body.String())
	}

	var out struct {
		Completed bool   `json:"completed"`
		URL       string `json:"url"`
		Filename  string `json:"filename"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Completed || !strings.HasSuffix(out.Filename, ".mp4") {
		t.Fatalf("response = %+v", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, out.Filename))
	if err != nil {
		t.Fatalf("read assembled: %v", err)
	}
	if string(data) != "part0part1" {
		t.Errorf("assembled = %q", data)
	}

	// Out-of-order replay of a finished session is a conflict.
	if w := send(1, 2, "late"); w.Code != http.StatusConflict {
		t.Errorf("replay status = %d, want 409", w.Code)
	}
}
