package upload

import (
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/daily-darshan/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	storage  Storage
	chunks   *ChunkManager
	maxBytes int64
}

func NewHandler(storage Storage, chunks *ChunkManager, maxUploadMB int) *Handler {
	return &Handler{
		storage:  storage,
		chunks:   chunks,
		maxBytes: int64(maxUploadMB) << 20,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/upload", authMW)

	g.POST("", h.upload)
	g.POST("/chunk", h.uploadChunk)
}

func contentTypeFor(filename string) string {
	return mime.TypeByExtension(filepath.Ext(filename))
}

// POST /upload — whole file in one request
func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		response.UnprocessableEntity(c, "file exceeds the upload size limit")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer src.Close()

	filename := buildFileName(fileHeader.Filename)
	url, err := h.storage.Save(c.Request.Context(), filename, src,
		fileHeader.Size, contentTypeFor(fileHeader.Filename))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"success":  true,
		"url":      url,
		"filename": filename,
		"storage":  h.storage.Kind(),
	})
}

// POST /upload/chunk — one ordered part of a large file
func (h *Handler) uploadChunk(c *gin.Context) {
	fileID := c.PostForm("fileId")
	fileName := c.PostForm("fileName")
	index, idxErr := strconv.Atoi(c.PostForm("index"))
	total, totErr := strconv.Atoi(c.PostForm("total"))
	if fileID == "" || idxErr != nil || totErr != nil {
		response.BadRequest(c, "fileId, index and total are required")
		return
	}

	chunkHeader, err := c.FormFile("chunk")
	if err != nil {
		response.BadRequest(c, "chunk payload is required")
		return
	}
	src, err := chunkHeader.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer src.Close()

	partPath, completed, err := h.chunks.Append(fileID, fileName, index, total, src)
	if errors.Is(err, ErrUnknownSession) || errors.Is(err, ErrChunkOutOfOrder) {
		response.Conflict(c, err.Error())
		return
	}
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if !completed {
		response.OK(c, gin.H{"completed": false, "received": index})
		return
	}

	part, err := os.Open(partPath)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer func() {
		part.Close()
		os.Remove(partPath)
	}()

	info, err := part.Stat()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if h.maxBytes > 0 && info.Size() > h.maxBytes {
		response.UnprocessableEntity(c, "assembled file exceeds the upload size limit")
		return
	}

	filename := buildFileName(fileName)
	url, err := h.storage.Save(c.Request.Context(), filename, part,
		info.Size(), contentTypeFor(fileName))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"completed": true,
		"url":       url,
		"filename":  filename,
		"storage":   h.storage.Kind(),
	})
}
