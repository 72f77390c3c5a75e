package handlers

import (
	"strconv"

	"github.com/dissertrack/backend/internal/middleware"
	"github.com/dissertrack/backend/internal/services"
	"github.com/dissertrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(db *gorm.DB) *FileHandler {
	return &FileHandler{
		fileService: services.NewFileService(db),
	}
}

// Download streams a deliverable to an authorized caller. The stored
// uuid name stays on disk; the client gets the original filename.
// GET /api/v1/files/:id
func (h *FileHandler) Download(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}

	file, err := h.fileService.GetForDownload(uint(id), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.FileAttachment(file.FilePath, file.FileName)
}
