package handler

import (
	"net/http"
	"strconv"

	"anoa.com/typingarena/internal/entity"
	"anoa.com/typingarena/internal/modules/content/service"
	"anoa.com/typingarena/pkg/response"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService service.ContentService
}

func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

func (h *ContentHandler) GetPassages(c *gin.Context) {
	difficulty := c.DefaultQuery("difficulty", entity.DifficultyMedium)

	count := 1
	if raw := c.Query("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			count = parsed
		}
	}

	passages, err := h.contentService.GetPassages(c.Request.Context(), difficulty, count)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": passages})
}
