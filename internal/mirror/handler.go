// Package mirror serves stored snapshots in the paged load.json format of the
// public list API, so the API source can run against a local copy.
package mirror

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"malstats/internal/source"
	"malstats/internal/store"
	"malstats/pkg/logger"
)

// DefaultPageSize matches the page length of the public endpoint.
const DefaultPageSize = 300

type Handler struct {
	Repo     *store.Repo
	PageSize int
	Log      logger.Logger
}

func NewHandler(repo *store.Repo, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Repo: repo, PageSize: DefaultPageSize, Log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/:list/:user/load.json", h.page)
}

func (h *Handler) page(c *gin.Context) {
	listName := c.Param("list")
	if listName != "animelist" && listName != "mangalist" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown list"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	doc, err := store.NewSource(h.Repo, c.Param("user")).Fetch(c.Request.Context())
	if errors.Is(err, source.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		h.Log.Error("[mirror] load snapshot", logger.String("user", c.Param("user")), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	var body []byte
	if listName == "animelist" {
		body, err = source.EncodeAnimePage(window(doc.Anime, offset, h.PageSize))
	} else {
		body, err = source.EncodeMangaPage(window(doc.Manga, offset, h.PageSize))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func window[T any](s []T, offset, size int) []T {
	if offset >= len(s) {
		return nil
	}
	end := len(s)
	if size > 0 && offset+size < end {
		end = offset + size
	}
	return s[offset:end]
}
