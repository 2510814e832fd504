// Package api serves list statistics over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"malstats/internal/auth"
	"malstats/internal/list"
	"malstats/internal/source"
	"malstats/internal/stats"
	"malstats/internal/store"
	synchub "malstats/internal/sync"
	"malstats/pkg/logger"
)

type Handler struct {
	Service *stats.Service
	Hub     *synchub.Hub
	Tokens  auth.TokenService
	Log     logger.Logger
}

func NewHandler(svc *stats.Service, hub *synchub.Hub, tokens auth.TokenService, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Service: svc, Hub: hub, Tokens: tokens, Log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)
	if h.Hub != nil {
		r.GET("/ws", synchub.WSHandler(h.Hub))
	}

	users := r.Group("/users/:name")
	users.GET("/summary", h.summary)
	users.GET("/snapshots", h.snapshots)
	users.POST("/import", auth.AuthMiddleware(h.Tokens), h.importUser)

	kind := users.Group("/:kind")
	kind.GET("/histogram", h.histogram)
	kind.GET("/groups", h.groups)
	kind.GET("/partial", h.partial)
	kind.GET("/tags", h.tags)

	r.DELETE("/snapshots/:id", auth.AuthMiddleware(h.Tokens), h.deleteSnapshot)
}

func (h *Handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.Hub != nil {
		st := h.Hub.Stats()
		body["tcp_clients"] = st.TCPClients
		body["ws_clients"] = st.WSClients
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) summary(c *gin.Context) {
	s, err := h.Service.Summary(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) snapshots(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Service.Snapshots(c.Request.Context(), c.Param("name"), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) importUser(c *gin.Context) {
	snap, _, err := h.Service.Import(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *Handler) deleteSnapshot(c *gin.Context) {
	if err := h.Service.DeleteSnapshot(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) histogram(c *gin.Context) {
	hist, err := h.Service.Histogram(c.Request.Context(), c.Param("name"), c.Param("kind"), parseBool(c.Query("include_unscored")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": c.Param("kind"), "histogram": hist})
}

// groups takes group_by, fields (comma separated or repeated), sort_method,
// sort_order, include_unscored and manual_sort.
func (h *Handler) groups(c *gin.Context) {
	opts := list.GroupOptions{
		IncludeUnscored: parseBool(c.Query("include_unscored")),
		GroupBy:         c.Query("group_by"),
		SortMethod:      list.SortMethod(c.Query("sort_method")),
		SortOrder:       list.SortOrder(c.Query("sort_order")),
		ManualSort:      queryList(c, "manual_sort"),
	}
	fields := queryList(c, "fields")
	if opts.GroupBy == "" || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_by and fields required"})
		return
	}

	groups, err := h.Service.Groups(c.Request.Context(), c.Param("name"), c.Param("kind"), opts, fields...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields, "groups": groups})
}

func (h *Handler) partial(c *gin.Context) {
	pct, err := strconv.ParseFloat(c.Query("percentage"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percentage must be a number"})
		return
	}
	opts := list.PartialOptions{
		Percentage:      pct,
		Part:            list.Part(c.DefaultQuery("part", string(list.PartTop))),
		Rounding:        list.Rounding(c.DefaultQuery("rounding", string(list.RoundX))),
		IncludeUnscored: parseBool(c.Query("include_unscored")),
	}

	res, err := h.Service.Partial(c.Request.Context(), c.Param("name"), c.Param("kind"), opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) tags(c *gin.Context) {
	titles, err := h.Service.ImproperTagged(c.Request.Context(), c.Param("name"), c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": h.Service.Policy.Enabled, "improper_tagged": titles})
}

// fail maps service errors onto status codes. Unexpected errors are logged
// and hidden from the client.
func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.Log.Error("[api] request failed", logger.String("path", c.FullPath()), logger.Error(err))
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var cfgErr *list.ConfigError
	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, stats.ErrUserRequired),
		errors.Is(err, stats.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, list.ErrNoScores),
		errors.Is(err, list.ErrEmptyPartial),
		errors.Is(err, stats.ErrNoLiveSource):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

// queryList accepts a=x,y as well as a=x&a=y.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
