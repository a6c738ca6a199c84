package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// SchemaInspector reports whether migrations have been applied.
type SchemaInspector interface {
	MissingTables(ctx context.Context) ([]string, error)
	SettingsSeeded(ctx context.Context) (bool, error)
}

type socketCounter interface {
	Count() int
}

// HealthHandler serves liveness and readiness.
type HealthHandler struct {
	db        pinger
	schema    SchemaInspector
	redis     *redis.Client
	sockets   socketCounter
	startTime time.Time
	version   string
}

// NewHealthHandler wires the checks. rdb and sockets may be nil.
func NewHealthHandler(db pinger, schema SchemaInspector, rdb *redis.Client, sockets socketCounter, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		schema:    schema,
		redis:     rdb,
		sockets:   sockets,
		startTime: time.Now(),
		version:   version,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness fails while the database is down, the schema is incomplete or the
// settings row is missing. Redis only degrades.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		ready = false
	} else {
		checks["database"] = "healthy"
		if !h.checkSchema(ctx, checks) {
			ready = false
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "degraded: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "disabled"
	}

	if h.sockets != nil {
		checks["sockets"] = strconv.Itoa(h.sockets.Count())
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !ready {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) checkSchema(ctx context.Context, checks map[string]string) bool {
	missing, err := h.schema.MissingTables(ctx)
	switch {
	case err != nil:
		checks["migrations"] = "unknown: " + err.Error()
		return false
	case len(missing) > 0:
		checks["migrations"] = "missing tables: " + strings.Join(missing, ", ")
		return false
	}
	checks["migrations"] = "applied"

	seeded, err := h.schema.SettingsSeeded(ctx)
	switch {
	case err != nil:
		checks["settings"] = "unknown: " + err.Error()
		return false
	case !seeded:
		checks["settings"] = "missing row"
		return false
	}
	checks["settings"] = "present"
	return true
}

// Health is a combined endpoint for basic health checks
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}
