package ephdash

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ghiac/ephdash/log"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/store"
	"github.com/ghiac/ephdash/web/pages"
	"github.com/ghiac/ephdash/web/static"
)

// userKey is where requireUser stores the user name on the gin context
const userKey = "ephdash.user"

// RegisterRoutes registers HTTP routes on the given gin.Engine
// Routes: / (GET, POST), /index.html, /create, /delete, /envs, /envs/chart, /api/envs/*, /static/*, /health
func (d *Dashboard) RegisterRoutes(router *gin.Engine) {
	router.StaticFS("/static", http.FS(static.Content))
	router.GET("/health", d.handleHealth)

	user := router.Group("/", d.requireUser)
	user.GET("/", d.handleIndex)
	user.POST("/", d.handleIndex)
	user.GET("/index.html", d.handleIndex)
	user.POST("/create", d.handleCreate)
	user.POST("/delete", d.handleDelete)
	user.GET("/envs", d.handleEnvs)
	user.GET("/envs/chart", d.handleChart)

	api := router.Group("/api/envs")
	api.GET("/:name", d.handleGetEnv)
	api.POST("/:name/logs", d.handleAppendLogs)
}

// requireUser resolves the user for the request or aborts
func (d *Dashboard) requireUser(c *gin.Context) {
	user, err := d.Username(c.Request)
	if err != nil {
		log.Log.Warnf("[Dashboard] ⚠️  Reading username failed: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Reading username: %v", err)})
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) string {
	return c.GetString(userKey)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrIncompleteSpec):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleIndex renders the user's env page
func (d *Dashboard) handleIndex(c *gin.Context) {
	user := currentUser(c)
	env, envErr := d.GetEnv(c.Request.Context(), user)

	html := pages.RenderIndex(pages.IndexData{
		User:         user,
		Env:          env,
		EnvError:     envErr,
		Allowlist:    d.allowlist,
		GatewayHost:  d.gatewayHost,
		ChartEnabled: d.chartEnabled,
		Now:          d.now(),
		Repo:         c.Query("repo"),
		Branch:       c.Query("branch"),
		Path:         c.Query("path"),
	})

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

// handleCreate creates or updates the user's env from form data
func (d *Dashboard) handleCreate(c *gin.Context) {
	user := currentUser(c)
	spec := model.EnvSpec{
		Repo:   c.PostForm("repo"),
		Branch: c.PostForm("branch"),
		Path:   c.PostForm("path"),
	}

	if _, err := d.SetEnvSpec(c.Request.Context(), user, spec); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Log.Errorf("[Dashboard] ❌ Creating env for %s failed: %v", user, err)
		}
		c.String(status, "Creating env: %v", err)
		return
	}

	log.Log.Infof("[Dashboard] 🚀 Env set for %s | Spec: %s", user, spec)
	c.Redirect(http.StatusSeeOther, "/")
}

// handleDelete deletes the user's env
func (d *Dashboard) handleDelete(c *gin.Context) {
	user := currentUser(c)
	if err := d.DeleteEnv(c.Request.Context(), user); err != nil {
		log.Log.Errorf("[Dashboard] ❌ Deleting env for %s failed: %v", user, err)
		c.String(statusFor(err), "Deleting env: %v", err)
		return
	}

	log.Log.Infof("[Dashboard] 🗑️  Env deleted for %s", user)
	c.Redirect(http.StatusSeeOther, "/")
}

// handleEnvs renders the table of all envs
func (d *Dashboard) handleEnvs(c *gin.Context) {
	envs, err := d.ListEnvs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list envs: %v", err)})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, pages.RenderEnvs(currentUser(c), envs, d.now(), d.chartEnabled))
}

// handleChart renders the expiration chart
func (d *Dashboard) handleChart(c *gin.Context) {
	if !d.chartEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Expiration chart is disabled"})
		return
	}

	envs, err := d.ListEnvs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list envs: %v", err)})
		return
	}

	html, err := pages.RenderChart(currentUser(c), envs, d.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to generate chart: %v", err)})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

// handleGetEnv returns an env as JSON
func (d *Dashboard) handleGetEnv(c *gin.Context) {
	name := c.Param("name")
	env, err := d.GetEnv(c.Request.Context(), name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if env == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("env not found: %s", name)})
		return
	}
	c.JSON(http.StatusOK, env)
}

// AppendLogsRequest is the body of POST /api/envs/:name/logs
type AppendLogsRequest struct {
	// ID, when set, must match the env's current ID
	ID    string   `json:"id"`
	Lines []string `json:"lines" binding:"required"`
}

// handleAppendLogs adds output lines to an env
func (d *Dashboard) handleAppendLogs(c *gin.Context) {
	name := c.Param("name")

	var req AppendLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	if err := d.AppendLogs(c.Request.Context(), name, req.ID, req.Lines); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "lines": len(req.Lines)})
}

// handleHealth handles health check requests
func (d *Dashboard) handleHealth(c *gin.Context) {
	envs, err := d.ListEnvs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"envs":    len(envs),
		"version": Version(),
	})
}
