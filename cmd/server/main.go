// Copyright 2025 WalkGen AI, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/walkgen-ai/walkgen-go/internal/core/model"
	"github.com/walkgen-ai/walkgen-go/internal/telemetry"
)

const (
	serverVersion      = "1.0.0"
	defaultBrowseLimit = 12
	maxBrowseLimit     = 50
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware(config.Application.Name))
	r.Use(cors.Default())

	api := r.Group("/api")
	{
		AnalysisRouter(api)
		BrowseRouter(api)
		CommentRouter(api)
		api.GET("/health", healthHandler)
	}

	port := config.Application.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
		}
	}()
	slog.Info("Server ready", "port", port)

	// Wait for an interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	state.jobManager.Close()
	if err := state.store.Close(); err != nil {
		slog.Error("Store close failed", "error", err)
	}
	if err := shutdownTelemetry(context.Background()); err != nil {
		slog.Error("Telemetry shutdown failed", "error", err)
	}

	log.Println("Server exiting")
}

// AnalysisRouter sets up the routes for submitting and polling analysis jobs.
func AnalysisRouter(r *gin.RouterGroup) {
	r.POST("/analyze", func(c *gin.Context) {
		var req struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		resp, err := state.jobManager.StartAnalysis(c.Request.Context(), req.URL)
		if err != nil {
			if errors.Is(err, model.ErrInvalidVideoReference) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not extract a video id from the url"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// A cache hit answers complete immediately; a fresh job is accepted
		// for background processing.
		status := http.StatusAccepted
		if resp.Status == model.JobStatusComplete {
			status = http.StatusOK
		}
		c.JSON(status, resp)
	})

	r.GET("/status/:job_id", func(c *gin.Context) {
		job, err := state.jobManager.GetStatus(c.Param("job_id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusOK, job)
	})

	r.GET("/walkthrough/:job_id", func(c *gin.Context) {
		walkthrough, err := state.jobManager.GetWalkthrough(c.Param("job_id"))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, walkthrough)
		case errors.Is(err, model.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		case errors.Is(err, model.ErrNotReady):
			c.JSON(http.StatusAccepted, gin.H{"message": "analysis still in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	})
}

// BrowseRouter sets up the read-only cache listing and search routes.
func BrowseRouter(r *gin.RouterGroup) {
	browse := r.Group("/browse")
	{
		browse.GET("/recent", func(c *gin.Context) {
			results, err := state.store.ListRecent(c.Request.Context(), browseLimit(c))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"walkthroughs": results})
		})

		browse.GET("/popular", func(c *gin.Context) {
			results, err := state.store.ListPopular(c.Request.Context(), browseLimit(c))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"walkthroughs": results})
		})

		browse.GET("/search", func(c *gin.Context) {
			query := c.Query("q")
			if len(query) == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
				return
			}
			results, err := state.store.Search(c.Request.Context(), query, browseLimit(c))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"walkthroughs": results})
		})
	}

	r.DELETE("/cache/:video_id", func(c *gin.Context) {
		if err := state.store.Delete(c.Request.Context(), c.Param("video_id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// CommentRouter sets up the comment thread and reaction routes.
func CommentRouter(r *gin.RouterGroup) {
	r.GET("/comments/:video_id", func(c *gin.Context) {
		comments, err := state.store.ListComments(c.Request.Context(), c.Param("video_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if raw := c.Query("segment_id"); raw != "" {
			segmentID, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid segment id"})
				return
			}
			// Replies stay attached to their thread regardless of segment.
			filtered := make([]*model.Comment, 0, len(comments))
			for _, comment := range comments {
				if comment.SegmentId == segmentID {
					filtered = append(filtered, comment)
				}
			}
			comments = filtered
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
	})

	r.POST("/comments/:video_id", func(c *gin.Context) {
		var req struct {
			SegmentId int    `json:"segment_id"`
			ParentId  int64  `json:"parent_id"`
			Nickname  string `json:"nickname"`
			Text      string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
			return
		}
		comment, err := state.store.AddComment(c.Request.Context(), c.Param("video_id"), req.SegmentId, req.ParentId, req.Nickname, req.Text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, comment)
	})

	r.POST("/reactions/:comment_id", func(c *gin.Context) {
		commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
			return
		}
		var req struct {
			SessionId string `json:"session_id" binding:"required"`
			Emoji     string `json:"emoji" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and emoji are required"})
			return
		}
		count, added, err := state.store.ToggleReaction(c.Request.Context(), commentID, req.SessionId, req.Emoji)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"emoji": req.Emoji, "count": count, "added": added})
	})
}

func healthHandler(c *gin.Context) {
	stats, err := state.store.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   serverVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"cache":     stats,
	})
}

// browseLimit parses the limit query parameter, defaulting and capping it.
func browseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultBrowseLimit)))
	if err != nil || limit < 1 {
		return defaultBrowseLimit
	}
	if limit > maxBrowseLimit {
		return maxBrowseLimit
	}
	return limit
}
