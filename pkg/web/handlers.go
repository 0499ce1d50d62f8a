package web

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/hub"
	"github.com/teslashibe/go-centroid/pkg/jobs"
	"github.com/teslashibe/go-centroid/pkg/video"
)

const errNoVideoDir = "VIDEO_DIR not set in environment"

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// param returns a path parameter with percent-escapes decoded.
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// handleListVideos returns the video files in the library directory.
func (s *Server) handleListVideos(c *fiber.Ctx) error {
	if s.config.VideoDir == "" {
		return errorJSON(c, fiber.StatusInternalServerError, errNoVideoDir)
	}
	names, err := video.ListVideos(s.config.VideoDir)
	if err != nil {
		log.Error("list videos", "dir", s.config.VideoDir, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Error reading video directory")
	}
	return c.JSON(names)
}

// handleThumbnail returns the first frame of a video as JPEG.
func (s *Server) handleThumbnail(c *fiber.Ctx) error {
	path, err := video.Resolve(s.config.VideoDir, param(c, "filename"))
	switch {
	case errors.Is(err, video.ErrNoLibrary):
		return errorJSON(c, fiber.StatusInternalServerError, errNoVideoDir)
	case errors.Is(err, video.ErrInvalidName):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid filename")
	case err != nil:
		return errorJSON(c, fiber.StatusNotFound, "Video not found")
	}

	data, err := s.thumbs.Thumbnail(c.UserContext(), path)
	if err != nil {
		log.Error("thumbnail", "path", path, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Error generating thumbnail")
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

// handleProcess starts a processing job and returns its ID.
func (s *Server) handleProcess(c *fiber.Ctx) error {
	filename := param(c, "filename")
	colorArg := c.Query("targetColor")
	thresholdArg := c.Query("threshold")
	if filename == "" || colorArg == "" || thresholdArg == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing filename, targetColor, or threshold")
	}

	color, err := centroid.ParseRGB(colorArg)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid targetColor, expected RRGGBB")
	}
	threshold, err := strconv.ParseFloat(thresholdArg, 64)
	if err != nil || !jobs.ValidThreshold(threshold) {
		return errorJSON(c, fiber.StatusBadRequest, "Threshold must be a non-negative number")
	}

	job, err := s.jobs.Submit(jobs.Request{Filename: filename, Color: color, Threshold: threshold})
	switch {
	case errors.Is(err, video.ErrNoLibrary):
		return errorJSON(c, fiber.StatusInternalServerError, errNoVideoDir)
	case errors.Is(err, video.ErrInvalidName):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid filename")
	case errors.Is(err, video.ErrNotFound):
		return errorJSON(c, fiber.StatusBadRequest, "Video file does not exist")
	case errors.Is(err, jobs.ErrInvalidThreshold):
		return errorJSON(c, fiber.StatusBadRequest, "Threshold must be a non-negative number")
	case errors.Is(err, jobs.ErrShutdown):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Server is shutting down")
	case err != nil:
		log.Error("submit job", "file", filename, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Error starting job")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"jobId": job.ID})
}

// handleJobStatus returns a job by ID.
func (s *Server) handleJobStatus(c *fiber.Ctx) error {
	job, err := s.jobs.Get(c.Params("jobId"))
	if errors.Is(err, jobs.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(job)
}

// handleListJobs returns all jobs, newest first.
func (s *Server) handleListJobs(c *fiber.Ctx) error {
	list, err := s.jobs.List()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(list)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	clients := 0
	if s.events != nil {
		clients = s.events.ClientCount()
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"version":   Version,
		"wsClients": clients,
	})
}

// handleJobsWS streams job updates. The current job list is sent first.
func (s *Server) handleJobsWS(conn *websocket.Conn) {
	var initial []hub.Message
	if list, err := s.jobs.List(); err == nil {
		if msg, err := hub.NewEventMessage(EventSnapshot, list); err == nil {
			initial = append(initial, msg)
		}
	}
	s.events.Serve(conn, initial...)
}

// Websocket event types.
const (
	EventSnapshot = "snapshot"
	EventJob      = "job"
)

// PublishJob broadcasts a job update to websocket subscribers.
func PublishJob(events *hub.Hub, job jobs.Job) {
	if events == nil {
		return
	}
	if err := events.BroadcastEvent(EventJob, job); err != nil {
		log.Warn("publish job update", "job", job.ID, "error", err)
	}
}
