package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/todo/internal/chatbot"
	"github.com/balkashynov/todo/internal/export"
	"github.com/balkashynov/todo/internal/models"
	"github.com/balkashynov/todo/internal/parser"
	"github.com/balkashynov/todo/internal/progress"
	"github.com/balkashynov/todo/internal/store"
)

const maxImportSize = 1 << 20 // 1MB

type createRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
	Category string `json:"category"`
}

type updateRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
	DueDate   *string `json:"dueDate"`
	Category  *string `json:"category"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type subtaskRequest struct {
	Text string `json:"text"`
}

type subtaskUpdateRequest struct {
	Completed *bool `json:"completed"`
	To        *int  `json:"to"` // move the subtask to this index
}

type chatRequest struct {
	Message string `json:"message"`
}

// fail maps store errors onto HTTP statuses
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var parseErr *models.ParseError
	switch {
	case errors.Is(err, store.ErrEmptyText),
		errors.Is(err, store.ErrIndexOutOfRange),
		errors.As(err, &parseErr):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

func subtaskIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid subtask index")
		return 0, false
	}
	return index, true
}

func (s *Server) parsePriority(c *gin.Context, raw string) (models.Priority, bool) {
	p, ok := models.ParsePriority(raw)
	if !ok {
		badRequest(c, fmt.Sprintf("invalid priority %q: use low, medium or high", raw))
	}
	return p, ok
}

func (s *Server) parseDueDate(c *gin.Context, raw string) (string, bool) {
	due, err := parser.ParseDueDate(raw, s.now())
	if err != nil {
		badRequest(c, "invalid dueDate: "+err.Error())
		return "", false
	}
	return due, true
}

func (s *Server) handleList(c *gin.Context) {
	status := c.Query("status")
	category := c.Query("category")
	if status != "" && status != "pending" && status != "done" {
		badRequest(c, "status must be pending or done")
		return
	}

	tasks := []models.Task{}
	for _, t := range s.store.Snapshot() {
		if status == "pending" && t.Completed || status == "done" && !t.Completed {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		tasks = append(tasks, t)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	priority, ok := s.parsePriority(c, req.Priority)
	if !ok {
		return
	}
	due, ok := s.parseDueDate(c, req.DueDate)
	if !ok {
		return
	}

	task, err := s.store.Add(store.AddInput{
		Text:     req.Text,
		Priority: priority,
		DueDate:  due,
		Category: strings.TrimSpace(req.Category),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := s.store.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	// Validate the request, then apply it in one write
	in := store.UpdateInput{Text: req.Text, Completed: req.Completed}
	if req.Priority != nil {
		p, ok := s.parsePriority(c, *req.Priority)
		if !ok {
			return
		}
		in.Priority = &p
	}
	if req.DueDate != nil {
		due, ok := s.parseDueDate(c, *req.DueDate)
		if !ok {
			return
		}
		in.DueDate = &due
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		in.Category = &category
	}
	if _, err := s.store.Update(id, in); err != nil {
		s.fail(c, err)
		return
	}

	s.handleGet(c)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClear(c *gin.Context) {
	if err := s.store.ClearAll(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		badRequest(c, "from and to are required")
		return
	}
	if err := s.store.Reorder(*req.From, *req.To); err != nil {
		s.fail(c, err)
		return
	}
	s.handleList(c)
}

func (s *Server) handleAddSubtask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req subtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	task, err := s.store.AddSubtask(id, req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleUpdateSubtask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	index, ok := subtaskIndex(c)
	if !ok {
		return
	}
	var req subtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Completed == nil && req.To == nil) {
		badRequest(c, "completed or to is required")
		return
	}

	task, err := s.store.UpdateSubtask(id, index, store.SubtaskInput{
		Completed: req.Completed,
		To:        req.To,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleDeleteSubtask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	index, ok := subtaskIndex(c)
	if !ok {
		return
	}
	task, err := s.store.DeleteSubtask(id, index)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleProgress(c *gin.Context) {
	policy := s.policy
	if raw := c.Query("policy"); raw != "" {
		p, err := progress.ParsePolicy(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		policy = p
	}

	p := progress.Compute(s.store.Snapshot(), policy)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"policy":    policy,
		"completed": p.Completed,
		"total":     p.Total,
		"percent":   p.Percent(),
		"summary":   p.String(),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, s.store.Snapshot()); err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	if err := s.store.ImportJSON(c.Request.Body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   fmt.Sprintf("import is larger than %d bytes", tooLarge.Limit),
			})
			return
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   s.store.Len(),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   chatbot.Respond(req.Message),
	})
}
