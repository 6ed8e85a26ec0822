package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

type askRequest struct {
	Question string `json:"question"`
}

type retrieveRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type chunkResponse struct {
	Text  string  `json:"text"`
	Page  int     `json:"page"`
	Score float32 `json:"score"`
}

func (s *Server) getConfig(c *gin.Context) {
	if s.ports.Settings == nil {
		abortWithError(c, domain.ConfigurationError("config", "configuration not loaded"))
		return
	}
	settings, err := s.ports.Settings.Get()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"api_type":           settings.Embedding.Provider,
		"embedding_provider": settings.Embedding.Provider,
		"embedding_model":    settings.Embedding.Model,
		"llm_provider":       settings.LLM.Provider,
		"chat_model":         settings.LLM.Model,
	})
}

// getStatus reports the index together with the session's working set.
func (s *Server) getStatus(c *gin.Context) {
	status, err := s.ports.QA.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"database_exists": status.Exists,
		"total_chunks":    status.TotalChunks,
		"total_pages":     status.TotalPages,
		"document_name":   status.DocumentName,
		"resumes_loaded":  len(s.session.Candidates()),
		"job_loaded":      s.session.Job() != nil,
		"has_results":     len(s.session.Results()) > 0,
	})
}

func (s *Server) uploadDocument(c *gin.Context) {
	const op = "upload"

	files, ok := formFiles(c, op, s.opts.MaxQAUpload, "file")
	if !ok {
		return
	}
	raw, err := readUpload(files[0])
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := s.ports.QA.Ingest(c.Request.Context(), raw)
	if err != nil {
		abortWithError(c, err)
		return
	}

	message := "Document processed successfully"
	if result.TotalChunks == 0 {
		message = "Document contains no text; index unchanged"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       message,
		"filename":      result.Filename,
		"total_pages":   result.TotalPages,
		"total_chunks":  result.TotalChunks,
		"failed_chunks": result.FailedChunks,
	})
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ask", "invalid request body")
		return
	}

	answer, err := s.ports.QA.Ask(c.Request.Context(), req.Question)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"answer":          answer.Answer,
		"relevant_chunks": answer.RelevantChunks,
		"total_pages":     answer.TotalPages,
	})
}

func (s *Server) retrieve(c *gin.Context) {
	var req retrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "retrieve", "invalid request body")
		return
	}
	if req.K <= 0 {
		req.K = driving.DefaultRetrieveK
	}

	hits, err := s.ports.QA.Retrieve(c.Request.Context(), req.Query, req.K)
	if err != nil {
		abortWithError(c, err)
		return
	}

	chunks := make([]chunkResponse, len(hits))
	for i, h := range hits {
		chunks[i] = chunkResponse{Text: h.Chunk.Content, Page: h.Chunk.Page, Score: h.Score}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chunks":  chunks,
	})
}

func (s *Server) clearIndex(c *gin.Context) {
	if err := s.ports.QA.Clear(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Index cleared successfully",
	})
}
