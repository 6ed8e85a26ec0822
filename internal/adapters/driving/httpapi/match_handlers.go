package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
	"github.com/custodia-labs/docmatch/internal/core/services"
)

type textRequest struct {
	Text string `json:"text"`
}

var exportContentTypes = map[driving.ExportFormat]string{
	driving.ExportCSV:  "text/csv",
	driving.ExportJSON: "application/json",
	driving.ExportYAML: "application/yaml",
}

func (s *Server) uploadResumes(c *gin.Context) {
	const op = "upload resumes"

	files, ok := formFiles(c, op, s.opts.MaxMatchUpload, "files", "file")
	if !ok {
		return
	}

	raws := make([]*domain.RawDocument, 0, len(files))
	for _, fh := range files {
		raw, err := readUpload(fh)
		if err != nil {
			abortWithError(c, err)
			return
		}
		raws = append(raws, raw)
	}

	outcomes, err := s.ports.Matching.AddCandidates(c.Request.Context(), s.session, raws)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       fmt.Sprintf("Uploaded %d resume(s)", len(outcomes)),
		"results":       outcomes,
		"total_resumes": len(s.session.Candidates()),
	})
}

func (s *Server) listResumes(c *gin.Context) {
	candidates := s.session.Candidates()
	resumes := make([]domain.CandidateOutcome, len(candidates))
	for i, cand := range candidates {
		resumes[i] = domain.CandidateOutcome{
			Index:     i,
			Candidate: cand.ID,
			Filename:  cand.Filename,
			CharCount: cand.CharCount,
			Success:   cand.Error == "",
			Error:     cand.Error,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"resumes": resumes,
		"total":   len(resumes),
	})
}

func (s *Server) clearResumes(c *gin.Context) {
	s.session.ClearCandidates()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All resumes cleared",
	})
}

func (s *Server) uploadJob(c *gin.Context) {
	const op = "upload job"

	files, ok := formFiles(c, op, s.opts.MaxMatchUpload, "file")
	if !ok {
		return
	}
	raw, err := readUpload(files[0])
	if err != nil {
		abortWithError(c, err)
		return
	}

	job, err := s.ports.Matching.SetJobDocument(c.Request.Context(), s.session, raw)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Job description uploaded and processed",
		"filename":     job.Source,
		"char_count":   job.CharCount,
		"requirements": job.Requirements,
	})
}

func (s *Server) submitJobText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "set job", "invalid request body")
		return
	}

	job, err := s.ports.Matching.SetJobText(c.Request.Context(), s.session, req.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Job description processed",
		"char_count":   job.CharCount,
		"requirements": job.Requirements,
	})
}

func (s *Server) clearJob(c *gin.Context) {
	s.session.ClearJob()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Job description cleared",
	})
}

func (s *Server) runMatch(c *gin.Context) {
	results, summary, err := s.ports.Matching.Match(c.Request.Context(), s.session)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
		"summary": summary,
	})
}

func (s *Server) extractSkills(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "extract skills", "invalid request body")
		return
	}

	skills, err := s.ports.Matching.ExtractSkills(c.Request.Context(), req.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"skills":  skills,
	})
}

// exportResults renders into a buffer first so a failure still produces
// the JSON error payload.
func (s *Server) exportResults(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.ports.Matching.Export(s.session, format, &buf); err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="match_results.%s"`, format))
	c.Data(http.StatusOK, exportContentTypes[format], buf.Bytes())
}
