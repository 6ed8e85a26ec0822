package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer         string        `json:"answer"`
	TotalPages     int           `json:"total_pages"`
	RelevantChunks []ChunkOutput `json:"relevant_chunks"`
}

// ChunkOutput is one retrieved passage.
type ChunkOutput struct {
	Page    int     `json:"page"`
	Score   float32 `json:"score"`
	Content string  `json:"content"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	K     int    `json:"k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// StatusInput is the (empty) input schema for the index_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	Exists       bool   `json:"database_exists"`
	TotalChunks  int    `json:"total_chunks"`
	TotalPages   int    `json:"total_pages"`
	Dimensions   int    `json:"dimensions"`
	DocumentName string `json:"document_name,omitempty"`
	BuiltAt      string `json:"built_at,omitempty"`
}

// SkillsInput is the input schema for the extract_skills tool.
type SkillsInput struct {
	Text string `json:"text" jsonschema:"resume or profile text to extract skills from"`
}

// addTool registers a typed tool and records its name for Tools.
func addTool[In, Out any](s *Server, tool *mcp.Tool, handler mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.server, tool, handler)
	s.tools = append(s.tools, tool.Name)
}

// registerTools registers the QA tools and, when a matching port is wired,
// skill extraction.
func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed document, citing pages",
	}, s.handleAsk)

	addTool(s, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the passages of the indexed document most similar to a query",
	}, s.handleRetrieve)

	addTool(s, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether a document is indexed and its size",
	}, s.handleStatus)

	if s.ports.Matching != nil {
		addTool(s, &mcp.Tool{
			Name:        "extract_skills",
			Description: "Extract categorised skills from resume text",
		}, s.handleExtractSkills)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.QA.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:         answer.Answer,
		TotalPages:     answer.TotalPages,
		RelevantChunks: make([]ChunkOutput, len(answer.RelevantChunks)),
	}
	for i, c := range answer.RelevantChunks {
		output.RelevantChunks[i] = ChunkOutput{Page: c.Page, Score: c.Score, Content: c.Text}
	}
	return nil, output, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = driving.DefaultRetrieveK
	}

	hits, err := s.ports.QA.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, toolError(err)
	}

	output := RetrieveOutput{
		Chunks: make([]ChunkOutput, len(hits)),
		Count:  len(hits),
	}
	for i, h := range hits {
		output.Chunks[i] = ChunkOutput{Page: h.Chunk.Page, Score: h.Score, Content: h.Chunk.Content}
	}
	return nil, output, nil
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.QA.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, toolError(err)
	}

	output := StatusOutput{
		Exists:       status.Exists,
		TotalChunks:  status.TotalChunks,
		TotalPages:   status.TotalPages,
		Dimensions:   status.Dimensions,
		DocumentName: status.DocumentName,
	}
	if !status.BuiltAt.IsZero() {
		output.BuiltAt = status.BuiltAt.Format(time.RFC3339)
	}
	return nil, output, nil
}

func (s *Server) handleExtractSkills(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SkillsInput,
) (*mcp.CallToolResult, domain.SkillSet, error) {
	if s.ports.Matching == nil {
		return nil, domain.SkillSet{}, ErrMatchingUnavailable
	}
	skills, err := s.ports.Matching.ExtractSkills(ctx, input.Text)
	if err != nil {
		return nil, domain.SkillSet{}, toolError(err)
	}
	return nil, skills, nil
}
