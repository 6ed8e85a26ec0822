package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
	"github.com/custodia-labs/docmatch/internal/logger"
)

const (
	skillsUserPrompt       = "Extract all skills from this text:\n\n%s"
	requirementsUserPrompt = "Extract requirements from this job description:\n\n%s"

	// DefaultExtractionRunes bounds the text sent to the LLM for extraction.
	DefaultExtractionRunes = 8000
)

// AttributeExtractor turns free text into structured attribute bundles
// with one LLM round trip. Failures never escape: the caller always gets a
// fully populated bundle, with Error set when the defaults were used.
type AttributeExtractor struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	maxRunes int
}

// NewAttributeExtractor creates an extractor. prompts must not be nil;
// llm may be nil, in which case every extraction returns the defaults.
func NewAttributeExtractor(llm driven.LLMService, prompts driven.PromptStore, maxRunes int) *AttributeExtractor {
	if maxRunes <= 0 {
		maxRunes = DefaultExtractionRunes
	}
	return &AttributeExtractor{
		llm:      llm,
		prompts:  prompts,
		maxRunes: maxRunes,
	}
}

// Available reports whether an LLM is configured.
func (e *AttributeExtractor) Available() bool {
	return e.llm != nil
}

// ExtractSkills extracts a candidate's categorised skills.
func (e *AttributeExtractor) ExtractSkills(ctx context.Context, text string) domain.SkillSet {
	skills, _ := e.extractSkills(ctx, text)
	return skills
}

// extractSkills also returns the LLM call error, if any. Such a bundle holds
// the defaults and is worth retrying; a parse failure is not, so it comes
// back with a nil error.
func (e *AttributeExtractor) extractSkills(ctx context.Context, text string) (domain.SkillSet, error) {
	const op = "extract skills"

	out, err := e.complete(ctx, op, driven.PromptExtractSkills, skillsUserPrompt, text)
	if err != nil {
		skills := domain.EmptySkillSet()
		skills.Error = err.Error()
		return skills, err
	}

	var skills domain.SkillSet
	if err := json.Unmarshal([]byte(out), &skills); err != nil {
		perr := domain.NewError(domain.KindExtractionParse, op, "model output is not valid JSON", err)
		logger.Warn("%v", perr)
		skills = domain.EmptySkillSet()
		skills.Error = perr.Error()
		return skills, nil
	}
	skills.Error = ""
	skills.Normalise()
	return skills, nil
}

// rawRequirements accepts scalar fields the model may emit as numbers.
type rawRequirements struct {
	RequiredSkills      []string        `json:"required_skills"`
	PreferredSkills     []string        `json:"preferred_skills"`
	ExperienceYears     json.RawMessage `json:"experience_years"`
	Education           json.RawMessage `json:"education"`
	KeyResponsibilities []string        `json:"key_responsibilities"`
}

// ExtractJobRequirements extracts a job's required and preferred skills.
func (e *AttributeExtractor) ExtractJobRequirements(ctx context.Context, text string) domain.JobRequirements {
	const op = "extract job requirements"

	out, err := e.complete(ctx, op, driven.PromptExtractJobRequirements, requirementsUserPrompt, text)
	if err != nil {
		req := domain.EmptyJobRequirements()
		req.Error = err.Error()
		return req
	}

	var raw rawRequirements
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		perr := domain.NewError(domain.KindExtractionParse, op, "model output is not valid JSON", err)
		logger.Warn("%v", perr)
		req := domain.EmptyJobRequirements()
		req.Error = perr.Error()
		return req
	}

	req := domain.JobRequirements{
		RequiredSkills:      raw.RequiredSkills,
		PreferredSkills:     raw.PreferredSkills,
		ExperienceYears:     scalarString(raw.ExperienceYears),
		Education:           scalarString(raw.Education),
		KeyResponsibilities: raw.KeyResponsibilities,
	}
	req.Normalise()
	return req
}

// complete runs one extraction round trip and returns the model output with
// any code fence removed.
func (e *AttributeExtractor) complete(ctx context.Context, op, promptName, userTmpl, text string) (string, error) {
	if e.llm == nil {
		return "", domain.NewError(domain.KindConfiguration, op, "no LLM provider configured", domain.ErrLLMUnavailable)
	}

	system, err := e.prompts.Load(promptName)
	if err != nil {
		return "", fmt.Errorf("%s: loading prompt: %w", op, err)
	}

	user := fmt.Sprintf(userTmpl, truncateRunes(text, e.maxRunes))
	out, err := e.llm.Complete(ctx, system, user)
	if err != nil {
		logger.Warn("%s failed (%s): %v", op, domain.KindOf(err), err)
		return "", err
	}
	return stripCodeFence(out), nil
}

// stripCodeFence removes a surrounding ``` fence, with or without a
// language tag, and any text outside it.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// scalarString renders a JSON string or number as text. Anything else,
// including null and absent values, becomes empty.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
