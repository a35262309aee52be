package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm/processors"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/logging/types"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"
)

// Manager manages the completion provider lifecycle and runs the job
// extraction pipeline on top of it
type Manager struct {
	config   *config.Config
	factory  *Factory
	provider Provider
	preparer *processors.ContentPreparer
	logger   types.Logger
	mu       sync.RWMutex
	healthy  bool
}

// NewManager creates a new completion manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:   cfg,
		factory:  NewFactory(cfg),
		preparer: processors.NewContentPreparer(cfg),
		logger:   logging.GetGlobalLogger(),
	}
}

// Start initializes the manager and creates the provider
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Starting completion manager", map[string]interface{}{
		"provider": m.config.LLM.Provider,
	})

	provider, err := m.factory.CreateProvider()
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}

	m.provider = provider

	ctx, cancel := context.WithTimeout(context.Background(), m.config.LLM.Timeout)
	defer cancel()

	if err := m.provider.IsHealthy(ctx); err != nil {
		// The server still starts; completion-backed endpoints return 503
		// until the provider comes back.
		m.logger.Warn("Completion provider health check failed", map[string]interface{}{
			"provider": provider.GetProviderName(),
			"error":    err.Error(),
		})
		m.healthy = false
	} else {
		m.healthy = true
		m.logger.Info("Completion manager started", map[string]interface{}{
			"provider": provider.GetProviderName(),
		})
	}

	return nil
}

// Stop shuts down the manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping completion manager", nil)
	m.provider = nil
	m.healthy = false
	return nil
}

// Complete forwards a chat completion request to the configured provider
func (m *Manager) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	provider, err := m.activeProvider()
	if err != nil {
		return nil, err
	}

	return provider.Complete(ctx, req)
}

// ExtractJob runs the extraction pipeline on fetched page content. The
// returned result always echoes sourceURL, and its processing time covers
// preparation through parsing. Raw format skips the completion call and
// returns the prepared text as the description.
func (m *Manager) ExtractJob(ctx context.Context, pageContent, sourceURL string, format models.OutputFormat) (*models.ExtractionResult, error) {
	startTime := time.Now()

	prepared, err := m.preparer.Prepare(pageContent)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare page content: %w", err)
	}
	if strings.TrimSpace(prepared) == "" {
		return nil, utils.NewEmptyPageError("page contained no usable text after cleaning")
	}

	if format == models.OutputFormatRaw {
		return &models.ExtractionResult{
			JobDescription: prepared,
			ExtractedURL:   sourceURL,
			ProcessingTime: time.Since(startTime).Seconds(),
		}, nil
	}

	provider, err := m.activeProvider()
	if err != nil {
		return nil, err
	}

	temperature := m.config.LLM.Temperature
	req := &models.ChatCompletionRequest{
		Model:       m.config.LLM.Model,
		MaxTokens:   m.config.LLM.MaxTokens,
		Temperature: &temperature,
		Messages: []models.ChatMessage{
			{Role: "user", Content: buildJobExtractionPrompt(prepared, sourceURL)},
		},
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		if _, ok := utils.AsCustomError(err); ok {
			return nil, err
		}
		return nil, utils.NewServiceUnavailableError(err.Error())
	}

	m.logger.Debug("Extraction completion finished", map[string]interface{}{
		"url":               sourceURL,
		"provider":          provider.GetProviderName(),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})

	job, parseErr := parseJobExtraction(resp.Message)
	if parseErr != nil {
		// Unparseable model output degrades to the cleaned text rather than
		// failing a request whose page we already have.
		m.logger.Warn("Could not parse extraction output, returning cleaned text", map[string]interface{}{
			"url":   sourceURL,
			"error": parseErr.Error(),
		})
		return &models.ExtractionResult{
			JobDescription: prepared,
			ExtractedURL:   sourceURL,
			ProcessingTime: time.Since(startTime).Seconds(),
		}, nil
	}

	if job.Description == "" {
		job.Description = prepared
	}

	return &models.ExtractionResult{
		JobTitle:       job.Title,
		Company:        job.Company,
		Location:       job.Location,
		JobDescription: job.Description,
		ExtractedURL:   sourceURL,
		ProcessingTime: time.Since(startTime).Seconds(),
	}, nil
}

// activeProvider returns the provider if the manager is started and healthy
func (m *Manager) activeProvider() (Provider, error) {
	m.mu.RLock()
	provider := m.provider
	healthy := m.healthy
	m.mu.RUnlock()

	if provider == nil {
		return nil, utils.NewServiceUnavailableError("completion manager not started")
	}
	if !healthy {
		return nil, utils.NewServiceUnavailableError("completion provider is not available, check API key configuration")
	}
	return provider, nil
}

// IsHealthy checks if the manager and provider are healthy
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// GetProviderName returns the name of the current provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}

// CheckHealth performs a health check against the provider and records the result
func (m *Manager) CheckHealth(ctx context.Context) error {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return fmt.Errorf("completion provider not available")
	}

	err := provider.IsHealthy(ctx)

	m.mu.Lock()
	m.healthy = err == nil
	m.mu.Unlock()

	return err
}

// buildJobExtractionPrompt creates the fixed extraction prompt. Changing the
// field list here must be mirrored in models.Job.
func buildJobExtractionPrompt(content, url string) string {
	return fmt.Sprintf(`You are a job posting analyzer. Extract structured information from the provided page content and return it as a JSON object.

Return a valid JSON object with exactly these fields:

{
  "job_title": "string - The job title",
  "company": "string - The company name",
  "location": "string - The job location (city, state, country, or 'Remote')",
  "job_description": "string - The full job description formatted as markdown, organized under ## section headings such as ## About the Role, ## Responsibilities, ## Requirements"
}

RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. Use an empty string "" for any field not present in the content
3. Preserve the original wording of the description; only reformat it into markdown sections
4. The content was fetched from %s

PAGE CONTENT:
%s`, url, content)
}

// parseJobExtraction parses the model's JSON reply, tolerating markdown code fences
func parseJobExtraction(responseText string) (*models.Job, error) {
	responseText = stripCodeFences(responseText)
	if responseText == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	var job models.Job
	if err := json.Unmarshal([]byte(responseText), &job); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}

	if job.Title == "" && job.Company == "" && job.Description == "" {
		return nil, fmt.Errorf("extraction response contained no job fields")
	}

	return &job, nil
}

// stripCodeFences removes a surrounding markdown code block if present
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
