package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeGitHub()
	c.normalizeWorkers()
	c.normalizeLogging()
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = defaultMaxUploadBytes
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.UploadDir, err = expandPath(valueOr(c.Paths.UploadDir, defaultUploadDir)); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(valueOr(c.Paths.DataDir, defaultDataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(valueOr(c.Paths.LogDir, defaultLogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = valueOr(c.Paths.APIBind, defaultAPIBind)
	return nil
}

// Secrets may be supplied by environment instead of the config file.
func (c *Config) normalizeLLM() {
	if c.LLM.GeminiAPIKey == "" {
		c.LLM.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if c.LLM.HuggingFaceAPIKey == "" {
		c.LLM.HuggingFaceAPIKey = strings.TrimSpace(os.Getenv("HUGGINGFACE_API_KEY"))
	}
	c.LLM.GeminiModel = valueOr(c.LLM.GeminiModel, defaultGeminiModel)
	c.LLM.GeminiBaseURL = strings.TrimSpace(c.LLM.GeminiBaseURL)
	c.LLM.HuggingFaceURL = valueOr(c.LLM.HuggingFaceURL, defaultHuggingFaceURL)
	if c.LLM.RequestTimeout <= 0 {
		c.LLM.RequestTimeout = defaultLLMTimeout
	}
}

func (c *Config) normalizeGitHub() {
	if c.GitHub.Token == "" {
		c.GitHub.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}
	c.GitHub.BaseURL = strings.TrimRight(valueOr(c.GitHub.BaseURL, defaultGitHubBaseURL), "/")
	if c.GitHub.MemberLimit <= 0 {
		c.GitHub.MemberLimit = defaultMemberLimit
	}
	if c.GitHub.MemberPageSize <= 0 {
		c.GitHub.MemberPageSize = defaultMemberPageSize
	}
	if c.GitHub.RequestTimeout <= 0 {
		c.GitHub.RequestTimeout = defaultGitHubTimeout
	}
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount
	}
	c.Workers.NATSURL = strings.TrimSpace(c.Workers.NATSURL)
	c.Workers.Subject = valueOr(c.Workers.Subject, defaultWorkerSubject)
	c.Workers.QueueGroup = valueOr(c.Workers.QueueGroup, defaultWorkerQueue)
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(valueOr(c.Logging.Level, defaultLogLevel))
	c.Logging.Format = strings.ToLower(valueOr(c.Logging.Format, defaultLogFormat))
}

func valueOr(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
