package config

const (
	defaultUploadDir      = "~/.local/share/orgscan/uploads"
	defaultDataDir        = "~/.local/share/orgscan/data"
	defaultLogDir         = "~/.local/share/orgscan/logs"
	defaultAPIBind        = "127.0.0.1:8480"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultHuggingFaceURL = "https://api-inference.huggingface.co/models/google/flan-t5-base"
	defaultLLMTimeout     = 10
	defaultGitHubBaseURL  = "https://api.github.com"
	defaultGitHubTimeout  = 10
	defaultMemberLimit    = 100
	defaultMemberPageSize = 30
	defaultWorkerCount    = 2
	defaultWorkerSubject  = "orgscan.jobs"
	defaultWorkerQueue    = "orgscan-workers"
	defaultMaxUploadBytes = 16 << 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		LLM: LLM{
			GeminiModel:    defaultGeminiModel,
			HuggingFaceURL: defaultHuggingFaceURL,
			RequestTimeout: defaultLLMTimeout,
		},
		GitHub: GitHub{
			BaseURL:        defaultGitHubBaseURL,
			MemberLimit:    defaultMemberLimit,
			MemberPageSize: defaultMemberPageSize,
			RequestTimeout: defaultGitHubTimeout,
		},
		Workers: Workers{
			Count:      defaultWorkerCount,
			Subject:    defaultWorkerSubject,
			QueueGroup: defaultWorkerQueue,
		},
		Uploads: Uploads{
			MaxBytes: defaultMaxUploadBytes,
		},
	}
}
