package types

import "time"

// Config represents the maildraft runtime configuration
type Config struct {
	// Slack credentials
	SlackBotToken      string `json:"-" env:"SLACK_BOT_TOKEN"`
	SlackSigningSecret string `json:"-" env:"SLACK_SIGNING_SECRET"`
	SlackBotUserID     string `json:"slack_bot_user_id" env:"SLACK_BOT_USER_ID"`

	// Socket Mode (xapp- app-level token) in addition to the HTTP endpoint
	SlackAppToken   string `json:"-" env:"SLACK_APP_TOKEN"`
	SlackSocketMode bool   `json:"slack_socket_mode" env:"SLACK_SOCKET_MODE,default=false"`

	// Slack reply behaviour
	SlackReplyInThread   bool `json:"slack_reply_in_thread" env:"SLACK_REPLY_IN_THREAD,default=false"`
	SlackNotifyOnFailure bool `json:"slack_notify_on_failure" env:"SLACK_NOTIFY_ON_FAILURE,default=false"`

	// HTTP server
	ServerHost            string        `json:"server_host" env:"SERVER_HOST"`
	ServerPort            int           `json:"server_port" env:"SERVER_PORT,default=3000"`
	ServerReadTimeout     time.Duration `json:"server_read_timeout" env:"SERVER_READ_TIMEOUT,default=10s"`
	ServerWriteTimeout    time.Duration `json:"server_write_timeout" env:"SERVER_WRITE_TIMEOUT,default=30s"`
	ServerIdleTimeout     time.Duration `json:"server_idle_timeout" env:"SERVER_IDLE_TIMEOUT,default=120s"`
	ServerShutdownTimeout time.Duration `json:"server_shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT,default=30s"`

	// Draft generation
	DraftProvider    string  `json:"draft_provider" env:"DRAFT_PROVIDER,default=bedrock"`
	DraftModel       string  `json:"draft_model" env:"DRAFT_MODEL,default=anthropic.claude-3-5-sonnet-20240620-v1:0"`
	DraftMaxTokens   int     `json:"draft_max_tokens" env:"DRAFT_MAX_TOKENS,default=1024"`
	DraftTemperature float64 `json:"draft_temperature" env:"DRAFT_TEMPERATURE,default=1.0"`
	DraftSignerName  string  `json:"draft_signer_name" env:"DRAFT_SIGNER_NAME"`
	DraftMaxAttempts int     `json:"draft_max_attempts" env:"DRAFT_MAX_ATTEMPTS,default=3"`

	// Bedrock
	BedrockRegion          string `json:"bedrock_region" env:"BEDROCK_REGION,default=us-east-1"`
	BedrockAccessKeyID     string `json:"-" env:"BEDROCK_ACCESS_KEY_ID"`
	BedrockSecretAccessKey string `json:"-" env:"BEDROCK_SECRET_ACCESS_KEY"`
	BedrockSessionToken    string `json:"-" env:"BEDROCK_SESSION_TOKEN"`

	// Gemini
	GeminiAPIKey string `json:"-" env:"GEMINI_API_KEY"`
	GeminiModel  string `json:"gemini_model" env:"GEMINI_MODEL,default=gemini-2.0-flash"`

	// Local draft statistics
	StatsEnabled bool   `json:"stats_enabled" env:"STATS_ENABLED,default=true"`
	StatsDBPath  string `json:"stats_db_path" env:"STATS_DB_PATH"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=maildraft"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}
