package fridgevision

type ModelConfig struct {
	Backend     string  `env:"MODEL_BACKEND,default=bedrock"`
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type ServerConfig struct {
	Addr               string `env:"SERVER_ADDR,default=:8080"`
	SnapshotPath       string `env:"INVENTORY_SNAPSHOT_PATH,default=artifacts/inventory.json"`
	SnapshotS3Bucket   string `env:"INVENTORY_SNAPSHOT_S3_BUCKET,default="`
	SnapshotS3Key      string `env:"INVENTORY_SNAPSHOT_S3_KEY,default=inventory.json"`
	BaseOllamaEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	ModelCallLogPath   string `env:"MODEL_CALL_LOG_PATH,default="`
}

type NotifierConfig struct {
	SlackWebhookURL  string `env:"SLACK_WEBHOOK_URL,required"`
	SlackChannel     string `env:"SLACK_CHANNEL,default=#fridge"`
	ExpiryWindowDays int    `env:"EXPIRY_WINDOW_DAYS,default=3"`
}
