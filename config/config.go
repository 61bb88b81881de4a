package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	ServerPort         string
	TessdataPrefix     string
	MaxFileSize        int64
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAITimeout      time.Duration
	ProcessConcurrency int
	F1040TemplatePath  string
}

// LoadConfig reads configuration from the environment with sensible defaults.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("taxproc")
	v.AutomaticEnv()

	v.SetDefault("server_port", "8080")
	v.SetDefault("tessdata_prefix", "/usr/share/tesseract-ocr/5/tessdata/")
	v.SetDefault("max_file_size", int64(10*1024*1024))
	v.SetDefault("openai_model", "gpt-4o")
	v.SetDefault("openai_timeout_secs", 120)
	v.SetDefault("process_concurrency", 4)
	v.SetDefault("f1040_template_path", "f1040.pdf")

	return &Config{
		ServerPort:         v.GetString("server_port"),
		TessdataPrefix:     v.GetString("tessdata_prefix"),
		MaxFileSize:        v.GetInt64("max_file_size"),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		OpenAIModel:        v.GetString("openai_model"),
		OpenAITimeout:      time.Duration(v.GetInt("openai_timeout_secs")) * time.Second,
		ProcessConcurrency: v.GetInt("process_concurrency"),
		F1040TemplatePath:  v.GetString("f1040_template_path"),
	}
}
