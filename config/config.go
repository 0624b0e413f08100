package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	MinIO struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`
	ElevenLabs struct {
		APIKey  string `yaml:"api_key"`
		VoiceID string `yaml:"voice_id"`
		ModelID string `yaml:"model_id"`
	} `yaml:"elevenlabs"`
	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
	Replicate struct {
		APIToken string `yaml:"api_token"`
		Model    string `yaml:"model"`
	} `yaml:"replicate"`
	Mux struct {
		TokenID     string `yaml:"token_id"`
		TokenSecret string `yaml:"token_secret"`
	} `yaml:"mux"`
	Pipeline struct {
		GateCapacity      int    `yaml:"gate_capacity"`      // concurrent provider calls (TTS + LLM share the gate)
		PollIntervalMs    int    `yaml:"poll_interval_ms"`   // image / host asset polling interval
		PollMaxAttempts   int    `yaml:"poll_max_attempts"`  // polling attempt ceiling
		RenderParallelism int    `yaml:"render_parallelism"` // 0 = NumCPU
		ScratchDir        string `yaml:"scratch_dir"`        // empty = os.TempDir()
	} `yaml:"pipeline"`
	Worker struct {
		Concurrency int `yaml:"concurrency"`
	} `yaml:"worker"`
}

var AppConfig *Config

func InitConfig() {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	AppConfig = &Config{}
	if err := decoder.Decode(AppConfig); err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}
	applyDefaults(AppConfig)
}

func applyDefaults(c *Config) {
	if c.Pipeline.GateCapacity <= 0 {
		c.Pipeline.GateCapacity = 2
	}
	if c.Pipeline.PollIntervalMs <= 0 {
		c.Pipeline.PollIntervalMs = 1000
	}
	if c.Pipeline.PollMaxAttempts <= 0 {
		c.Pipeline.PollMaxAttempts = 60
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 5
	}
	if c.ElevenLabs.ModelID == "" {
		c.ElevenLabs.ModelID = "eleven_multilingual_v2"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.Replicate.Model == "" {
		c.Replicate.Model = "black-forest-labs/flux-schnell"
	}
}

// PollInterval returns the polling interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Pipeline.PollIntervalMs) * time.Millisecond
}
