package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Kuzu     KuzuConfig     `yaml:"kuzu"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Mcp      McpConfig      `yaml:"mcp"`
}

type AppConfig struct {
	Port       int      `yaml:"port"`
	LogLevel   string   `yaml:"log_level"`
	LogOutputs []string `yaml:"log_outputs"`
}

// PipelineConfig holds the inputs and thresholds of a vocabulary build
type PipelineConfig struct {
	Lang           string `yaml:"lang"`
	OutputDir      string `yaml:"output_dir"`
	FreqsPath      string `yaml:"freqs"`
	ClustersPath   string `yaml:"clusters"`
	VectorsPath    string `yaml:"vectors"`
	MinDocFreq     int64  `yaml:"min_doc_freq"`
	MinWordFreq    int64  `yaml:"min_word_freq"`
	MaxLength      int    `yaml:"max_length"`
	StrictWordFreq bool   `yaml:"strict_word_freq"`
	Smoother       string `yaml:"smoother"`
}

type KuzuConfig struct {
	Path string `yaml:"path"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
	BatchSize  int    `yaml:"batch_size"`
}

type McpConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

const (
	DefaultMinDocFreq  = 5
	DefaultMinWordFreq = 200
	DefaultMaxLength   = 100
	DefaultPort        = 8080
	DefaultSmoother    = "good-turing"
)

// LoadConfig reads a YAML config file. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		// Thresholds may legitimately be zero, so their defaults are set before decoding
		Pipeline: PipelineConfig{
			MinDocFreq:  DefaultMinDocFreq,
			MinWordFreq: DefaultMinWordFreq,
		},
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields. Frequency thresholds are left alone since zero is valid.
func (c *Config) ApplyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = DefaultPort
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if len(c.App.LogOutputs) == 0 {
		c.App.LogOutputs = []string{"stderr"}
	}
	if c.Pipeline.Lang == "" {
		c.Pipeline.Lang = "en"
	}
	if c.Pipeline.MaxLength == 0 {
		c.Pipeline.MaxLength = DefaultMaxLength
	}
	if c.Pipeline.Smoother == "" {
		c.Pipeline.Smoother = DefaultSmoother
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
	if c.Qdrant.BatchSize == 0 {
		c.Qdrant.BatchSize = 256
	}
	if c.Neo4j.Database == "" {
		c.Neo4j.Database = "neo4j"
	}
	if c.Mcp.Path == "" {
		c.Mcp.Path = "/mcp"
	}
}

// GetAddress returns the HTTP listen address for serve mode
func (c *AppConfig) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

// PipelineOverrides carries command-line values. Nil fields leave the config untouched.
type PipelineOverrides struct {
	Lang           *string
	OutputDir      *string
	FreqsPath      *string
	ClustersPath   *string
	VectorsPath    *string
	MinDocFreq     *int64
	MinWordFreq    *int64
	StrictWordFreq *bool
}

// Apply copies every set override into the pipeline config
func (p *PipelineConfig) Apply(o PipelineOverrides) {
	if o.Lang != nil {
		p.Lang = *o.Lang
	}
	if o.OutputDir != nil {
		p.OutputDir = *o.OutputDir
	}
	if o.FreqsPath != nil {
		p.FreqsPath = *o.FreqsPath
	}
	if o.ClustersPath != nil {
		p.ClustersPath = *o.ClustersPath
	}
	if o.VectorsPath != nil {
		p.VectorsPath = *o.VectorsPath
	}
	if o.MinDocFreq != nil {
		p.MinDocFreq = *o.MinDocFreq
	}
	if o.MinWordFreq != nil {
		p.MinWordFreq = *o.MinWordFreq
	}
	if o.StrictWordFreq != nil {
		p.StrictWordFreq = *o.StrictWordFreq
	}
}
