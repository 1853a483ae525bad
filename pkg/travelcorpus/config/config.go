package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/embed"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/export"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/ontology"
	"github.com/cognicore/travelcorpus/pkg/travelcorpus/publish"
)

// Config is the pipeline configuration file.
type Config struct {
	MinConfidence float64 `yaml:"min_confidence"`
	UseSemantic   bool    `yaml:"use_semantic"`
	// SemanticDatasets are source name substrings that get hybrid scoring.
	SemanticDatasets []string `yaml:"semantic_datasets"`
	Datasets         []string `yaml:"datasets"`
	Limit            int      `yaml:"limit"`

	Output       Output         `yaml:"output"`
	Embedder     Embedder       `yaml:"embedder"`
	Store        Store          `yaml:"store"`
	Publish      publish.Config `yaml:"publish"`
	OntologyPath string         `yaml:"ontology_path"`
	HF           HF             `yaml:"hf"`
}

// Output controls where exports are written.
type Output struct {
	Dir           string `yaml:"dir"`
	CSVFile       string `yaml:"csv_file"`
	MetadataFile  string `yaml:"metadata_file"`
	SunburstFile  string `yaml:"sunburst_file"`
	PromptOnly    bool   `yaml:"prompt_only"`
	MinTextLength int    `yaml:"min_text_length"`
}

// Embedder selects the embedding backend.
type Embedder struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	ModelPath     string        `yaml:"model_path"`
	TokenizerPath string        `yaml:"tokenizer_path"`
	OrtLibrary    string        `yaml:"ort_library"`
	MaxSeqLen     int           `yaml:"max_seq_len"`
	Dimensions    int           `yaml:"dimensions"`
	CacheDir      string        `yaml:"cache_dir"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Store configures run persistence. An empty path disables it.
type Store struct {
	Path string `yaml:"path"`
}

// HF configures the Hugging Face datasets server client.
type HF struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Defaults.
const (
	DefaultMinConfidence = 0.25
	DefaultOutputDir     = "data"
	DefaultCSVFile       = "travel_data.csv"
	DefaultMetadataFile  = "processing_metadata.json"
	DefaultSunburstFile  = export.DefaultSunburstFile
	DefaultMaxSeqLen     = 256
	DefaultHFPageSize    = 100
	DefaultEmbedTimeout  = 30 * time.Second
)

// Default returns a configuration that runs the keyword filter over Dolly.
func Default() *Config {
	c := &Config{
		MinConfidence:    DefaultMinConfidence,
		SemanticDatasets: []string{"dolly"},
		Datasets:         []string{"dolly"},
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.CSVFile == "" {
		c.Output.CSVFile = DefaultCSVFile
	}
	if c.Output.MetadataFile == "" {
		c.Output.MetadataFile = DefaultMetadataFile
	}
	if c.Output.SunburstFile == "" {
		c.Output.SunburstFile = DefaultSunburstFile
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = embed.ProviderNone
	}
	if c.Embedder.MaxSeqLen <= 0 {
		c.Embedder.MaxSeqLen = DefaultMaxSeqLen
	}
	if c.Embedder.Timeout <= 0 {
		c.Embedder.Timeout = DefaultEmbedTimeout
	}
	if c.HF.PageSize <= 0 {
		c.HF.PageSize = DefaultHFPageSize
	}
}

// ApplyEnv takes secrets from the environment when the file leaves them
// empty.
func (c *Config) ApplyEnv() {
	if c.Embedder.APIKey == "" {
		c.Embedder.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.HF.Token == "" {
		c.HF.Token = os.Getenv("HF_TOKEN")
	}
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence %v outside [0,1]", internalerr.ErrInvalidConfig, c.MinConfidence)
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", internalerr.ErrInvalidConfig, c.Limit)
	}
	switch strings.ToLower(c.Embedder.Provider) {
	case "", embed.ProviderNone, embed.ProviderOllama, embed.ProviderOpenAI, embed.ProviderONNX:
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", internalerr.ErrInvalidConfig, c.Embedder.Provider)
	}
	if c.Publish.Kafka.Topic != "" && len(c.Publish.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: kafka topic set without brokers", internalerr.ErrInvalidConfig)
	}
	if c.Output.MinTextLength < 0 {
		return fmt.Errorf("%w: negative min_text_length", internalerr.ErrInvalidConfig)
	}
	return nil
}

// EmbedConfig converts the embedder section for embed.Open.
func (c *Config) EmbedConfig() embed.Config {
	e := c.Embedder
	return embed.Config{
		Provider:      e.Provider,
		Model:         e.Model,
		BaseURL:       e.BaseURL,
		APIKey:        e.APIKey,
		ModelPath:     e.ModelPath,
		TokenizerPath: e.TokenizerPath,
		OrtLibrary:    e.OrtLibrary,
		MaxSeqLen:     e.MaxSeqLen,
		Dimensions:    e.Dimensions,
		CacheDir:      e.CacheDir,
	}
}

// CSVPath is where the travel table is written.
func (c *Config) CSVPath() string {
	return filepath.Join(c.Output.Dir, "processed", "travel_only", c.Output.CSVFile)
}

// MetadataPath is where the run statistics are written.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.Output.Dir, "metadata", c.Output.MetadataFile)
}

// Load reads a YAML configuration file over Default, then applies
// environment secrets and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OntologyFile is the on-disk form of an ontology override.
type OntologyFile struct {
	Tags []struct {
		Tag   string   `yaml:"tag"`
		Terms []string `yaml:"terms"`
	} `yaml:"tags"`
}

// LoadOntology loads an ontology from a YAML file
func LoadOntology(path string) (*ontology.Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f OntologyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	entries := make([]ontology.Entry, 0, len(f.Tags))
	for _, t := range f.Tags {
		entries = append(entries, ontology.Entry{Tag: t.Tag, Terms: t.Terms})
	}
	return ontology.New(entries)
}
