package gripper

import (
	"encoding/json"
	"os"
)

const DefaultConfigFile = "gripper.json"

// Config holds the gripper configuration
type Config struct {
	Gripper    PortConfig       `json:"gripper"`
	Sensor     PortConfig       `json:"sensor"`
	Classifier ClassifierConfig `json:"classifier"`
}

// PortConfig holds configuration for a single serial device
type PortConfig struct {
	Port string `json:"port"`
	Baud int    `json:"baud,omitempty"`
}

// BaudOrDefault returns the configured baud rate, or 115200
func (p PortConfig) BaudOrDefault() int {
	if p.Baud <= 0 {
		return BaudRate
	}
	return p.Baud
}

// ClassifierConfig holds camera and model settings for the object classifier
type ClassifierConfig struct {
	Camera   int               `json:"camera"`
	Model    string            `json:"model"`
	Labels   string            `json:"labels"`
	Keywords map[string]Action `json:"keywords,omitempty"`
}

// DefaultConfig returns a configuration with no ports selected
func DefaultConfig() *Config {
	return &Config{
		Gripper: PortConfig{Baud: BaudRate},
		Sensor:  PortConfig{Baud: BaudRate},
		Classifier: ClassifierConfig{
			Model:  "models/mobilenetv2.onnx",
			Labels: "models/imagenet_labels.txt",
		},
	}
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
