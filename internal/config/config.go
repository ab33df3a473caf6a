// Package config loads runtime settings for the pipeline stages and the local API
// from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the hosted model and the confidence gate.
const (
	DefaultEndpointName = "image-classification-endpoint"
	DefaultContentType  = "image/png"
	DefaultThreshold    = 0.93
)

// Storage backends.
const (
	StorageS3      = "s3"
	StorageLocalFS = "localfs"
)

// Predictor backends.
const (
	PredictorSageMaker = "sagemaker"
	PredictorGRPC      = "grpc"
)

type Config struct {
	Model     ModelConfig     `mapstructure:",squash"`
	Storage   StorageConfig   `mapstructure:",squash"`
	Predictor PredictorConfig `mapstructure:",squash"`
	Server    ServerConfig    `mapstructure:",squash"`
	LogLevel  string          `mapstructure:"log_level"`
}

type ModelConfig struct {
	EndpointName string  `mapstructure:"endpoint_name"`
	ContentType  string  `mapstructure:"content_type"`
	Threshold    float64 `mapstructure:"threshold"`
}

type StorageConfig struct {
	Provider  string `mapstructure:"storage_provider"`
	LocalRoot string `mapstructure:"storage_local_root"`
}

type PredictorConfig struct {
	Backend    string `mapstructure:"predictor"`
	GRPCAddr   string `mapstructure:"predictor_grpc_addr"`
	GRPCMethod string `mapstructure:"predictor_grpc_method"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"http_addr"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTAudience string `mapstructure:"jwt_audience"`
}

// New returns a viper instance bound to the process environment with every
// default registered, so unset variables still unmarshal.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("endpoint_name", DefaultEndpointName)
	v.SetDefault("content_type", DefaultContentType)
	v.SetDefault("threshold", DefaultThreshold)
	v.SetDefault("storage_provider", StorageS3)
	v.SetDefault("storage_local_root", "./data")
	v.SetDefault("predictor", PredictorSageMaker)
	v.SetDefault("predictor_grpc_addr", "model-server:50051")
	v.SetDefault("predictor_grpc_method", "/inference.Predictor/Predict")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_audience", "")
	v.SetDefault("log_level", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Parse decodes and validates the settings held by v.
func Parse(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.Storage.Provider = strings.ToLower(strings.TrimSpace(c.Storage.Provider))
	c.Predictor.Backend = strings.ToLower(strings.TrimSpace(c.Predictor.Backend))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the environment and returns a validated configuration.
func Load() (*Config, error) {
	return Parse(New())
}

// Validate checks the settings the local HTTP API needs on top of Config.Validate.
// The Lambda stages never call it.
func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Addr) == "" {
		return errors.New("http_addr is required")
	}
	if strings.TrimSpace(s.JWTSecret) == "" {
		return errors.New("jwt_secret is required to serve the HTTP API")
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model.EndpointName) == "" {
		errs = append(errs, errors.New("endpoint_name is required"))
	}
	if strings.TrimSpace(c.Model.ContentType) == "" {
		errs = append(errs, errors.New("content_type is required"))
	}
	if c.Model.Threshold <= 0 || c.Model.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold must be in (0, 1], got %v", c.Model.Threshold))
	}
	switch c.Storage.Provider {
	case StorageS3:
	case StorageLocalFS:
		if c.Storage.LocalRoot == "" {
			errs = append(errs, errors.New("storage_local_root is required for localfs"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage provider: %s", c.Storage.Provider))
	}
	switch c.Predictor.Backend {
	case PredictorSageMaker:
	case PredictorGRPC:
		if c.Predictor.GRPCAddr == "" || c.Predictor.GRPCMethod == "" {
			errs = append(errs, errors.New("predictor_grpc_addr and predictor_grpc_method are required for grpc"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown predictor: %s", c.Predictor.Backend))
	}
	return errors.Join(errs...)
}
