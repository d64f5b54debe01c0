package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Serializer SerializerConfig `yaml:"serializer" mapstructure:"serializer"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=postgres"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns" validate:"gte=1,lte=100"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	// GeocodePriority orders geocode types when picking an address's primary
	// geocode, most preferred first.
	GeocodePriority []string `yaml:"geocode_priority" mapstructure:"geocode_priority" validate:"min=1,dive,required"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// SerializerConfig holds the default GeoJSON serializer settings. Command-line
// flags override these per invocation.
type SerializerConfig struct {
	GeomType   string         `yaml:"geom_type" mapstructure:"geom_type" validate:"oneof=centroid parcel"`
	GeomSource string         `yaml:"geom_source" mapstructure:"geom_source" validate:"required_if=GeomType parcel"`
	SRID       int            `yaml:"srid" mapstructure:"srid" validate:"gt=0"`
	Metadata   map[string]any `yaml:"metadata" mapstructure:"metadata"`
	// MetadataKeys lists the metadata keys in the order config.yaml writes
	// them; viper's map does not keep it.
	MetadataKeys []string `yaml:"-" mapstructure:"-"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("store.geocode_priority", []string{"pwd_parcel", "dor_parcel", "true_range", "centerline"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("serializer.geom_type", "centroid")
	v.SetDefault("serializer.geom_source", "")
	v.SetDefault("serializer.srid", 4326)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if path := v.ConfigFileUsed(); path != "" {
		keys, err := metadataKeyOrder(path)
		if err != nil {
			return nil, err
		}
		cfg.Serializer.MetadataKeys = keys
	}

	return &cfg, nil
}

// metadataKeyOrder returns the keys of serializer.metadata in file order,
// lowercased the way viper stores them.
func metadataKeyOrder(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "config: read file")
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, eris.Wrap(err, "config: parse metadata order")
	}

	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, key := range []string{"serializer", "metadata"} {
		node = mappingValue(node, key)
		if node == nil {
			return nil, nil
		}
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}

	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, strings.ToLower(node.Content[i].Value))
	}
	return keys, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if strings.EqualFold(node.Content[i].Value, key) {
			return node.Content[i+1]
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}

// Validate checks the configuration for the given command mode. Modes:
// "address" needs a database, "render" works from fixture files.
func (c *Config) Validate(mode string) error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return eris.Wrap(err, "config: validate")
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	switch mode {
	case "address":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "render":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// describe turns a validation failure into "section.field ..." text.
func describe(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", ns, fe.Param(), fe.Value())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", ns, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s (got %v)", ns, fe.Tag(), fe.Param(), fe.Value())
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
