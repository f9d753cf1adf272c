package config

import (
	"io/fs"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/danielpatrickdp/metalaw/internal/laws"
)

// EnvPrefix prefixes every environment override, e.g. METALAW_LOG_LEVEL.
const EnvPrefix = "METALAW"

// #region config-types

// Config is the full runtime configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Laws     LawsConfig     `mapstructure:"laws"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr"`
	HTTPAddr string `mapstructure:"http_addr"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// LawsConfig picks a predicate preset and optionally replaces individual
// laws. Keys of Predicates are law ids such as "causal_time".
type LawsConfig struct {
	Preset     string                      `mapstructure:"preset"`
	Predicates map[string][]laws.Condition `mapstructure:"predicates"`
}

// #endregion config-types

// #region defaults

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "metalaw.db")
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.grpc_addr", ":50061")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("batch.workers", 8)
	v.SetDefault("laws.preset", laws.PresetDocumented)
}

// #endregion defaults

// #region load

// Load reads configuration. Precedence, lowest first: defaults, the TOML file,
// environment (a .env file in the working directory is loaded first). An
// empty path looks for metalaw.toml in the working directory and tolerates its
// absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	return LoadWithViper(NewViper(), path)
}

// LoadWithViper is Load without the .env step, for callers that manage the
// environment themselves.
func LoadWithViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("metalaw")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read metalaw.toml")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewViper returns a viper instance with defaults and environment binding
// applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// #endregion load

// #region validate

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.Batch.Workers <= 0 {
		return errors.WithHint(errors.Newf("batch.workers must be positive, got %d", c.Batch.Workers), "set batch.workers to 1 or more")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is empty")
	}
	if _, err := c.LawTable(); err != nil {
		return err
	}
	return nil
}

// LawTable builds the law predicate table from the preset and overrides.
func (c *Config) LawTable() (laws.Table, error) {
	predicates, err := laws.PresetPredicates(c.Laws.Preset)
	if err != nil {
		return laws.Table{}, errors.WithHint(err, "use \"documented\" or \"reference\"")
	}

	ids := make([]string, 0, len(c.Laws.Predicates))
	for id := range c.Laws.Predicates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		l, err := laws.Parse(id)
		if err != nil {
			return laws.Table{}, errors.Wrapf(err, "laws.predicates.%s", id)
		}
		predicates[l] = laws.Predicate(c.Laws.Predicates[id])
	}

	t, err := laws.NewTable(predicates)
	if err != nil {
		return laws.Table{}, errors.Wrap(err, "laws")
	}
	return t, nil
}

// #endregion validate
