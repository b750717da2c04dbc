package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/events"
	"github.com/spigell/skillmatch/internal/headhunter"
	"github.com/spigell/skillmatch/internal/storage"
)

const (
	app       = "skillmatch"
	envPrefix = "SKILLMATCH"
)

type Config struct {
	Storage    storage.Config           `mapstructure:"storage"`
	Cache      CacheConfig              `mapstructure:"cache"`
	AI         AIConfig                 `mapstructure:"ai"`
	Events     EventsConfig             `mapstructure:"events"`
	HeadHunter HeadHunterConfig         `mapstructure:"headhunter"`
	Search     *headhunter.SearchParams `mapstructure:"search"`
}

type CacheConfig struct {
	IDLength int `mapstructure:"id-length" validate:"gte=0,lte=32"`
}

type AIConfig struct {
	// Provider is xai, gemini or none. Empty picks the first provider with a key.
	Provider     string        `mapstructure:"provider" validate:"omitempty,oneof=xai gemini none"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
	XAI          XAIConfig     `mapstructure:"xai"`
	Gemini       GeminiConfig  `mapstructure:"gemini"`
}

type XAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries" validate:"gte=0"`
}

type EventsConfig struct {
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange"`
}

type HeadHunterConfig struct {
	// TokenFile is optional, public vacancy search works anonymously.
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "skillmatch builds skill trees from resumes and job postings and matches them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	validate = validator.New()
)

// Execute executes the root command. ctx is cancelled on interrupt by the caller.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", storage.BackendFS)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.sqlite-path", "")
	v.SetDefault("storage.postgres-dsn", "")
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access-key", "")
	v.SetDefault("storage.s3.secret-key", "")
	v.SetDefault("storage.s3.path-style", false)
	v.SetDefault("cache.id-length", cache.DefaultIDLength)
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.timeout", ai.DefaultTimeout)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.xai.api-key-file", "")
	v.SetDefault("ai.xai.model", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("events.url", "")
	v.SetDefault("events.exchange", events.DefaultExchange)
	v.SetDefault("headhunter.user-agent", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Provider keys keep the names the providers document.
	v.BindEnv("ai.xai.api-key", "XAI_API_KEY", envPrefix+"_AI_XAI_API_KEY")
	v.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY", envPrefix+"_AI_GEMINI_API_KEY")
	v.BindEnv("headhunter.token-file", "HH_TOKEN_FILE", envPrefix+"_HEADHUNTER_TOKEN_FILE")
}

func initConfig() {
	// A missing .env file is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cobra.CheckErr(fmt.Errorf("loading .env: %w", err))
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			cobra.CheckErr(fmt.Errorf("reading config: %w", err))
		}
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
