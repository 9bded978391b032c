package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/document"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/report"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/server"
)

const (
	app = "ats-sys"

	envPrefix = "ATS"
)

type Config struct {
	Server   server.Config            `mapstructure:"server"`
	Renderer document.RasterizerConfig `mapstructure:"renderer"`
	AI       *AIConfig                `mapstructure:"ai"`
	Report   report.Config            `mapstructure:"report"`
	Session  SessionConfig            `mapstructure:"session"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	Backend      string        `mapstructure:"backend"`
	Project      string        `mapstructure:"project"`
	Location     string        `mapstructure:"location"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	OutputDir string `mapstructure:"output-dir"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ats-sys matches PDF resumes against a job description with a multimodal model",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-sys.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.max-upload-mb", 32)
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 5*time.Minute)

	v.SetDefault("renderer.pdftoppm-path", "")
	v.SetDefault("renderer.dpi", 150)
	v.SetDefault("renderer.jpeg-quality", 90)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.backend", "gemini-api")
	v.SetDefault("ai.gemini.project", "")
	v.SetDefault("ai.gemini.location", "us-central1")
	v.SetDefault("ai.gemini.max-retries", 1)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("ai.gemini.timeout", 2*time.Minute)

	v.SetDefault("report.title", report.DefaultTitle)
	v.SetDefault("session.output-dir", ".")
}

func initConfig() {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads the config file into v. Without an explicit path a missing default file
// is not an error and only defaults and the environment apply.
func readConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	err := v.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
