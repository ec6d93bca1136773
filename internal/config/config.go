package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/go-ggwave-message/internal/audio"
	"github.com/example/go-ggwave-message/internal/encoder"
	"github.com/example/go-ggwave-message/internal/protocol"
	"github.com/example/go-ggwave-message/internal/text"
	"github.com/example/go-ggwave-message/internal/video"
)

type Config struct {
	Encode   EncodeConfig  `mapstructure:"encode"`
	Encoder  EncoderConfig `mapstructure:"encoder"`
	Output   OutputConfig  `mapstructure:"output"`
	Server   ServerConfig  `mapstructure:"server"`
	LogLevel string        `mapstructure:"log_level"`
}

type EncodeConfig struct {
	Protocol       int `mapstructure:"protocol"`
	Volume         int `mapstructure:"volume"`
	SampleRate     int `mapstructure:"sample_rate"`
	ChunkBytes     int `mapstructure:"chunk_bytes"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type EncoderConfig struct {
	Strategy   string `mapstructure:"strategy"`
	BinaryPath string `mapstructure:"binary_path"`
}

type OutputConfig struct {
	Pauses        bool    `mapstructure:"pauses"`
	PauseDuration float64 `mapstructure:"pause_duration"`
	Video         bool    `mapstructure:"video"`
	URLText       string  `mapstructure:"url_text"`
	ImagePath     string  `mapstructure:"image_path"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	Workers         int    `mapstructure:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Encode: EncodeConfig{
			Protocol:       protocol.DefaultID,
			Volume:         50,
			SampleRate:     audio.DefaultSampleRate,
			ChunkBytes:     text.DefaultChunkBytes,
			TimeoutSeconds: 30,
		},
		Encoder: EncoderConfig{
			Strategy:   encoder.StrategyAuto,
			BinaryPath: "",
		},
		Output: OutputConfig{
			Pauses:        true,
			PauseDuration: 1.0,
			Video:         false,
			URLText:       video.DefaultURLText,
			ImagePath:     "",
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 5,
			MaxTextBytes:    64 * 1024,
			Workers:         2,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.Int("encode-protocol", defaults.Encode.Protocol, "ggwave protocol id (see 'ggmsg protocols')")
	fs.Int("encode-volume", defaults.Encode.Volume, "Encoder volume (0-100)")
	fs.Int("encode-sample-rate", defaults.Encode.SampleRate, "Output sample rate in Hz")
	fs.Int("encode-chunk-bytes", defaults.Encode.ChunkBytes, "Maximum chunk size in UTF-8 bytes")
	fs.Int("encode-timeout-seconds", defaults.Encode.TimeoutSeconds, "Per-chunk encode timeout in seconds")
	fs.String("encoder-strategy", defaults.Encoder.Strategy, "Encode strategy (auto|binary|library)")
	fs.String("encoder-binary-path", defaults.Encoder.BinaryPath, "Explicit path to ggwave-to-file (overrides the search path)")
	fs.Bool("output-pauses", defaults.Output.Pauses, "Insert silence between chunks")
	fs.Float64("output-pause-duration", defaults.Output.PauseDuration, "Pause duration in seconds")
	fs.Bool("output-video", defaults.Output.Video, "Render an MP4 instead of a WAV")
	fs.String("output-url-text", defaults.Output.URLText, "URL drawn on the generated video still")
	fs.String("output-image-path", defaults.Output.ImagePath, "Still image for video output")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size for POST /encode")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent encode requests")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("GGMSG")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("encoder.binary_path", "GGMSG_GGWAVE_BIN", "GGWAVE_TO_FILE"); err != nil {
		return Config{}, fmt.Errorf("bind encoder env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("ggmsg")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Validate rejects impossible configurations before any pipeline work begins.
func (c Config) Validate() error {
	if _, err := protocol.ByID(c.Encode.Protocol); err != nil {
		return err
	}
	if c.Encode.Volume < 0 || c.Encode.Volume > 100 {
		return fmt.Errorf("invalid volume %d (valid range 0-100)", c.Encode.Volume)
	}
	if c.Encode.SampleRate < 1 {
		return fmt.Errorf("invalid sample rate %d", c.Encode.SampleRate)
	}
	if c.Encode.ChunkBytes < 1 {
		return fmt.Errorf("invalid chunk size %d bytes", c.Encode.ChunkBytes)
	}
	if c.Encode.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid timeout %d seconds", c.Encode.TimeoutSeconds)
	}
	if c.Output.PauseDuration < 0 {
		return fmt.Errorf("invalid pause duration %g seconds", c.Output.PauseDuration)
	}

	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("encode.protocol", c.Encode.Protocol)
	v.SetDefault("encode.volume", c.Encode.Volume)
	v.SetDefault("encode.sample_rate", c.Encode.SampleRate)
	v.SetDefault("encode.chunk_bytes", c.Encode.ChunkBytes)
	v.SetDefault("encode.timeout_seconds", c.Encode.TimeoutSeconds)
	v.SetDefault("encoder.strategy", c.Encoder.Strategy)
	v.SetDefault("encoder.binary_path", c.Encoder.BinaryPath)
	v.SetDefault("output.pauses", c.Output.Pauses)
	v.SetDefault("output.pause_duration", c.Output.PauseDuration)
	v.SetDefault("output.video", c.Output.Video)
	v.SetDefault("output.url_text", c.Output.URLText)
	v.SetDefault("output.image_path", c.Output.ImagePath)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("encode.protocol", "encode-protocol")
	v.RegisterAlias("encode.volume", "encode-volume")
	v.RegisterAlias("encode.sample_rate", "encode-sample-rate")
	v.RegisterAlias("encode.chunk_bytes", "encode-chunk-bytes")
	v.RegisterAlias("encode.timeout_seconds", "encode-timeout-seconds")
	v.RegisterAlias("encoder.strategy", "encoder-strategy")
	v.RegisterAlias("encoder.binary_path", "encoder-binary-path")
	v.RegisterAlias("output.pauses", "output-pauses")
	v.RegisterAlias("output.pause_duration", "output-pause-duration")
	v.RegisterAlias("output.video", "output-video")
	v.RegisterAlias("output.url_text", "output-url-text")
	v.RegisterAlias("output.image_path", "output-image-path")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("log_level", "log-level")
}
