package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

type fakeCmd struct {
	fs *pflag.FlagSet
}

func (f *fakeCmd) Flags() *pflag.FlagSet { return f.fs }

func newFakeCmd() *fakeCmd {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())
	return &fakeCmd{fs: fs}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Encode.Protocol != 5 {
		t.Errorf("default protocol = %d, want 5", cfg.Encode.Protocol)
	}
	if cfg.Encode.Volume != 50 {
		t.Errorf("default volume = %d, want 50", cfg.Encode.Volume)
	}
	if cfg.Encode.SampleRate != 48000 {
		t.Errorf("default sample rate = %d, want 48000", cfg.Encode.SampleRate)
	}
	if cfg.Encode.ChunkBytes != 600 {
		t.Errorf("default chunk bytes = %d, want 600", cfg.Encode.ChunkBytes)
	}
	if cfg.Encode.TimeoutSeconds != 30 {
		t.Errorf("default timeout = %d, want 30", cfg.Encode.TimeoutSeconds)
	}
	if !cfg.Output.Pauses {
		t.Error("pauses should default to on")
	}
	if cfg.Output.PauseDuration != 1.0 {
		t.Errorf("default pause duration = %g, want 1.0", cfg.Output.PauseDuration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad_DefaultsWithoutFileOrFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("loaded config diverges from defaults: %+v", cfg)
	}
}

func TestLoad_FlagOverridesDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newFakeCmd()
	if err := cmd.fs.Set("encode-protocol", "2"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.fs.Set("output-video", "true"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Cmd: cmd, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Encode.Protocol != 2 {
		t.Errorf("protocol = %d, want flag value 2", cfg.Encode.Protocol)
	}
	if !cfg.Output.Video {
		t.Error("video flag was not applied")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	content := `
encode:
  protocol: 1
  volume: 80
output:
  pause_duration: 2.5
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{ConfigFile: path, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Encode.Protocol != 1 {
		t.Errorf("protocol = %d, want 1 from file", cfg.Encode.Protocol)
	}
	if cfg.Encode.Volume != 80 {
		t.Errorf("volume = %d, want 80 from file", cfg.Encode.Volume)
	}
	if cfg.Output.PauseDuration != 2.5 {
		t.Errorf("pause duration = %g, want 2.5 from file", cfg.Output.PauseDuration)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	// Untouched keys keep defaults.
	if cfg.Encode.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want default 48000", cfg.Encode.SampleRate)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: "/does/not/exist.yaml", Defaults: DefaultConfig()})
	if err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GGMSG_ENCODE_VOLUME", "75")
	t.Setenv("GGMSG_GGWAVE_BIN", "/opt/ggwave/bin/ggwave-to-file")

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Encode.Volume != 75 {
		t.Errorf("volume = %d, want env value 75", cfg.Encode.Volume)
	}
	if cfg.Encoder.BinaryPath != "/opt/ggwave/bin/ggwave-to-file" {
		t.Errorf("binary path = %q, want env value", cfg.Encoder.BinaryPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "protocol 11 valid", mutate: func(c *Config) { c.Encode.Protocol = 11 }},
		{name: "protocol 12 invalid", mutate: func(c *Config) { c.Encode.Protocol = 12 }, wantErr: true},
		{name: "negative protocol", mutate: func(c *Config) { c.Encode.Protocol = -1 }, wantErr: true},
		{name: "volume above range", mutate: func(c *Config) { c.Encode.Volume = 150 }, wantErr: true},
		{name: "zero sample rate", mutate: func(c *Config) { c.Encode.SampleRate = 0 }, wantErr: true},
		{name: "zero chunk bytes", mutate: func(c *Config) { c.Encode.ChunkBytes = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Encode.TimeoutSeconds = 0 }, wantErr: true},
		{name: "negative pause", mutate: func(c *Config) { c.Output.PauseDuration = -0.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
