package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fibengine/internal/errors"
)

// FileConfig is the YAML configuration file layout. Absent keys leave the
// corresponding setting untouched.
//
//	n: 40
//	count: 1000
//	policy: saturate
//	algo: all
//	wasm: ./fibwasm.wasm
//	workers: 4
//	timeout: 30s
//	server:
//	  addr: ":9090"
//	  cors_origins: ["https://example.com"]
//	  max_batch: 65536
//	log:
//	  level: debug
//	  format: console
type FileConfig struct {
	N           *uint64   `yaml:"n"`
	Count       *uint64   `yaml:"count"`
	Policy      *string   `yaml:"policy"`
	Algo        *string   `yaml:"algo"`
	Wasm        *string   `yaml:"wasm"`
	Workers     *int      `yaml:"workers"`
	Parallelism *int      `yaml:"parallelism"`
	Timeout     *Duration `yaml:"timeout"`
	GCMode      *string   `yaml:"gc_mode"`
	Output      *string   `yaml:"output"`
	NoColor     *bool     `yaml:"no_color"`
	Server      struct {
		Addr        *string  `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
		MaxBatch    *uint64  `yaml:"max_batch"`
	} `yaml:"server"`
	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

// Duration is a time.Duration decoded from a Go duration string.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// LoadFile reads and strictly decodes a YAML configuration file. Unknown keys
// are errors.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("reading config file: %v", err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML configuration data. Empty input yields an empty
// FileConfig.
func ParseFile(data []byte) (*FileConfig, error) {
	fc := &FileConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigError("parsing config file: %v", err)
	}
	return fc, nil
}

// apply copies the file's values into cfg for every setting whose flag was
// not given on the command line.
func (fc *FileConfig) apply(cfg *AppConfig, fs *flag.FlagSet) {
	set := func(names ...string) bool { return isFlagSetAny(fs, names...) }

	if fc.N != nil && !set("n") {
		cfg.N = *fc.N
	}
	if fc.Count != nil && !set("count") {
		cfg.Count = *fc.Count
	}
	if fc.Policy != nil && !set("policy") {
		cfg.Policy = *fc.Policy
	}
	if fc.Algo != nil && !set("algo") {
		cfg.Algo = *fc.Algo
	}
	if fc.Wasm != nil && !set("wasm") {
		cfg.WasmPath = *fc.Wasm
	}
	if fc.Workers != nil && !set("workers") {
		cfg.Workers = *fc.Workers
	}
	if fc.Parallelism != nil && !set("parallelism") {
		cfg.Parallelism = *fc.Parallelism
	}
	if fc.Timeout != nil && !set("timeout") {
		cfg.Timeout = time.Duration(*fc.Timeout)
	}
	if fc.GCMode != nil && !set("gc-mode") {
		cfg.GCMode = *fc.GCMode
	}
	if fc.Output != nil && !set("output", "o") {
		cfg.OutputFile = *fc.Output
	}
	if fc.NoColor != nil && !set("no-color") {
		cfg.NoColor = *fc.NoColor
	}
	if fc.Server.Addr != nil && !set("addr") {
		cfg.Addr = *fc.Server.Addr
	}
	if fc.Server.CORSOrigins != nil && !set("cors-origins") {
		cfg.AllowedOrigins = fc.Server.CORSOrigins
	}
	if fc.Server.MaxBatch != nil && !set("max-batch") {
		cfg.MaxBatchCount = *fc.Server.MaxBatch
	}
	if fc.Log.Level != nil && !set("log-level") {
		cfg.LogLevel = *fc.Log.Level
	}
	if fc.Log.Format != nil && !set("log-format") {
		cfg.LogFormat = *fc.Log.Format
	}
}
