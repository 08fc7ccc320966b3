package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	EnvPathVar        = "IMGPASTE_ENV"

	DefaultHotkeyCapture = "Ctrl+Alt+A"
	DefaultHotkeyOCR     = "Ctrl+Alt+X"
	DefaultHotkeyPaste   = "Ctrl+Alt+Z"

	EngineTesseract = "tesseract"
	EngineLLM       = "llm"
	LevelLine       = "line"
	LevelWord       = "word"

	DefaultLanguage       = "eng"
	DefaultOCRDeadlineSec = 20
	DefaultLineThreshold  = 10.0
	DefaultAnnotateColor  = "#ff0000"
	DefaultPortStart      = 54123
	DefaultPortEnd        = 54133
)

type LoadOptions struct {
	APIKeyPathOverride string
	EngineOverride     string
}

type Config struct {
	APIKey            string
	APIKeyPath        string
	Model             string
	Providers         []string
	EnableFileLogging bool

	HotkeyCapture string
	HotkeyOCR     string
	HotkeyPaste   string

	Engine         string
	Language       string
	Level          string
	MinConfidence  float64
	Preprocess     bool
	OCRDeadlineSec int

	LineThreshold float64
	AnnotateColor string

	PortStart int
	PortEnd   int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use IMGPASTE_ENV as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	portStart := getEnvInt("SINGLEINSTANCE_PORT_START", DefaultPortStart)
	portEnd := getEnvInt("SINGLEINSTANCE_PORT_END", DefaultPortEnd)
	if portEnd < portStart {
		portStart, portEnd = DefaultPortStart, DefaultPortEnd
	}

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		Providers:         splitList(os.Getenv("PROVIDERS")),
		EnableFileLogging: getEnvBool("ENABLE_FILE_LOGGING", false),

		HotkeyCapture: getEnvWithDefault("HOTKEY_CAPTURE", DefaultHotkeyCapture),
		HotkeyOCR:     getEnvWithDefault("HOTKEY_OCR", DefaultHotkeyOCR),
		HotkeyPaste:   getEnvWithDefault("HOTKEY_PASTE", DefaultHotkeyPaste),

		Engine:         resolveEngine(opts),
		Language:       getEnvWithDefault("OCR_LANGUAGE", DefaultLanguage),
		Level:          resolveLevel(os.Getenv("OCR_LEVEL")),
		MinConfidence:  getEnvFloat("OCR_MIN_CONFIDENCE", 0, 0),
		Preprocess:     getEnvBool("OCR_PREPROCESS", true),
		OCRDeadlineSec: getEnvInt("OCR_DEADLINE_SEC", DefaultOCRDeadlineSec),

		LineThreshold: getEnvFloat("LINE_THRESHOLD", DefaultLineThreshold, 0),
		AnnotateColor: getEnvWithDefault("ANNOTATE_COLOR", DefaultAnnotateColor),

		PortStart: portStart,
		PortEnd:   portEnd,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func resolveEngine(opts LoadOptions) string {
	value := os.Getenv("OCR_ENGINE")
	if override := strings.TrimSpace(opts.EngineOverride); override != "" {
		value = override
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case EngineLLM, "openrouter":
		return EngineLLM
	default:
		return EngineTesseract
	}
}

func resolveLevel(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case LevelWord, "words":
		return LevelWord
	default:
		return LevelLine
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// getEnvInt accepts only positive integers.
func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat returns defaultValue unless the variable parses to a value >= floor.
func getEnvFloat(key string, defaultValue, floor float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= floor {
			return f
		}
	}
	return defaultValue
}
