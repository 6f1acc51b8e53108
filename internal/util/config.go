package util

import (
	"errors"
	"fmt"
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v2"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type configValue struct {
	envVarName   string
	required     bool
	errorMessage string
	defaultValue string
	Value        string
}

// Duration parses the value either as a Go duration ("200ms") or as a
// number of seconds ("0.2").
func (v configValue) Duration() (time.Duration, error) {
	return ParseDuration(v.Value)
}

func (v configValue) Int() (int, error) {
	if v.Value == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(v.Value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", v.envVarName, err)
	}

	return n, nil
}

func (v configValue) fileKey() string {
	return strings.ToLower(v.envVarName)
}

type Config struct {
	StartUrl             configValue
	SiteOrigin           configValue
	OutputStore          configValue
	PolitenessDelay      configValue
	KeywordDelimiter     configValue
	MaxPages             configValue
	FetchEngine          configValue
	FetchTimeout         configValue
	FetchMaxAttempts     configValue
	UserAgent            configValue
	DevtoolsWebsocketUrl configValue
	SeqUrl               configValue
	SeqToken             configValue
	Environment          configValue
}

const (
	FetchEngineHttp     = "http"
	FetchEngineChromedp = "chromedp"
	FetchEngineRod      = "rod"
)

func NewConfig() *Config {
	const startUrlName = "START_URL"
	const siteOriginName = "SITE_ORIGIN"
	const outputStoreName = "OUTPUT_STORE"
	const politenessDelayName = "POLITENESS_DELAY"
	const keywordDelimiterName = "KEYWORD_DELIMITER"
	const maxPagesName = "MAX_PAGES"
	const fetchEngineName = "FETCH_ENGINE"
	const fetchTimeoutName = "FETCH_TIMEOUT"
	const fetchMaxAttemptsName = "FETCH_MAX_ATTEMPTS"
	const userAgentName = "USER_AGENT"
	const devtoolsWebsocketUrlName = "DEVTOOLS_WEBSOCKET_URL"
	const seqUrlName = "SEQ_URL"
	const seqTokenName = "SEQ_TOKEN"
	const environmentName = "ENVIRONMENT"

	return &Config{
		StartUrl: configValue{
			envVarName:   startUrlName,
			required:     true,
			errorMessage: fmt.Sprintf("make sure that environment variable %s is set to a directory listing url", startUrlName),
			defaultValue: "http://www.yellowpages.com/austin-tx/apartments?g=Austin%2C+TX&order=name&refinements%5Bheadingtext%5D=Apartments",
		},
		SiteOrigin: configValue{
			envVarName:   siteOriginName,
			required:     true,
			defaultValue: "http://www.yellowpages.com",
		},
		OutputStore: configValue{
			envVarName:   outputStoreName,
			required:     true,
			errorMessage: fmt.Sprintf("make sure that environment variable %s is set to a sqlite file path or a postgres DSN", outputStoreName),
			defaultValue: "yellowPages.db3",
		},
		PolitenessDelay: configValue{
			envVarName:   politenessDelayName,
			defaultValue: "200ms",
		},
		KeywordDelimiter: configValue{
			envVarName:   keywordDelimiterName,
			defaultValue: "|",
		},
		MaxPages: configValue{
			envVarName:   maxPagesName,
			defaultValue: "0",
		},
		FetchEngine: configValue{
			envVarName:   fetchEngineName,
			defaultValue: FetchEngineHttp,
		},
		FetchTimeout: configValue{
			envVarName:   fetchTimeoutName,
			defaultValue: "30s",
		},
		FetchMaxAttempts: configValue{
			envVarName:   fetchMaxAttemptsName,
			defaultValue: "3",
		},
		UserAgent: configValue{
			envVarName:   userAgentName,
			defaultValue: "Yellow Pages Monitor",
		},
		DevtoolsWebsocketUrl: configValue{
			envVarName:   devtoolsWebsocketUrlName,
			defaultValue: "ws://127.0.0.1:7317",
		},
		SeqUrl: configValue{
			envVarName: seqUrlName,
		},
		SeqToken: configValue{
			envVarName: seqTokenName,
		},
		Environment: configValue{
			envVarName:   environmentName,
			defaultValue: "development",
		},
	}
}

func (c *Config) values() []*configValue {
	return []*configValue{
		&c.StartUrl,
		&c.SiteOrigin,
		&c.OutputStore,
		&c.PolitenessDelay,
		&c.KeywordDelimiter,
		&c.MaxPages,
		&c.FetchEngine,
		&c.FetchTimeout,
		&c.FetchMaxAttempts,
		&c.UserAgent,
		&c.DevtoolsWebsocketUrl,
		&c.SeqUrl,
		&c.SeqToken,
		&c.Environment,
	}
}

var config *Config

func GetConfig() *Config {
	if config == nil {
		c, err := load()
		if err != nil {
			log.Fatal(err)
		}
		config = c
	}

	return config
}

func load() (*Config, error) {
	config := NewConfig()

	// values from CONFIG_FILE replace built-in defaults, environment still wins
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}

		for _, v := range config.values() {
			if fv, ok := file[v.fileKey()]; ok && fv != "" {
				v.defaultValue = fv
			}
		}
	}

	for _, v := range config.values() {
		if err := populateEnv(v); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.FetchEngine.Value {
	case FetchEngineHttp, FetchEngineChromedp, FetchEngineRod:
	default:
		return fmt.Errorf("unknown fetch engine %q, expected one of %s, %s, %s",
			c.FetchEngine.Value, FetchEngineHttp, FetchEngineChromedp, FetchEngineRod)
	}

	if _, err := c.PolitenessDelay.Duration(); err != nil {
		return fmt.Errorf("invalid %s: %w", c.PolitenessDelay.envVarName, err)
	}
	if _, err := c.FetchTimeout.Duration(); err != nil {
		return fmt.Errorf("invalid %s: %w", c.FetchTimeout.envVarName, err)
	}
	if _, err := c.MaxPages.Int(); err != nil {
		return err
	}
	if _, err := c.FetchMaxAttempts.Int(); err != nil {
		return err
	}

	if c.KeywordDelimiter.Value == "" {
		return errors.New("keyword delimiter must not be empty")
	}

	return nil
}

func readConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	raw := make(map[string]interface{})
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToLower(k)] = fmt.Sprint(v)
	}

	return values, nil
}

func populateEnv(m *configValue) (err error) {
	v := os.Getenv(m.envVarName)

	if v == "" {
		v = m.defaultValue
	}

	if v == "" && m.required {
		if m.errorMessage != "" {
			return errors.New(m.errorMessage)
		}

		return fmt.Errorf("environment variable %s is not set", m.envVarName)
	}

	m.Value = v
	return nil
}

// ParseDuration accepts Go duration syntax or a plain number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}

	return d, nil
}
