// Package zerolog_config configures the global zerolog logger: pretty
// console output for local runs, plus ECS-formatted JSON shipped to an
// Elasticsearch-compatible log sink when one is configured.
package zerolog_config

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

var appPrefix string
var setAppPrefixOnce = &sync.Once{}
var startupLoggerOnce = &sync.Once{}

// ElasticsearchWriter sends logs directly to Elasticsearch
type ElasticsearchWriter struct {
	URL string
}

func (ew ElasticsearchWriter) Write(p []byte) (n int, err error) {
	resp, err := http.Post(
		ew.URL+"/_doc",
		"application/json",
		bytes.NewBuffer(p),
	)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("elasticsearch returned %d", resp.StatusCode)
	}

	return len(p), nil
}

// SetAppPrefix sets the app field attached to every log record.
func SetAppPrefix(prefix string) {
	setAppPrefixOnce.Do(func() {
		appPrefix = prefix
	})
}

// Startup sets up the global logger. elasticsearchURL may be empty, in
// which case only the console writer is installed. index names the
// Elasticsearch index to write to. Run SetAppPrefix before Startup.
func Startup(elasticsearchURL string, index string, level string) error {
	if index == "" {
		return fmt.Errorf("index is required")
	}
	startupLoggerOnce.Do(func() {
		startupLogger(elasticsearchURL, index, level)
	})
	return nil
}

func startupLogger(elasticsearchURL string, index string, level string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}

	if elasticsearchURL == "" {
		log.Logger = zerolog.New(consoleWriter).With().Str("app", appPrefix).
			Timestamp().Logger()
		return
	}

	// ECS format for Elasticsearch, pretty output on the console
	ecsLogger := ecszerolog.New(&ElasticsearchWriter{
		URL: elasticsearchURL + "/" + index,
	})

	multi := zerolog.MultiLevelWriter(
		ecsLogger,
		consoleWriter,
	)

	log.Logger = zerolog.New(multi).With().Str("app", appPrefix).
		Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
