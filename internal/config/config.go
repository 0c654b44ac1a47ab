// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAPIPort       = "8080"
	defaultSPARQLTimeout = 30 * time.Second
)

// Config holds everything the service needs to talk to the graph store,
// the loader endpoint and Step Functions.
type Config struct {
	// PipelineID scopes every ledger graph written by this deployment.
	PipelineID string
	// IDBase is the base IRI under which load request subjects are minted.
	IDBase string
	// GraphBase is the base IRI of the per-pipeline ledger graphs.
	GraphBase string

	SPARQLLoaderEndpoint string
	SPARQLQueryEndpoint  string
	SPARQLUpdateEndpoint string
	SPARQLTimeout        time.Duration

	NeptuneLoadIAMRoleARN string
	AWSRegion             string
	RDFLoadSfnARN         string

	APIPort string
}

var envKeys = []string{
	"EKG_PIPELINE_ID",
	"EKG_ID_BASE",
	"EKG_GRAPH_BASE",
	"EKG_SPARQL_LOADER_ENDPOINT",
	"EKG_SPARQL_QUERY_ENDPOINT",
	"EKG_SPARQL_UPDATE_ENDPOINT",
	"AWS_NEPTUNE_LOAD_IAM_ROLE_ARN",
	"AWS_REGION",
	"RDF_LOAD_SFN_ARN",
	"API_PORT",
	"SPARQL_TIMEOUT_SECONDS",
}

// Load reads the configuration from environment variables. Every
// mandatory variable that is missing is reported by name.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range envKeys {
		v.BindEnv(key)
	}

	cfg := Config{
		PipelineID:            v.GetString("EKG_PIPELINE_ID"),
		IDBase:                v.GetString("EKG_ID_BASE"),
		GraphBase:             v.GetString("EKG_GRAPH_BASE"),
		SPARQLLoaderEndpoint:  v.GetString("EKG_SPARQL_LOADER_ENDPOINT"),
		SPARQLQueryEndpoint:   v.GetString("EKG_SPARQL_QUERY_ENDPOINT"),
		SPARQLUpdateEndpoint:  v.GetString("EKG_SPARQL_UPDATE_ENDPOINT"),
		SPARQLTimeout:         defaultSPARQLTimeout,
		NeptuneLoadIAMRoleARN: v.GetString("AWS_NEPTUNE_LOAD_IAM_ROLE_ARN"),
		AWSRegion:             v.GetString("AWS_REGION"),
		RDFLoadSfnARN:         v.GetString("RDF_LOAD_SFN_ARN"),
		APIPort:               v.GetString("API_PORT"),
	}

	if cfg.APIPort == "" {
		cfg.APIPort = defaultAPIPort
	}
	if seconds := v.GetInt("SPARQL_TIMEOUT_SECONDS"); seconds > 0 {
		cfg.SPARQLTimeout = time.Duration(seconds) * time.Second
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	mandatory := []struct {
		key   string
		value string
	}{
		{"EKG_PIPELINE_ID", c.PipelineID},
		{"EKG_ID_BASE", c.IDBase},
		{"EKG_GRAPH_BASE", c.GraphBase},
		{"EKG_SPARQL_LOADER_ENDPOINT", c.SPARQLLoaderEndpoint},
		{"EKG_SPARQL_QUERY_ENDPOINT", c.SPARQLQueryEndpoint},
		{"AWS_NEPTUNE_LOAD_IAM_ROLE_ARN", c.NeptuneLoadIAMRoleARN},
		{"AWS_REGION", c.AWSRegion},
		{"RDF_LOAD_SFN_ARN", c.RDFLoadSfnARN},
	}
	for _, m := range mandatory {
		if m.value == "" {
			return fmt.Errorf("mandatory environment variable %s is not set", m.key)
		}
	}
	return nil
}
