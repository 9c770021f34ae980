package main

import (
	"flag"
	"os"
)

// serverConfig holds the server's CLI configuration.
type serverConfig struct {
	Addr             string
	LogLevel         string
	DefaultStepCutoff int
	DefaultTimeCutoff float64
}

// configResolver resolves a single configuration value from a flag or an
// environment variable, falling back to a default.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*serverConfig, string)
}

func loadServerConfig() serverConfig {
	cfg := serverConfig{}

	resolvers := []configResolver{
		{
			flagName: "addr", envVarName: "KMC_SERVER_ADDR", defaultVal: ":8090",
			description: "HTTP listen address (e.g. :8090, 0.0.0.0:8090)",
			setter:      func(c *serverConfig, v string) { c.Addr = v },
		},
		{
			flagName: "log-level", envVarName: "KMC_SERVER_LOG_LEVEL", defaultVal: "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *serverConfig, v string) { c.LogLevel = v },
		},
		{
			flagName: "default-step-cutoff", envVarName: "KMC_SERVER_DEFAULT_STEP_CUTOFF", defaultVal: "1000000",
			description: "Default step cutoff for runs that don't specify one",
			setter: func(c *serverConfig, v string) {
				c.DefaultStepCutoff = atoiOrDefault(v, 1000000)
			},
		},
		{
			flagName: "default-time-cutoff", envVarName: "KMC_SERVER_DEFAULT_TIME_CUTOFF", defaultVal: "1e9",
			description: "Default time cutoff for runs that don't specify one",
			setter: func(c *serverConfig, v string) {
				c.DefaultTimeCutoff = atofOrDefault(v, 1e9)
			},
		},
	}

	flagVars := make(map[string]*string)
	for _, r := range resolvers {
		flagVars[r.flagName] = flag.String(r.flagName, "", r.description)
	}
	flag.Parse()

	for _, r := range resolvers {
		var value string
		if *flagVars[r.flagName] != "" {
			value = *flagVars[r.flagName]
		} else if envValue := os.Getenv(r.envVarName); envValue != "" {
			value = envValue
		} else {
			value = r.defaultVal
		}
		r.setter(&cfg, value)
	}

	return cfg
}
