package config

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VTMUX_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// envMapping maps environment variables to the setting they override.
var envMapping = map[string]func(*Config, string){
	EnvPrefix + "SHELL":     func(c *Config, v string) { c.Shell = v },
	EnvPrefix + "LOG_LEVEL": func(c *Config, v string) { c.Log.Level = v },
	EnvPrefix + "LOG_FILE":  func(c *Config, v string) { c.Log.File = v },
}

// ApplyEnv overrides settings from the environment. Set but empty
// variables are applied too.
func ApplyEnv(c *Config, lookup LookupFunc) {
	for key, set := range envMapping {
		if v, ok := lookup(key); ok {
			set(c, v)
		}
	}
}
