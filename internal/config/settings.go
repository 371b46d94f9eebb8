package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable, e.g. ROADMAP_DB.
const EnvPrefix = "ROADMAP"

// Keys shared by flags and environment variables.
const (
	KeyDB     = "db"
	KeyAddr   = "addr"
	KeyLabels = "labels"
	KeyPlan   = "plan"
)

// DefaultAddr is where `roadmap serve` listens.
const DefaultAddr = "127.0.0.1:8080"

// Settings are the process options after flags, env and defaults.
type Settings struct {
	DBPath     string
	Addr       string
	LabelsPath string
	Plan       string
}

// NewViper returns a viper instance reading ROADMAP_* variables, with
// dashes in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyDB, DefaultDBPath())
	v.SetDefault(KeyAddr, DefaultAddr)
	return v
}

// AddFlags registers the persistent flags and binds them to v. A flag set on
// the command line wins over the environment.
func AddFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String(KeyDB, "", "database path (env ROADMAP_DB, default ~/.roadmap/roadmap.db)")
	fs.String(KeyLabels, "", "labels file localizing exports and prompts (env ROADMAP_LABELS)")
	fs.StringP(KeyPlan, "p", "", "plan to work on (env ROADMAP_PLAN)")
	for _, key := range []string{KeyDB, KeyLabels, KeyPlan} {
		_ = v.BindPFlag(key, fs.Lookup(key))
	}
}

// AddServeFlags registers the server flags and binds them to v.
func AddServeFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String(KeyAddr, "", "listen address (env ROADMAP_ADDR, default "+DefaultAddr+")")
	_ = v.BindPFlag(KeyAddr, fs.Lookup(KeyAddr))
}

// FromViper reads the settings. A flag bound but left empty falls through
// to the environment and then the default.
func FromViper(v *viper.Viper) Settings {
	get := func(key, fallback string) string {
		if s := v.GetString(key); s != "" {
			return s
		}
		return fallback
	}
	return Settings{
		DBPath:     get(KeyDB, DefaultDBPath()),
		Addr:       get(KeyAddr, DefaultAddr),
		LabelsPath: v.GetString(KeyLabels),
		Plan:       v.GetString(KeyPlan),
	}
}

// DefaultDBPath is ~/.roadmap/roadmap.db, or roadmap.db in the working
// directory when there is no home.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "roadmap.db"
	}
	return filepath.Join(home, ".roadmap", "roadmap.db")
}
