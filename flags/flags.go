// Package flags defines the server binary's command-line flags, plus a
// YAML config file layered underneath them.
package flags

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"kvs.dev/log"
)

// We define the flags in two steps, as upspin's flags package does, so
// callers don't have to write *flags.Flag and so the zero values double
// as documentation.
var (
	// Addr is the network address the server listens on, or the
	// client connects to.
	Addr = "127.0.0.1:4000"

	// Dir is the directory the log-structured engine owns.
	Dir = "."

	// Engine selects the storage backend: "kvs" (the log-structured
	// engine) or "bolt" (the embedded B-tree adapter).
	Engine = "kvs"

	// Pool selects the thread pool variant: "naive", "shared-queue",
	// or "rayon".
	Pool = "shared-queue"

	// PoolSize is the number of workers for pool variants that have
	// a fixed worker count.
	PoolSize = 4

	// Config names a YAML file that supplies defaults for the flags
	// above; explicit flags on the command line take precedence.
	Config = ""

	// Log sets the logging level: debug, info, error, or disabled.
	Log logFlag
)

type logFlag string

func (l *logFlag) String() string { return string(*l) }

func (l *logFlag) Set(level string) error {
	if err := log.SetLevel(level); err != nil {
		return err
	}
	*l = logFlag(log.GetLevel())
	return nil
}

func (l *logFlag) Get() interface{} { return log.GetLevel() }

// Parse registers command-line flags for the given variables and calls
// flag.Parse. Passing an unrecognized variable panics: every flag this
// module defines is listed in the switch below, so an unknown pointer
// means the caller made a mistake, not that a new flag is needed.
func Parse(vars ...interface{}) error {
	for i, v := range vars {
		unknown := false
		switch v := v.(type) {
		case *string:
			switch v {
			case &Addr:
				flag.StringVar(v, "addr", Addr, "IP:PORT to listen on or connect to")
			case &Dir:
				flag.StringVar(v, "dir", Dir, "directory the storage engine owns")
			case &Engine:
				flag.StringVar(v, "engine", Engine, "storage engine: kvs or bolt")
			case &Pool:
				flag.StringVar(v, "pool", Pool, "thread pool: naive, shared-queue, or rayon")
			case &Config:
				flag.StringVar(v, "config", Config, "`file` with YAML defaults for these flags")
			default:
				unknown = true
			}
		case *int:
			switch v {
			case &PoolSize:
				flag.IntVar(v, "pool-size", PoolSize, "number of workers for fixed-size pool variants")
			default:
				unknown = true
			}
		case *logFlag:
			switch v {
			case &Log:
				if *v == "" {
					v.Set("info")
				}
				flag.Var(v, "log", "`level` of logging: debug, info, error, disabled")
			default:
				unknown = true
			}
		default:
			unknown = true
		}
		if unknown {
			msg := fmt.Sprintf("flags: unknown flag (%#v, arg %d)", v, i)
			if reflect.TypeOf(v).Kind() != reflect.Ptr {
				msg += ", expected pointer type"
			}
			panic(msg)
		}
	}
	flag.Parse()
	return nil
}

// configFile is the shape of the YAML file named by -config.
type configFile struct {
	Addr     string `yaml:"addr"`
	Dir      string `yaml:"dir"`
	Engine   string `yaml:"engine"`
	Pool     string `yaml:"pool"`
	PoolSize int    `yaml:"pool_size"`
	Log      string `yaml:"log"`
}

// LoadConfigFile reads path as YAML and applies any fields it sets as
// new defaults for the package vars above. It must be called before
// Parse so that explicit command-line flags still win.
func LoadConfigFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decodeConfig(f)
}
