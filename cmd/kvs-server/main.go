// Command kvs-server runs the key-value store's TCP front end, wiring
// together an engine variant and a thread pool variant chosen by flag
// or config file.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"kvs.dev/engine"
	"kvs.dev/errors"
	"kvs.dev/flags"
	"kvs.dev/kvs"
	"kvs.dev/log"
	"kvs.dev/server"
	"kvs.dev/threadpool"
)

func main() {
	preScanConfig()

	if err := flags.Parse(&flags.Addr, &flags.Dir, &flags.Engine, &flags.Pool, &flags.PoolSize, &flags.Config, &flags.Log); err != nil {
		log.Error.Printf("kvs-server: %v", err)
		os.Exit(1)
	}

	eng, err := openEngine(flags.Engine, flags.Dir)
	if err != nil {
		log.Error.Printf("kvs-server: %v", err)
		os.Exit(1)
	}

	pool, err := openPool(flags.Pool, flags.PoolSize)
	if err != nil {
		log.Error.Printf("kvs-server: %v", err)
		os.Exit(1)
	}

	srv := server.New(eng, pool)
	log.Info.Printf("kvs-server: engine=%s pool=%s pool-size=%d dir=%s", flags.Engine, flags.Pool, flags.PoolSize, flags.Dir)
	if err := srv.Run(flags.Addr); err != nil {
		log.Error.Printf("kvs-server: %v", err)
		os.Exit(1)
	}
}

// preScanConfig loads -config, if given anywhere on the command line,
// before the real flag registration in flags.Parse, so its values
// apply as defaults rather than overriding explicit flags.
func preScanConfig() {
	args := os.Args[1:]
	for i, arg := range args {
		if arg == "-config" || arg == "--config" {
			if i+1 < len(args) {
				loadConfig(args[i+1])
			}
			return
		}
		for _, prefix := range []string{"-config=", "--config="} {
			if strings.HasPrefix(arg, prefix) {
				loadConfig(strings.TrimPrefix(arg, prefix))
				return
			}
		}
	}
}

func loadConfig(path string) {
	if err := flags.LoadConfigFile(path); err != nil {
		log.Error.Printf("kvs-server: reading config %s: %v", filepath.Clean(path), err)
		os.Exit(1)
	}
}

func openEngine(name, dir string) (kvs.Cloner, error) {
	const op errors.Op = "main.openEngine"
	switch name {
	case "kvs":
		return engine.Open(dir)
	case "bolt":
		return engine.OpenBolt(filepath.Join(dir, "kvs.bolt"))
	default:
		return nil, errors.E(op, errors.StringError, errors.Errorf("unknown engine %q", name))
	}
}

func openPool(name string, size int) (threadpool.Pool, error) {
	const op errors.Op = "main.openPool"
	switch name {
	case "naive":
		return threadpool.NewNaive(size)
	case "shared-queue":
		return threadpool.NewSharedQueue(size)
	case "rayon":
		return threadpool.NewRayon(size)
	default:
		return nil, errors.E(op, errors.StringError, errors.Errorf("unknown pool %q", name))
	}
}
