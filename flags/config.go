package flags

import (
	"io"

	yaml "gopkg.in/yaml.v2"
)

// decodeConfig parses YAML from r and layers any fields it sets on top
// of the package's current defaults, following the same
// config-file-under-flags idiom as upspin's config package.
func decodeConfig(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var c configFile
	if err := yaml.Unmarshal(b, &c); err != nil {
		return err
	}
	if c.Addr != "" {
		Addr = c.Addr
	}
	if c.Dir != "" {
		Dir = c.Dir
	}
	if c.Engine != "" {
		Engine = c.Engine
	}
	if c.Pool != "" {
		Pool = c.Pool
	}
	if c.PoolSize != 0 {
		PoolSize = c.PoolSize
	}
	if c.Log != "" {
		Log.Set(c.Log)
	}
	return nil
}
