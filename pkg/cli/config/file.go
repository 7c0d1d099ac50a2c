package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// File is the optional TOML configuration file. Flags always win over file
// values; the file covers what flags can't express well, like the MIME
// override table.
//
//	[mime_types]
//	".wasm" = "application/wasm"
type File struct {
	MIMETypes map[string]string `toml:"mime_types"`
}

// LoadFile reads and validates a TOML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var cfg File
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	for ext := range cfg.MIMETypes {
		if !strings.HasPrefix(ext, ".") {
			return nil, goerr.New("mime_types keys must start with a dot",
				goerr.V("key", ext),
			)
		}
	}

	return &cfg, nil
}
