package xcb

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"boscoin.io/xcb/pkg/transport"
)

const DefaultExtensionCacheSize = 32

// Config selects the display to connect to. When Fd is positive the
// connection is made on that file descriptor and Display is ignored.
type Config struct {
	Display string `yaml:"display"`
	Fd      int    `yaml:"fd"`
	// Auth is "NAME:DATA".
	Auth               string `yaml:"auth"`
	ExtensionCacheSize int    `yaml:"extension-cache-size"`
}

// NewConfig returns the defaults, taken from $DISPLAY and $XCB_AUTH.
func NewConfig() *Config {
	return &Config{
		Display:            os.Getenv("DISPLAY"),
		Fd:                 -1,
		Auth:               os.Getenv("XCB_AUTH"),
		ExtensionCacheSize: DefaultExtensionCacheSize,
	}
}

// LoadConfig reads a yaml file over the defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	config := NewConfig()
	if err := yaml.UnmarshalStrict(b, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if config.ExtensionCacheSize < 1 {
		config.ExtensionCacheSize = DefaultExtensionCacheSize
	}
	return config, nil
}

func (o *Config) authInfo() (*transport.AuthInfo, error) {
	if o.Auth == "" {
		return nil, nil
	}
	return transport.ParseAuth(o.Auth)
}
