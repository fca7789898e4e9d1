package ipc

import "flag"

// Config defines buffer sizing of the link.
type Config struct {
	RxBufCount int `toml:"rx_buf_count"`
	TxBufCount int `toml:"tx_buf_count"`
	BufSize    int `toml:"buf_size"`
}

var defaultConfig = Config{
	RxBufCount: 8,
	TxBufCount: 2,
	BufSize:    384,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.RxBufCount, "rx-bufs", defaultConfig.RxBufCount, "Number of receive buffers.")
	flag.IntVar(&defaultConfig.TxBufCount, "tx-bufs", defaultConfig.TxBufCount, "Number of transmit buffers.")
	flag.IntVar(&defaultConfig.BufSize, "buf-size", defaultConfig.BufSize, "Size of each buffer in bytes.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the config.
func (c *Config) Validate() error {
	switch {
	case c.RxBufCount <= 0:
		return &ConfigError{Field: "rx buffer count", Value: c.RxBufCount}
	case c.TxBufCount <= 0:
		return &ConfigError{Field: "tx buffer count", Value: c.TxBufCount}
	case c.BufSize <= HeaderSize || c.BufSize > MaxPayloadLen:
		return &ConfigError{Field: "buffer size", Value: c.BufSize}
	}
	return nil
}

// NewDriver creates a Driver bound to dev using the config.
func (c *Config) NewDriver(dev Device, power Power) (*Driver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return newDriver(dev, power, c)
}
