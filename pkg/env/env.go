// Package env assembles the link from configuration: the UART, the driver
// and the optional MQTT bridge.
package env

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/nble.go/pkg/bridge/mqtt"
	fx "github.com/robotalks/nble.go/pkg/framework"
	"github.com/robotalks/nble.go/pkg/ipc"
	"github.com/robotalks/nble.go/pkg/uart"
)

// Config aggregates all configurations.
type Config struct {
	Port    uart.Config `toml:"port"`
	Buffers ipc.Config  `toml:"buffers"`

	// MQTTURL enables the bridge, e.g. mqtt://host:port/topic-prefix/.
	// Without a topic prefix nble/<machine-id>/ is used.
	MQTTURL string `toml:"mqtt_url"`
}

var (
	configFile string
	mqttURL    string
)

func init() {
	mqttURL = os.Getenv("NBLE_MQTT_URL")
}

// SetupFlags sets command line flags of all components.
func SetupFlags() {
	uart.SetupFlags()
	ipc.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "TOML config file, overrides flags.")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL to bridge frames.")
}

// NewConfig creates a config from flags and the config file if specified.
func NewConfig() (*Config, error) {
	c := &Config{
		Port:    *uart.NewConfig(),
		Buffers: *ipc.NewConfig(),
		MQTTURL: mqttURL,
	}
	if configFile != "" {
		if err := c.Load(configFile); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load overrides the config with values from a TOML file.
func (c *Config) Load(fn string) error {
	md, err := toml.DecodeFile(fn, c)
	if err != nil {
		return errors.Wrapf(err, "load config %s", fn)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		glog.Warningf("%s: unknown keys %v", fn, keys)
	}
	return nil
}

// Env is an opened link.
type Env struct {
	Config *Config
	Port   *uart.Port
	Driver *ipc.Driver
	Bridge *mqtt.Bridge
}

// NewEnv opens the port and the driver. The bridge is created but not
// connected until run.
func (c *Config) NewEnv() (*Env, error) {
	port, power, err := c.Port.Open()
	if err != nil {
		return nil, err
	}
	e := &Env{Config: c, Port: port}
	if e.Driver, err = c.Buffers.NewDriver(port, power); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "create driver")
	}
	if c.MQTTURL != "" {
		if e.Bridge, err = newBridge(c.MQTTURL, e.Driver); err != nil {
			port.Close()
			return nil, errors.Wrapf(err, "bridge %s", c.MQTTURL)
		}
		e.Driver.SetHandler(e.Bridge)
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

func newBridge(brokerURL string, link mqtt.Sender) (*mqtt.Bridge, error) {
	opts, prefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = appID + "/" + MachineID() + "/"
	}
	if opts.ClientID == "" {
		opts.SetClientID(prefix)
	}
	return mqtt.NewBridge(mqtt.NewQueue(opts, prefix), link), nil
}

// Start opens the driver and starts the port, the driver and the bridge
// on the runner. The port is closed when the runner stops.
func (e *Env) Start(r *fx.Runner) error {
	r.Go(fx.NamedRun(e.Port.Name(), fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithCloser(ctx, e.Port, e.Port)
	})))
	if err := e.Driver.Open(); err != nil {
		r.Stop()
		return errors.Wrap(err, "open driver")
	}
	r.Go(e.Driver)
	if e.Bridge != nil {
		r.Go(e.Bridge)
	}
	return nil
}
