package uart

import (
	"flag"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/net/websocket"

	"github.com/robotalks/nble.go/pkg/ipc"
)

// Config defines how the UART is opened.
type Config struct {
	// Device is a serial device path, or a ws:// or wss:// URL of a
	// serial-over-websocket bridge.
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud_rate"`
	FIFOSize int    `toml:"fifo_size"`
	// LineReset drives coprocessor reset with DTR and wake with RTS.
	LineReset bool `toml:"line_reset"`
}

var defaultConfig = Config{
	Device:   "/dev/ttyUSB0",
	BaudRate: 1000000,
	FIFOSize: DefaultFIFOSize,
}

func init() {
	if val := os.Getenv("NBLE_PORT"); val != "" {
		defaultConfig.Device = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "port", defaultConfig.Device, "Serial device or ws:// URL.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate.")
	flag.IntVar(&defaultConfig.FIFOSize, "fifo", defaultConfig.FIFOSize, "Receive FIFO size in bytes.")
	flag.BoolVar(&defaultConfig.LineReset, "line-reset", defaultConfig.LineReset, "Reset coprocessor using DTR/RTS.")
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

// IsWebSocket tells if Device is a websocket URL.
func (c *Config) IsWebSocket() bool {
	return strings.HasPrefix(c.Device, "ws://") || strings.HasPrefix(c.Device, "wss://")
}

// Open opens the device and returns the Port with the Power controlling
// the coprocessor.
func (c *Config) Open() (*Port, ipc.Power, error) {
	if c.Device == "" {
		return nil, nil, ipc.ErrNoDevice
	}
	if c.IsWebSocket() {
		stream, err := dialWebSocket(c.Device)
		if err != nil {
			return nil, nil, err
		}
		return NewPort(stream, c.FIFOSize), ipc.NopPower{}, nil
	}
	sp, err := serial.Open(c.Device, &serial.Mode{BaudRate: c.BaudRate})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", c.Device)
	}
	var power ipc.Power = ipc.NopPower{}
	if c.LineReset {
		power = &LineReset{Lines: sp, Hold: DefaultResetHold}
	}
	return NewPort(sp, c.FIFOSize), power, nil
}

func dialWebSocket(url string) (io.ReadWriteCloser, error) {
	origin := "http://localhost/"
	if strings.HasPrefix(url, "wss://") {
		origin = "https://localhost/"
	}
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// DefaultResetHold is how long reset is held before release.
const DefaultResetHold = time.Millisecond
