package sh

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/nble.go/pkg/env"
	fx "github.com/robotalks/nble.go/pkg/framework"
	"github.com/robotalks/nble.go/pkg/ipc"
	"github.com/robotalks/nble.go/pkg/netbuf"
	"github.com/robotalks/nble.go/pkg/rpc"
)

// Shell provides ishell backed interactive shell over an opened link.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Env    *env.Env
	Client *rpc.Client
	Runner *fx.Runner
}

const (
	shellKey = "$shell"
	prompt   = "nble > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&SendCmd,
		&CallCmd,
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell on e. Received calls are printed, and also
// forwarded to the bridge if e has one.
func New(e *env.Env) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Env:    e,
		Client: rpc.NewClient(e.Driver),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	disp := rpc.NewDispatcher()
	disp.Unhandled = s.printCall
	handlers := ipc.Handlers{ipc.HandleFrameFunc(s.printFrame(disp))}
	if e.Bridge != nil {
		handlers = append(handlers, e.Bridge)
	}
	e.Driver.SetHandler(handlers)
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// CallRecord is the JSON form of a received call.
type CallRecord struct {
	Channel  uint8  `json:"channel"`
	SourceID uint8  `json:"source"`
	Func     uint64 `json:"func"`
	Body     string `json:"body"`
}

type frameKey struct{}

func (s *Shell) printFrame(disp *rpc.Dispatcher) func(context.Context, *netbuf.Buffer) {
	return func(ctx context.Context, buf *netbuf.Buffer) {
		ctx = context.WithValue(ctx, frameKey{}, ipc.RxHeader(buf))
		if err := disp.Dispatch(ctx, buf.Bytes()); err != nil {
			s.Shell.Printf("< malformed %x\n", buf.Bytes())
		}
	}
}

func (s *Shell) printCall(ctx context.Context, id uint64, body []byte) {
	h, _ := ctx.Value(frameKey{}).(ipc.Header)
	if s.OutputJSON {
		out, _ := json.Marshal(&CallRecord{
			Channel:  h.Channel,
			SourceID: h.SourceID,
			Func:     id,
			Body:     hex.EncodeToString(body),
		})
		s.Shell.Println(string(out))
		return
	}
	s.Shell.Printf("< [%d:%d] %d %x\n", h.Channel, h.SourceID, id, body)
}

// ParseHex parses hex bytes, separated by spaces or not.
func ParseHex(args []string) ([]byte, error) {
	return hex.DecodeString(strings.Join(args, ""))
}

// Run starts the link and runs the shell.
func (s *Shell) Run(args ...string) {
	s.Runner = fx.NewRunner()
	if err := s.Env.Start(s.Runner); err != nil {
		log.Fatalln(err)
	}
	defer func() {
		s.Runner.Stop()
		if err := s.Runner.Wait(); err != nil {
			log.Println(err)
		}
	}()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// SendCmd sends a raw payload.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "HEX...",
		Func: func(c *ishell.Context) {
			payload, err := ParseHex(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Env.Driver.Send(payload); err != nil {
				c.Err(err)
			}
		},
	}

	// CallCmd sends a call.
	CallCmd = ishell.Cmd{
		Name:    "call",
		Aliases: []string{"c"},
		Help:    "FUNC-ID [HEX...]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("function id required"))
				return
			}
			id, err := strconv.ParseUint(c.Args[0], 0, 64)
			if err != nil {
				c.Err(err)
				return
			}
			body, err := ParseHex(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Client.Call(id, body); err != nil {
				c.Err(err)
			}
		},
	}

	// StatsCmd prints link counters and free buffers.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			d := s.Env.Driver
			stats := d.Stats()
			if s.OutputJSON {
				out, err := json.Marshal(struct {
					ipc.Stats
					RxFree   int    `json:"rx_free"`
					TxFree   int    `json:"tx_free"`
					Overruns uint64 `json:"overruns"`
				}{stats, d.RxPool().Free(), d.TxPool().Free(), s.Env.Port.Overruns()})
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			c.Printf("rx: %d frames %d bytes, dropped %d (exhausted %d oversized %d queue-full %d)\n",
				stats.RxFrames, stats.RxBytes, stats.RxDropped(),
				stats.RxExhausted, stats.RxOversized, stats.RxQueueFull)
			c.Printf("tx: %d frames %d bytes, %d errors\n", stats.TxFrames, stats.TxBytes, stats.TxErrors)
			c.Printf("buffers: rx %d/%d tx %d/%d free\n",
				d.RxPool().Free(), d.RxPool().Count(), d.TxPool().Free(), d.TxPool().Count())
			c.Printf("spurious: %d overruns: %d\n", stats.Spurious, s.Env.Port.Overruns())
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := env.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	New(conf.MustNewEnv()).Run(flag.Args()...)
}
