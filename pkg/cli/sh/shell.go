// Package sh provides the interactive shell talking to L1 nodes.
package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	env "github.com/robotalks/cec.go/pkg/l1/env/connector"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

// DefaultCommandTimeout bounds the wait for a reply.
const DefaultCommandTimeout = 2 * time.Second

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	// ShowEvents prints the events published by the connected node.
	ShowEvents bool

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop
}

// ConnLoop is a running loop with a node connection.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Ref    l1.ControllerRef
	Loop   *fx.Loop
	Conn   l1.ControllerConn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool
	showEvents = true

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&EventsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&showEvents, "events", showEvents, "Print events from the node.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		ShowEvents:  showEvents && !evalOnly,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// FormatMessage renders a message for display, as JSON when asked.
func (s *Shell) FormatMessage(msg fx.Message) (string, error) {
	if s.OutputJSON {
		sm, ok := msg.(msgs.SerializableMessage)
		if !ok {
			return "", msgs.ErrNotSerializable
		}
		out, err := json.Marshal(sm.Serializable())
		return string(out), err
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		return "OK", nil
	}
	return msgs.Describe(msg), nil
}

// DoCommand runs a command and waits for result.
func DoCommand(c *ishell.Context, msg fx.Message) (fx.Message, error) {
	s := ShellFrom(c)
	if s.Loop == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return nil, err
	}
	ctx, cancel := context.WithTimeout(s.Loop.Ctx, DefaultCommandTimeout)
	defer cancel()
	reply, err := l1.Wait(ctx, s.Loop.Conn.DoCommand(msg))
	if err == context.DeadlineExceeded {
		err = fmt.Errorf("command timeout")
	}
	if err != nil {
		c.Err(err)
		return nil, err
	}
	out, err := s.FormatMessage(reply)
	if err != nil {
		c.Err(err)
		return reply, err
	}
	c.Println(out)
	return reply, nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverControllers discovers nodes.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) (l1.Connector, []l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	infoList, err := connector.Discover(context.Background())
	if err != nil {
		return connector, nil, err
	}
	if filter != nil {
		items := make([]l1.ControllerInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return connector, infoList, nil
}

// SelectController discovers nodes and asks for a choice.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (l1.Connector, *l1.ControllerInfo, error) {
	connector, infoList, err := s.DiscoverControllers(filter)
	if err != nil {
		return nil, nil, err
	}
	if len(infoList) == 0 {
		return connector, nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, nil, fmt.Errorf("more than 1 nodes discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return connector, &infoList[index], nil
}

// Connect connects the node with ref.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	connLoop := &ConnLoop{Ref: ref}
	connLoop.Ctx, connLoop.Cancel = context.WithCancel(context.Background())
	if connLoop.Conn, err = connector.Connect(connLoop.Ctx, ref); err != nil {
		connLoop.Cancel()
		return err
	}
	connLoop.Loop = fx.NewLoop()
	if adder, ok := connLoop.Conn.(fx.LoopAdder); ok {
		connLoop.Loop.Add(adder)
	}
	s.Disconnect()
	s.Loop = connLoop
	go connLoop.Loop.Run(connLoop.Ctx)
	go s.printEvents(connLoop)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

func (s *Shell) printEvents(connLoop *ConnLoop) {
	for {
		select {
		case <-connLoop.Ctx.Done():
			return
		case msg := <-connLoop.Conn.Events():
			if !s.ShowEvents {
				continue
			}
			out, err := s.FormatMessage(msg)
			if err != nil {
				continue
			}
			s.Shell.Printf("* %s\n", out)
		}
	}
}

// Disconnect disconnects current node.
func (s *Shell) Disconnect() {
	if s.Loop != nil {
		s.Loop.Cancel()
		s.Loop.Conn.Close()
		s.Loop = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		ref := s.Config.Ref
		if !ref.IsValid() {
			_, info, err := s.SelectController(func(info l1.ControllerInfo) bool {
				return ref.Type == "" || info.Ref.Type == ref.Type
			})
			if err == nil && info != nil {
				ref = info.Ref
			}
		}
		if ref.IsValid() {
			if s.Interactive {
				s.Shell.Printf("Connecting %s ...\n", ref.Name())
			}
			if err := s.Connect(ref); err != nil {
				log.Fatalf("connect %q failed: %v", ref.Name(), err)
			}
		}
	}

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
	// DiscoverCmd discovers nodes.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			_, infoList, err := s.DiscoverControllers(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					infoList = []l1.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No nodes found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a node.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TYPE ID",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref l1.ControllerRef
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			} else {
				var filter func(l1.ControllerInfo) bool
				if len(c.Args) == 1 {
					filter = func(info l1.ControllerInfo) bool {
						return info.Ref.Type == c.Args[0]
					}
				}
				_, info, err := s.SelectController(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no node discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current node.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// EventsCmd toggles event printing.
	EventsCmd = ishell.Cmd{
		Name: "events",
		Help: "on|off",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.ShowEvents = c.Args[0] == "on"
			}
			c.Printf("events %v\n", s.ShowEvents)
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
