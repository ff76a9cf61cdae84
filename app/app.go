/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package app

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ortuman/gjab/client"
	"github.com/ortuman/gjab/log"
	"github.com/ortuman/gjab/session"
	"github.com/ortuman/gjab/transport"
	"github.com/ortuman/gjab/version"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

var logoStr = []string{
	`          _       _   `,
	`   __ _  (_) __ _| |__`,
	`  / _' | | |/ _' | '_ \`,
	` | (_| | | | (_| | |_) |`,
	`  \__, |_/ |\__,_|_.__/`,
	`  |___/|__/            `,
}

const usageStr = `
Usage: gjab [options]

Client Options:
    -c, --config <file>    Configuration file path
Common Options:
    -h, --help             Show this message
    -v, --version          Show version
`

type readResult struct {
	p   []byte
	err error
}

// Application encapsulates a gjab client application.
type Application struct {
	output       io.Writer
	input        io.Reader
	args         []string
	dialer       session.Dialer
	readPassword func() (string, error)
	cl           *client.Client
	pr           *printer
	waitStopCh   chan os.Signal
}

// New returns a runnable application given an output and a command line arguments array.
func New(output io.Writer, args []string) *Application {
	return &Application{
		output:       output,
		input:        os.Stdin,
		args:         args,
		readPassword: promptPassword,
		waitStopCh:   make(chan os.Signal, 1),
	}
}

// Run runs gjab application until either the session ends,
// a quit command or a stop signal is received.
func (a *Application) Run() error {
	if len(a.args) == 0 {
		return errors.New("empty command-line arguments")
	}
	var configFile string
	var showVersion, showUsage bool

	fs := flag.NewFlagSet("gjab", flag.ExitOnError)
	fs.SetOutput(a.output)

	fs.BoolVar(&showUsage, "help", false, "Show this message")
	fs.BoolVar(&showUsage, "h", false, "Show this message")
	fs.BoolVar(&showVersion, "version", false, "Print version information.")
	fs.BoolVar(&showVersion, "v", false, "Print version information.")
	fs.StringVar(&configFile, "config", "gjab.yml", "Configuration file path.")
	fs.StringVar(&configFile, "c", "gjab.yml", "Configuration file path.")
	fs.Usage = func() {
		for i := range logoStr {
			_, _ = fmt.Fprintf(a.output, "%s\n", logoStr[i])
		}
		_, _ = fmt.Fprintf(a.output, "%s\n", usageStr)
	}
	_ = fs.Parse(a.args[1:])

	// print usage
	if showUsage {
		fs.Usage()
		return nil
	}
	// print version
	if showVersion {
		a.showVersion()
		return nil
	}
	// load configuration
	var cfg Config
	if err := cfg.FromFile(configFile); err != nil {
		return err
	}
	// initialize logger
	if err := log.Initialize(&cfg.Logger, a.output); err != nil {
		return err
	}
	defer log.Shutdown()

	log.Infof("gjab %v", version.ApplicationVersion)

	password := cfg.Account.Password
	if len(password) == 0 {
		var err error
		if password, err = a.readPassword(); err != nil {
			return errors.Wrap(err, "unable to read password")
		}
	}
	if a.dialer == nil {
		a.dialer = transport.NewDialer(cfg.dialerConfig())
	}
	a.pr = &printer{w: a.output}
	a.cl = client.New(cfg.clientConfig(), a.dialer, a.pr)

	if err := a.cl.Connect(context.Background(), cfg.Account.Username, password, cfg.Account.Resource); err != nil {
		return err
	}
	return a.loop()
}

func (a *Application) showVersion() {
	_, _ = fmt.Fprintf(a.output, "gjab version: %v\n", version.ApplicationVersion)
}

// loop is the only goroutine driving the client. Transport reads and
// command lines are produced by helper goroutines and handed over here.
func (a *Application) loop() error {
	done := make(chan struct{})
	defer close(done)

	readCh := make(chan readResult)
	go readTransport(a.cl.Session().Transport(), readCh, done)

	lineCh := make(chan string)
	go readLines(a.input, lineCh, done)

	signal.Notify(a.waitStopCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.waitStopCh)

	for {
		select {
		case r := <-readCh:
			a.cl.Receive(r.p, r.err)

		case line, ok := <-lineCh:
			if !ok {
				lineCh = nil
				a.cl.Disconnect()
				break
			}
			if a.execute(line) {
				return nil
			}

		case sig := <-a.waitStopCh:
			log.Infof("received %s signal... shutting down...", sig.String())
			a.cl.Disconnect()
		}
		if a.cl.State() == session.Offline {
			return nil
		}
	}
}

func readTransport(tr transport.Transport, readCh chan<- readResult, done <-chan struct{}) {
	for {
		b := make([]byte, transport.ReadBufferSize)
		n, err := tr.Read(b)
		select {
		case readCh <- readResult{p: b[:n], err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

func readLines(r io.Reader, lineCh chan<- string, done <-chan struct{}) {
	defer close(lineCh)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case lineCh <- sc.Text():
		case <-done:
			return
		}
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
