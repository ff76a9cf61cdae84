/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const logChanBufferSize = 512

var exitHandler = func() { os.Exit(-1) }

var (
	inst   *Logger
	instMu sync.RWMutex
)

// Logger writes leveled records to an output writer and,
// optionally, to a log file.
type Logger struct {
	level     Level
	outWriter io.Writer
	f         *os.File
	recCh     chan record
	closeCh   chan struct{}
	doneCh    chan struct{}
}

func newLogger(cfg *Config, outWriter io.Writer) (*Logger, error) {
	l := &Logger{
		level:     cfg.Level,
		outWriter: outWriter,
	}
	if len(cfg.LogPath) > 0 {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "log: create log directory")
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return nil, errors.Wrap(err, "log: open log file")
		}
		l.f = f
	}
	l.recCh = make(chan record, logChanBufferSize)
	l.closeCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	go l.loop()
	return l, nil
}

// Initialize installs the process logger writing to outWriter.
// Calling it again replaces the current logger.
func Initialize(cfg *Config, outWriter io.Writer) error {
	l, err := newLogger(cfg, outWriter)
	if err != nil {
		return err
	}
	instMu.Lock()
	prev := inst
	inst = l
	instMu.Unlock()

	if prev != nil {
		prev.close()
	}
	return nil
}

// Shutdown flushes pending records and stops the process logger.
func Shutdown() {
	instMu.Lock()
	l := inst
	inst = nil
	instMu.Unlock()

	if l != nil {
		l.close()
	}
}

func instance() *Logger {
	instMu.RLock()
	defer instMu.RUnlock()
	return inst
}

// Debugf logs a 'debug' message.
func Debugf(format string, args ...interface{}) {
	logf(DebugLevel, true, format, args...)
}

// Infof logs an 'info' message.
func Infof(format string, args ...interface{}) {
	logf(InfoLevel, true, format, args...)
}

// Warnf logs a 'warning' message.
func Warnf(format string, args ...interface{}) {
	logf(WarningLevel, true, format, args...)
}

// Errorf logs an 'error' message.
func Errorf(format string, args ...interface{}) {
	logf(ErrorLevel, true, format, args...)
}

// Error logs an 'error' value.
func Error(err error) {
	logf(ErrorLevel, true, "%v", err)
}

// Fatalf logs a 'fatal' message and terminates the application
// once the record has been written.
func Fatalf(format string, args ...interface{}) {
	logf(FatalLevel, false, format, args...)
}

func logf(level Level, async bool, format string, args ...interface{}) {
	l := instance()
	if l == nil || l.level > level {
		return
	}
	file, line := callerInfo()
	l.writeLog(file, line, format, level, async, args...)
}

type record struct {
	level      Level
	file       string
	line       int
	log        string
	continueCh chan struct{}
}

func (l *Logger) writeLog(file string, line int, format string, level Level, async bool, args ...interface{}) {
	entry := record{
		level:      level,
		file:       file,
		line:       line,
		log:        fmt.Sprintf(format, args...),
		continueCh: make(chan struct{}),
	}
	select {
	case l.recCh <- entry:
		if !async {
			<-entry.continueCh
		}
	default:
		// drop the record instead of blocking the caller
	}
}

func (l *Logger) loop() {
	defer close(l.doneCh)
	for {
		select {
		case rec := <-l.recCh:
			l.flush(rec)

		case <-l.closeCh:
			for {
				select {
				case rec := <-l.recCh:
					l.flush(rec)
				default:
					if l.f != nil {
						_ = l.f.Close()
					}
					return
				}
			}
		}
	}
}

func (l *Logger) flush(rec record) {
	tm := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("%s [%s] %s:%d - %s\n", tm, rec.level, rec.file, rec.line, rec.log)

	if l.f != nil {
		_, _ = l.f.WriteString(line)
	}
	_, _ = io.WriteString(l.outWriter, line)

	if rec.level == FatalLevel {
		exitHandler()
	}
	close(rec.continueCh)
}

func (l *Logger) close() {
	close(l.closeCh)
	<-l.doneCh
}

func callerInfo() (string, int) {
	_, file, ln, ok := runtime.Caller(3)
	if !ok {
		file = "???"
	}
	filename := filepath.Base(file)
	return strings.TrimSuffix(filename, filepath.Ext(filename)), ln
}
