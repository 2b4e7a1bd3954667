package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string
	Pretty bool
	Output io.Writer
}

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger()
	current.Store(&l)
}

// Init configures the process-wide logger. Unknown levels fall back to info.
func Init(cfg Config) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.CallerMarshalFunc = callerMarshalFunc

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	current.Store(&l)
	return nil
}


func Debug(msg string, args ...any) {
	write(current.Load().Debug(), msg, args)
}

func Info(msg string, args ...any) {
	write(current.Load().Info(), msg, args)
}

func Warn(msg string, args ...any) {
	write(current.Load().Warn(), msg, args)
}

func Error(msg string, args ...any) {
	write(current.Load().Error(), msg, args)
}

// ErrorStack logs err together with the current goroutine's stack.
func ErrorStack(msg string, err error, args ...any) {
	ev := current.Load().Error().Err(err).Str("stack", string(debug.Stack()))
	write(ev, msg, args)
}

// write accepts slog-style key/value pairs. A value without a key is logged
// under "error" when it is an error and under "arg" otherwise.
func write(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i++ {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			if err, isErr := args[i].(error); isErr {
				ev = ev.AnErr("error", err)
			} else {
				ev = ev.Interface("arg", args[i])
			}
			continue
		}
		val := args[i+1]
		i++
		if err, isErr := val.(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, val)
	}
	ev.Caller(2).Msg(msg)
}

// keeps only the last two path elements
func callerMarshalFunc(_ uintptr, file string, line int) string {
	parts := strings.Split(file, "/")
	if len(parts) > 1 {
		return strings.Join(parts[len(parts)-2:], "/") + ":" + strconv.Itoa(line)
	}
	return file + ":" + strconv.Itoa(line)
}
