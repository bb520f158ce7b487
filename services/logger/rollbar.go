package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelFatal Level = "FATAL"
)

// RollbarLogger prints one line per call on std and reports warnings and
// errors to rollbar. Debug lines are only printed in debug mode.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected args: error, map[string]interface{}, auth.Principal
func (l RollbarLogger) report(level string, msg string, args []interface{}) {
	var personSet bool
	interfaces := make([]interface{}, 0, len(args)+1)
	interfaces = append(interfaces, msg)
	for _, arg := range args {
		if p, ok := arg.(auth.Principal); ok {
			if !personSet && p.IsAuthenticated() { // rollbar tracks a single person
				rollbar.SetPerson(strconv.Itoa(p.ID), p.Role.String(), "")
				personSet = true
			}
			continue
		}
		interfaces = append(interfaces, arg)
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, interfaces...)
}

// line renders msg and its args as `LEVEL msg principal=ID/role key=value error="..."`.
// Map keys are sorted so lines are stable.
func line(level Level, msg string, args []interface{}) string {
	var b strings.Builder
	b.WriteString(string(level))
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case auth.Principal:
			if !a.IsAuthenticated() {
				b.WriteString(" principal=anonymous")
				break
			}
			fmt.Fprintf(&b, " principal=%d/%s", a.ID, a.Role)
		case error:
			fmt.Fprintf(&b, " error=%q", a.Error())
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, a[k])
			}
		default:
			fmt.Fprintf(&b, " %v", a)
		}
	}
	return b.String()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.std.Println(line(LevelDebug, msg, args))
	}
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.std.Println(line(LevelInfo, msg, args))
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
	l.std.Println(line(LevelWarn, msg, args))
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
	l.std.Println(line(LevelError, msg, args))
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(line(LevelFatal, msg, args))
}
