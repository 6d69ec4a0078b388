// Package gclog is a small leveled logger in the glog style: package-level
// Info/Warning/Error functions plus a verbosity-gated fast path so hot
// collection code avoids formatting work when nobody is listening.
package gclog

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

var (
	std = log.New(os.Stderr, "", log.Ldate|log.Lmicroseconds|log.Lshortfile)
	v   int32
)

// SetV sets the global verbosity threshold consulted by FastV.
func SetV(level int) { atomic.StoreInt32(&v, int32(level)) }

// FastV reports whether module-scoped logging at the given verbosity level
// is currently enabled. Callers guard expensive log-line construction with
// it instead of always formatting and letting the logger discard the
// result.
func FastV(level int, _module string) bool {
	return atomic.LoadInt32(&v) >= int32(level)
}

func Infoln(v ...interface{})            { std.Output(2, "I "+fmt.Sprintln(v...)) }
func Infof(format string, a ...any)      { std.Output(2, "I "+fmt.Sprintf(format, a...)) }
func Warningln(v ...interface{})         { std.Output(2, "W "+fmt.Sprintln(v...)) }
func Warningf(format string, a ...any)   { std.Output(2, "W "+fmt.Sprintf(format, a...)) }
func Errorln(v ...interface{})           { std.Output(2, "E "+fmt.Sprintln(v...)) }
func Errorf(format string, a ...any)     { std.Output(2, "E "+fmt.Sprintf(format, a...)) }
