package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to the sub logger
// output
func Info(sl *SubLogger, data string) {
	sl.getFields().stage(infoLevel, data)
}

// Infoln takes a pointer subLogger struct and interface sends to the sub
// logger output
func Infoln(sl *SubLogger, v ...any) {
	sl.getFields().stage(infoLevel, fmt.Sprint(v...))
}

// Infof takes a pointer subLogger struct, string and interface formats sends
// to the sub logger output
func Infof(sl *SubLogger, data string, v ...any) {
	sl.getFields().stage(infoLevel, fmt.Sprintf(data, v...))
}

// Debug takes a pointer subLogger struct and string sends to the sub logger
// output
func Debug(sl *SubLogger, data string) {
	sl.getFields().stage(debugLevel, data)
}

// Debugln takes a pointer subLogger struct, string and interface sends to the
// sub logger output
func Debugln(sl *SubLogger, v ...any) {
	sl.getFields().stage(debugLevel, fmt.Sprint(v...))
}

// Debugf takes a pointer subLogger struct, string and interface formats sends
// to the sub logger output
func Debugf(sl *SubLogger, data string, v ...any) {
	sl.getFields().stage(debugLevel, fmt.Sprintf(data, v...))
}

// Warn takes a pointer subLogger struct & string and sends to the sub logger
// output
func Warn(sl *SubLogger, data string) {
	sl.getFields().stage(warnLevel, data)
}

// Warnln takes a pointer subLogger struct & interface formats and sends to
// the sub logger output
func Warnln(sl *SubLogger, v ...any) {
	sl.getFields().stage(warnLevel, fmt.Sprint(v...))
}

// Warnf takes a pointer subLogger struct, string and interface formats sends
// to the sub logger output
func Warnf(sl *SubLogger, data string, v ...any) {
	sl.getFields().stage(warnLevel, fmt.Sprintf(data, v...))
}

// Error takes a pointer subLogger struct & interface formats and sends to
// the sub logger output
func Error(sl *SubLogger, data string) {
	sl.getFields().stage(errorLevel, data)
}

// Errorln takes a pointer subLogger struct, string & interface formats and
// sends to the sub logger output
func Errorln(sl *SubLogger, v ...any) {
	sl.getFields().stage(errorLevel, fmt.Sprint(v...))
}

// Errorf takes a pointer subLogger struct, string and interface formats sends
// to the sub logger output
func Errorf(sl *SubLogger, data string, v ...any) {
	sl.getFields().stage(errorLevel, fmt.Sprintf(data, v...))
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

// getFields snapshots the sub logger under the read lock
func (sl *SubLogger) getFields() *logFields {
	if sl == nil {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return &logFields{
		levels: sl.levels,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

func (l *logFields) header(lvl level) string {
	switch lvl {
	case infoLevel:
		if l.levels.Info {
			return l.logger.InfoHeader
		}
	case debugLevel:
		if l.levels.Debug {
			return l.logger.DebugHeader
		}
	case warnLevel:
		if l.levels.Warn {
			return l.logger.WarnHeader
		}
	case errorLevel:
		if l.levels.Error {
			return l.logger.ErrorHeader
		}
	}
	return ""
}

// stage formats and writes a log line when the level is enabled
func (l *logFields) stage(lvl level, data string) {
	if l == nil || l.output == nil {
		return
	}
	header := l.header(lvl)
	if header == "" {
		return
	}
	mu.RLock()
	hook := customLogHook
	mu.RUnlock()
	if hook != nil && hook(header, l.name, data) {
		return
	}

	var sb strings.Builder
	sb.WriteString(header)
	if l.logger.ShowLogSystemName {
		sb.WriteString(l.logger.Spacer)
		sb.WriteString(l.name)
	}
	sb.WriteString(l.logger.Spacer)
	if l.logger.TimestampFormat != "" {
		sb.WriteString(time.Now().Format(l.logger.TimestampFormat))
		sb.WriteString(l.logger.Spacer)
	}
	sb.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		sb.WriteByte('\n')
	}
	_, err := l.output.Write([]byte(sb.String()))
	displayError(err)
}
