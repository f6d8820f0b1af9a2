package migration

import (
	"fmt"

	"github.com/thrasher-corp/forecaster/log"
)

// Logger passes goose output to the database sub logger
type Logger struct{}

// Printf logs goose progress at info level
func (l Logger) Printf(format string, v ...any) {
	log.Infof(log.DatabaseMgr, format, v...)
}

// Print logs goose progress at info level
func (l Logger) Print(v ...any) {
	log.Info(log.DatabaseMgr, fmt.Sprint(v...))
}

// Println logs goose progress at info level
func (l Logger) Println(v ...any) {
	log.Infoln(log.DatabaseMgr, v...)
}

// Errorf logs goose failures at error level
func (l Logger) Errorf(format string, v ...any) {
	log.Errorf(log.DatabaseMgr, format, v...)
}

// Fatal logs at error level without exiting
func (l Logger) Fatal(v ...any) {
	log.Error(log.DatabaseMgr, fmt.Sprint(v...))
}

// Fatalf logs at error level without exiting
func (l Logger) Fatalf(format string, v ...any) {
	log.Errorf(log.DatabaseMgr, format, v...)
}
