package log

import "io"

// Global vars related to the logger package
var (
	subLoggers = map[string]*SubLogger{}

	Global      *SubLogger
	Evaluator   *SubLogger
	ConfigMgr   *SubLogger
	DatabaseMgr *SubLogger
	DataMgr     *SubLogger
	ReportMgr   *SubLogger
)

// SubLogger defines a named logging subsystem with its own levels and
// output
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

// logFields is a point in time copy of a sub logger so a log line cannot be
// altered by a concurrent reconfiguration
type logFields struct {
	levels Levels
	name   string
	output io.Writer
	logger Logger
}
