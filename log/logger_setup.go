package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/thrasher-corp/forecaster/common/convert"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errFileLoggingNotSetup   = errors.New("file output requested but file logging is not configured")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errEmptySubLoggerName    = errors.New("sub logger name cannot be empty")
	errSubLoggerExists       = errors.New("sub logger already registered")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(outputWriters[x])) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if globalLogFile == nil {
				return nil, errFileLoggingNotSetup
			}
			writer = globalLogFile
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: convert.BoolPtr(true),
		SubLoggerConfig: SubLoggerConfig{
			Level:  defaultLevels,
			Output: "console",
		},
		AdvancedSettings: AdvancedSettings{
			ShowLogSystemName: convert.BoolPtr(true),
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: Headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c Config) Logger {
	return Logger{
		ShowLogSystemName: c.AdvancedSettings.ShowLogSystemName != nil && *c.AdvancedSettings.ShowLogSystemName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
		Spacer:            c.AdvancedSettings.Spacer,
	}
}

// SetupGlobalLogger applies the supplied config to every registered sub
// logger then applies any sub logger specific overrides
func SetupGlobalLogger(c *Config) error {
	if c == nil {
		return errSubloggerConfigIsNil
	}
	mu.Lock()
	defer mu.Unlock()
	if err := closeLogFile(); err != nil {
		return err
	}
	globalLogConfig = *c
	if c.LoggerFileConfig != nil && c.LoggerFileConfig.FileName != "" {
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if c.LoggerFileConfig.Append != nil && *c.LoggerFileConfig.Append {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		if LogPath != "" {
			if err := os.MkdirAll(LogPath, 0o770); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(filepath.Join(LogPath, c.LoggerFileConfig.FileName), flags, 0o640)
		if err != nil {
			return err
		}
		globalLogFile = f
	}

	enabled := c.Enabled == nil || *c.Enabled
	for _, sl := range subLoggers {
		if !enabled {
			sl.levels = Levels{}
			continue
		}
		output, err := getWriters(&c.SubLoggerConfig)
		if err != nil {
			return err
		}
		sl.levels = splitLevel(c.Level)
		sl.output = output
	}
	logger = newLogger(*c)
	if !enabled {
		return nil
	}
	return setupSubLoggers(c.SubLoggers)
}

// SetupSubLoggers configure all sub loggers with provided configuration values
func SetupSubLoggers(s []SubLoggerConfig) error {
	mu.Lock()
	defer mu.Unlock()
	return setupSubLoggers(s)
}

func setupSubLoggers(s []SubLoggerConfig) error {
	for x := range s {
		output, err := getWriters(&s[x])
		if err != nil {
			return err
		}
		sl, ok := subLoggers[strings.ToUpper(s[x].Name)]
		if !ok {
			return fmt.Errorf("%w: %v", errSubLoggerNotFound, s[x].Name)
		}
		sl.output = output
		sl.levels = splitLevel(s[x].Level)
	}
	return nil
}

// CloseLogFile closes the file output if one is open
func CloseLogFile() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLogFile()
}

func closeLogFile() error {
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	return err
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(strings.TrimSpace(enabledLevels[x])) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

// NewSubLogger registers a new sub logger writing to stdout at every level
func NewSubLogger(name string) (*SubLogger, error) {
	if name == "" {
		return nil, errEmptySubLoggerName
	}
	name = strings.ToUpper(name)
	mu.Lock()
	defer mu.Unlock()
	if _, ok := subLoggers[name]; ok {
		return nil, fmt.Errorf("%w: %v", errSubLoggerExists, name)
	}
	return registerNewSubLogger(name), nil
}

// SetOutput replaces the sub logger's output writer
func (sl *SubLogger) SetOutput(w io.Writer) {
	mu.Lock()
	sl.output = w
	mu.Unlock()
}

// SetLevels replaces the sub logger's enabled levels, eg "INFO|ERROR"
func (sl *SubLogger) SetLevels(levels string) {
	mu.Lock()
	sl.levels = splitLevel(levels)
	mu.Unlock()
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
		levels: splitLevel(defaultLevels),
	}
	subLoggers[temp.name] = temp
	return temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")
	Evaluator = registerNewSubLogger("EVALUATOR")
	ConfigMgr = registerNewSubLogger("CONFIG")
	DatabaseMgr = registerNewSubLogger("DATABASE")
	DataMgr = registerNewSubLogger("DATA")
	ReportMgr = registerNewSubLogger("REPORT")
}
