package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
	defaultLevels   = "INFO|DEBUG|WARN|ERROR"
)

var (
	logger = newLogger(GenDefaultSettings())
	// globalLogConfig holds global configuration options for logger
	globalLogConfig = GenDefaultSettings()
	// globalLogFile holds the file handle used by the "file" output
	globalLogFile io.WriteCloser

	// LogPath system path to store log files in
	LogPath string

	// read/write mutex for logger
	mu = &sync.RWMutex{}
)

// Config holds configuration settings loaded from the forecaster config
type Config struct {
	Enabled          *bool `json:"enabled" mapstructure:"enabled"`
	SubLoggerConfig  `mapstructure:",squash"`
	LoggerFileConfig *FileConfig       `json:"fileSettings,omitempty" mapstructure:"fileSettings"`
	AdvancedSettings AdvancedSettings  `json:"advancedSettings" mapstructure:"advancedSettings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty" mapstructure:"subloggers"`
}

// AdvancedSettings holds the formatting options of every log line
type AdvancedSettings struct {
	ShowLogSystemName *bool   `json:"showLogSystemName" mapstructure:"showLogSystemName"`
	Spacer            string  `json:"spacer" mapstructure:"spacer"`
	TimeStampFormat   string  `json:"timeStampFormat" mapstructure:"timeStampFormat"`
	Headers           Headers `json:"headers" mapstructure:"headers"`
}

// Headers are the per level prefixes
type Headers struct {
	Info  string `json:"info" mapstructure:"info"`
	Warn  string `json:"warn" mapstructure:"warn"`
	Debug string `json:"debug" mapstructure:"debug"`
	Error string `json:"error" mapstructure:"error"`
}

// SubLoggerConfig holds sub logger configuration settings
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty" mapstructure:"name"`
	Level  string `json:"level" mapstructure:"level"`
	Output string `json:"output" mapstructure:"output"`
}

// FileConfig holds the settings for the "file" output
type FileConfig struct {
	FileName string `json:"filename,omitempty" mapstructure:"filename"`
	Append   *bool  `json:"append,omitempty" mapstructure:"append"`
}

// Logger each instance of logger settings
type Logger struct {
	ShowLogSystemName                                bool
	TimestampFormat                                  string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
	Spacer                                           string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

type level uint8

const (
	infoLevel level = iota
	debugLevel
	warnLevel
	errorLevel
)

type multiWriter struct {
	writers []io.Writer
	mu      sync.RWMutex
}
