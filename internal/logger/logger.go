// internal/logger/logger.go

package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	OffLevel
)

var (
	defaultLogger *Logger

	// 预定义带颜色的打印函数
	debugPrintf = color.New(color.FgCyan).SprintfFunc()
	infoPrintf  = color.New(color.FgGreen).SprintfFunc()
	warnPrintf  = color.New(color.FgYellow).SprintfFunc()
	errorPrintf = color.New(color.FgRed).SprintfFunc()
)

type Logger struct {
	logger *log.Logger
	level  Level
	mu     sync.Mutex
}

func init() {
	color.NoColor = false
	defaultLogger = &Logger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
		level:  InfoLevel,
	}
}

func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

// SetLevelByName 通过名称设置日志级别，未知名称回退到 info
func SetLevelByName(name string) {
	switch strings.ToLower(name) {
	case "debug":
		SetLevel(DebugLevel)
	case "warn":
		SetLevel(WarnLevel)
	case "error":
		SetLevel(ErrorLevel)
	case "off":
		SetLevel(OffLevel)
	default:
		SetLevel(InfoLevel)
	}
}

func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.logger = log.New(w, "", log.LstdFlags)

	// 如果输出不是终端，禁用颜色
	if f, ok := w.(*os.File); !ok || (f != os.Stdout && f != os.Stderr) {
		color.NoColor = true
	}
}

func (l *Logger) printAt(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= level {
		l.logger.Print(msg)
	}
}

func Debug(format string, v ...interface{}) {
	defaultLogger.printAt(DebugLevel, debugPrintf("[DEBUG] "+format, v...))
}

func Info(format string, v ...interface{}) {
	defaultLogger.printAt(InfoLevel, infoPrintf("[INFO] "+format, v...))
}

func Warn(format string, v ...interface{}) {
	defaultLogger.printAt(WarnLevel, warnPrintf("[WARN] "+format, v...))
}

func Error(format string, v ...interface{}) {
	defaultLogger.printAt(ErrorLevel, errorPrintf("[ERROR] "+format, v...))
}
