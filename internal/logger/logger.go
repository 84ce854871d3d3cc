package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

const maxLogSize = 10 * 1024 * 1024

var (
	log      = logrus.New()
	debugLog *os.File
	logPath  string
)

// Init 客户端日志写入 ~/.gan-deng-yan/debug.log，避免干扰终端界面
func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitDir(filepath.Join(homeDir, ".gan-deng-yan"))
}

// InitDir 在指定目录下创建 debug.log，超过 10MB 时先轮转
func InitDir(logDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(logDir, "debug.log")
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		backupPath := filepath.Join(logDir, fmt.Sprintf("debug.log.%d", time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	Close()
	debugLog = f

	log.SetOutput(f)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})

	LogInfo("Logger initialized, log file: %s", logPath)
	return nil
}

// InitStderr 主机端日志直接输出到标准错误
func InitStderr(debugLevel bool) {
	SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debugLevel {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput 替换输出目标，测试中用来捕获日志
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Close 关闭日志文件
func Close() {
	if debugLog != nil {
		_ = debugLog.Close()
		debugLog = nil
	}
}

// L 返回底层 logger，需要结构化字段时使用
func L() *logrus.Logger {
	return log
}

// WithFields 带字段的日志条目
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...any) {
	log.Debugf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Infof(format, args...)
}

// LogWarn logs a warning
func LogWarn(format string, args ...any) {
	log.Warnf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	log.Errorf(format, args...)
}

// LogPanic logs a recovered panic with stack trace
func LogPanic(r any) {
	log.WithField("stack", string(debug.Stack())).Errorf("[PANIC] %v", r)
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
