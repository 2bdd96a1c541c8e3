package utils

import (
	"log"
	"sync/atomic"
)

var (
	_colorPrint atomic.Bool
	_debugPrint atomic.Bool
)

const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorReset  = "\033[0m"
)

func SetColorPrint(enable bool) {
	_colorPrint.Store(enable)
}

// SetDebug turns LogDebug output on or off.
func SetDebug(enable bool) {
	_debugPrint.Store(enable)
}

func DebugEnabled() bool {
	return _debugPrint.Load()
}

func logf(color, level, format string, v ...interface{}) {
	if _colorPrint.Load() {
		log.Printf(color+level+" "+format+colorReset+"\n", v...)
		return
	}
	log.Printf(level+" "+format+"\n", v...)
}

func LogDebug(format string, v ...interface{}) {
	if !_debugPrint.Load() {
		return
	}
	logf(colorCyan, "DEBU", format, v...)
}

func LogInfo(format string, v ...interface{}) {
	logf(colorGreen, "INFO", format, v...)
}

func LogWarn(format string, v ...interface{}) {
	logf(colorYellow, "WARN", format, v...)
}

func LogErro(format string, v ...interface{}) {
	logf(colorRed, "ERRO", format, v...)
}

func LogFatal(format string, v ...interface{}) {
	if _colorPrint.Load() {
		log.Fatalf(colorRed+"FATAL "+format+colorReset+"\n", v...)
		return
	}
	log.Fatalf("FATAL "+format+"\n", v...)
}
