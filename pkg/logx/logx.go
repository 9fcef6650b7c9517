package logx

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

// Level representa el nivel de logging
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var currentLevel atomic.Int32

var std = log.New(os.Stdout, "", log.LstdFlags)

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLevel establece el nivel mínimo de logging
func SetLevel(level Level) {
	currentLevel.Store(int32(level))
}

func enabled(level Level) bool {
	return level >= Level(currentLevel.Load())
}

func output(level Level, prefix, msg string) {
	if !enabled(level) {
		return
	}
	std.Println(prefix + msg)
}

func Debug(msg string) { output(LevelDebug, "[DEBUG] ", msg) }
func Info(msg string)  { output(LevelInfo, "[INFO] ", msg) }
func Warn(msg string)  { output(LevelWarn, "[WARN] ", msg) }
func Error(msg string) { output(LevelError, "[ERROR] ", msg) }

func Debugf(format string, args ...any) { output(LevelDebug, "[DEBUG] ", fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { output(LevelInfo, "[INFO] ", fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { output(LevelWarn, "[WARN] ", fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { output(LevelError, "[ERROR] ", fmt.Sprintf(format, args...)) }

// Fatalf loguea y termina el proceso
func Fatalf(format string, args ...any) {
	std.Println("[FATAL] " + fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Fields son pares clave/valor adjuntos a una entrada de log
type Fields map[string]any

// Entry es un logger con campos contextuales
type Entry struct {
	fields Fields
}

// WithFields crea una entrada con campos contextuales
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

func (e *Entry) render() string {
	if len(e.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(" |")
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.fields[k])
	}
	return b.String()
}

func (e *Entry) Debugf(format string, args ...any) {
	output(LevelDebug, "[DEBUG] ", fmt.Sprintf(format, args...)+e.render())
}

func (e *Entry) Infof(format string, args ...any) {
	output(LevelInfo, "[INFO] ", fmt.Sprintf(format, args...)+e.render())
}

func (e *Entry) Warnf(format string, args ...any) {
	output(LevelWarn, "[WARN] ", fmt.Sprintf(format, args...)+e.render())
}

func (e *Entry) Errorf(format string, args ...any) {
	output(LevelError, "[ERROR] ", fmt.Sprintf(format, args...)+e.render())
}
