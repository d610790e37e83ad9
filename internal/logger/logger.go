// Package logger provides leveled diagnostics for the askdoc CLI.
//
// Debug, Info and Section trace the retrieval and fallback decisions behind
// an answer and print only when --verbose is set. Warn reports degraded
// operation, such as a missing embedding backend or a skipped page, and
// always prints: a one-shot CLI gives the user no other chance to see it.
// Everything goes to stderr so piped answers stay clean.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

var prefixes = map[level]string{
	levelDebug: "[DEBUG] ",
	levelInfo:  "[INFO] ",
	levelWarn:  "[WARN] ",
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables the verbose-only levels.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(l level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < levelWarn && !verbose {
		return
	}
	fmt.Fprintf(output, prefixes[l]+format+"\n", args...)
}

// Debug prints a pipeline trace message in verbose mode.
func Debug(format string, args ...any) {
	emit(levelDebug, format, args...)
}

// Info prints a progress message in verbose mode.
func Info(format string, args ...any) {
	emit(levelInfo, format, args...)
}

// Warn reports degraded operation. Warnings print regardless of verbosity.
func Warn(format string, args ...any) {
	emit(levelWarn, format, args...)
}

// Section marks the start of a pipeline phase in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n--- %s ---\n", name)
	}
}
