// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	categoryIndent = 4  // spaces to indent category entries
	keyWidth       = 20 // Width for the category key
	handlerWidth   = 12 // Width for the handler type
	statusWidth    = 15 // Width for status text
)

// 🎯 CategoryOperation is the outcome of one category during a transfer
type CategoryOperation struct {
	Key       string // Category key (settings, snippets, ...)
	Handler   string // Handler type (file/directory/extensions)
	Status    string // Operation status
	IsSynced  bool   // Destination now mirrors the source
	IsSkipped bool   // Source had nothing to copy
	IsFailed  bool   // Copy failed
}

// 📦 TransferOperation is a copy of every category between two locations
type TransferOperation struct {
	Name        string // import, export, ...
	From        string // Source location kind
	To          string // Destination location kind
	Destination string // Resolved destination root
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *TransferOperation
	categories []CategoryOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

func (l *Logger) formatCategoryOperation(op CategoryOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsSynced:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var handlerColor color.Attribute
	switch op.Handler {
	case "directory":
		handlerColor = color.FgBlue
	case "extensions":
		handlerColor = color.FgMagenta
	default:
		handlerColor = color.FgCyan
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", categoryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", keyWidth, op.Key),
		color.New(handlerColor).Sprint(fmt.Sprintf("%-*s", handlerWidth, op.Handler)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogCategory logs the outcome of one category
func (l *Logger) LogCategory(ctx context.Context, op CategoryOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.categories = append(l.categories, op)

	fmt.Fprintln(l.console, l.formatCategoryOperation(op))

	l.zlog.Info().
		Str("category", op.Key).
		Str("handler", op.Handler).
		Str("status", op.Status).
		Bool("is_synced", op.IsSynced).
		Bool("is_skipped", op.IsSkipped).
		Bool("is_failed", op.IsFailed).
		Msg("category operation")
}

// 📝 StartTransfer starts a new transfer between two locations
func (l *Logger) StartTransfer(ctx context.Context, op TransferOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.categories = nil

	fmt.Fprintf(l.console, "[%s %s]\n",
		op.Name,
		color.New(color.FgCyan).Sprint(op.Destination))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.From),
		color.New(color.Faint).Sprint("→"),
		color.New(color.FgYellow).Sprint(op.To))

	l.zlog.Info().
		Str("transfer", op.Name).
		Str("from", op.From).
		Str("to", op.To).
		Str("destination", op.Destination).
		Msg("starting transfer")
}

// 📝 EndTransfer ends the current transfer
func (l *Logger) EndTransfer(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("transfer", l.currentOp.Name).
		Int("categories", len(l.categories)).
		Msg("transfer complete")

	l.currentOp = nil
	l.categories = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("gitopssettings")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 🏷️ Level is the severity of a console message
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

var levelStyles = map[Level]struct {
	icon  string
	color color.Attribute
	zl    zerolog.Level
}{
	LevelInfo:    {icon: "ℹ️ ", color: color.FgCyan, zl: zerolog.InfoLevel},
	LevelSuccess: {icon: "✅", color: color.FgGreen, zl: zerolog.InfoLevel},
	LevelWarning: {icon: "⚠️ ", color: color.FgYellow, zl: zerolog.WarnLevel},
	LevelError:   {icon: "❌", color: color.FgRed, zl: zerolog.ErrorLevel},
}

// 📝 Message prints msg at the given level and mirrors it to zerolog
func (l *Logger) Message(level Level, msg string) {
	style := levelStyles[level]

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", style.icon, color.New(style.color).Sprint(msg))
	l.zlog.WithLevel(style.zl).Msg(msg)
}

// Success logs a success message
func (l *Logger) Success(msg string) { l.Message(LevelSuccess, msg) }

// Warning logs a warning message
func (l *Logger) Warning(msg string) { l.Message(LevelWarning, msg) }

// Error logs an error message
func (l *Logger) Error(msg string) { l.Message(LevelError, msg) }

// Info logs an info message
func (l *Logger) Info(msg string) { l.Message(LevelInfo, msg) }

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) { l.Info(fmt.Sprintf(format, args...)) }

// Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) { l.Warning(fmt.Sprintf(format, args...)) }

// Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) { l.Success(fmt.Sprintf(format, args...)) }
