// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"io"
	"log/slog"
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Options configures the root handler.
type Options struct {
	Verbosity int  // legacy level, 0 (crit) to 5 (trace)
	JSON      bool // emit JSON records instead of terminal formatted ones
}

// Levels accepted by SetLevel.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

var (
	glogger *ethlog.GlogHandler
	level   slog.Level
)

// FromLegacyLevel converts a legacy verbosity into a slog level.
func FromLegacyLevel(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

// NewHandler creates the handler used by Init, writing to w.
func NewHandler(w io.Writer, json bool) slog.Handler {
	if json {
		return ethlog.JSONHandler(w)
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return ethlog.NewTerminalHandler(w, useColor)
}

// Init installs the root logger writing to stderr.
func Init(opts Options) {
	InitWithWriter(os.Stderr, opts)
}

// InitWithWriter installs the root logger writing to w.
func InitWithWriter(w io.Writer, opts Options) {
	glogger = ethlog.NewGlogHandler(NewHandler(w, opts.JSON))
	SetLevel(FromLegacyLevel(opts.Verbosity))
	SetDefault(NewLogger(glogger))
}

// SetVerbosity changes the level of the root handler installed by Init.
// It returns false if Init was never called.
func SetVerbosity(verbosity int) bool {
	return SetLevel(FromLegacyLevel(verbosity))
}

// SetLevel changes the level of the root handler installed by Init.
// It returns false if Init was never called.
func SetLevel(l slog.Level) bool {
	if glogger == nil {
		return false
	}
	level = l
	glogger.Verbosity(l)
	return true
}

// Level returns the level of the root handler.
func Level() slog.Level {
	return level
}

// LevelName returns the lower case name of l, as used on the admin API.
func LevelName(l slog.Level) string {
	return ethlog.LevelString(l)
}
