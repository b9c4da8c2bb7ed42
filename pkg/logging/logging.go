/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging provides the logging abstraction the rest of pdfmill
// writes against: four named loggers (Debug, Info, Stats, Trace), each a
// nilable backend so call sites never need to check whether logging is
// enabled.
package logging

// Logger defines an interface for logging messages. zapLogger (zap.go) is
// the default backend; tests and embedders may supply their own.
type Logger interface {
	Printf(format string, args ...interface{})
	Println(args ...interface{})
	Fatalf(format string, args ...interface{})
	Fatalln(args ...interface{})
}

type logger struct {
	log Logger
}

// The four loggers pdfmill writes against.
var (
	Debug = &logger{}
	Info  = &logger{}
	Stats = &logger{}
	Trace = &logger{}
)

// SetDebugLogger sets the debug logger backend.
func SetDebugLogger(l Logger) { Debug.log = l }

// SetInfoLogger sets the info logger backend.
func SetInfoLogger(l Logger) { Info.log = l }

// SetStatsLogger sets the stats logger backend.
func SetStatsLogger(l Logger) { Stats.log = l }

// SetTraceLogger sets the trace logger backend.
func SetTraceLogger(l Logger) { Trace.log = l }

// SetDefaultLoggers wires all four loggers to zap-backed defaults: Debug,
// Info and Stats write to stderr under the names DEBUG, INFO and STATS,
// and Trace's output is discarded.
func SetDefaultLoggers() {
	SetDebugLogger(newZapLogger("DEBUG"))
	SetInfoLogger(newZapLogger("INFO"))
	SetStatsLogger(newZapLogger("STATS"))
	SetTraceLogger(newDiscardLogger())
}

// DisableLoggers turns off all logging.
func DisableLoggers() {
	SetDebugLogger(nil)
	SetInfoLogger(nil)
	SetStatsLogger(nil)
	SetTraceLogger(nil)
}

func (l *logger) Printf(format string, args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Printf(format, args...)
}

func (l *logger) Println(args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Println(args...)
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Fatalf(format, args...)
}

func (l *logger) Fatalln(args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Fatalln(args...)
}
