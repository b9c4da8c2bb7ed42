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

package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap.SugaredLogger, tagged with a component name, to
// the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

func newZapLogger(component string) Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), zapcore.DebugLevel)
	l := zap.New(core).Sugar().Named(component)
	return &zapLogger{s: l}
}

func newDiscardLogger() Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(io.Discard), zapcore.DebugLevel)
	return &zapLogger{s: zap.New(core).Sugar().Named("TRACE")}
}

func (z *zapLogger) Printf(format string, args ...interface{}) {
	z.s.Infof(format, args...)
}

func (z *zapLogger) Println(args ...interface{}) {
	z.s.Info(fmt.Sprintln(args...))
}

func (z *zapLogger) Fatalf(format string, args ...interface{}) {
	z.s.Fatalf(format, args...)
}

func (z *zapLogger) Fatalln(args ...interface{}) {
	z.s.Fatal(fmt.Sprintln(args...))
}
