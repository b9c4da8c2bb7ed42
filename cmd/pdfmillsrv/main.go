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

// Package main is pdfmillsrv: an echo-based HTTP harness wrapping the
// pdfmill library, grounded on the teacher's spaserver pattern (an echo
// server with zap request logging/recovery middleware). POST a YAML build
// job to /build, get a PDF back.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/barwood/pdfmill/internal/zap4echo"
	"github.com/barwood/pdfmill/pkg/config"
)

var (
	addr        string
	rateLimit   float64
	rateBurst   int
)

func init() {
	flag.StringVar(&addr, "addr", "127.0.0.1:8888", "listen address")
	flag.Float64Var(&rateLimit, "rate", 2, "sustained build requests per second, per client IP")
	flag.IntVar(&rateBurst, "burst", 5, "burst allowance for the build endpoint's rate limiter")
}

func main() {
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdfmillsrv: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	e := echo.New()
	e.Use(zap4echo.Logger(log), zap4echo.Recover(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	e.Use(buildRateLimiter(rateLimit, rateBurst))

	e.GET("/healthz", healthz)
	e.POST("/build", buildHandler)

	log.Info("pdfmillsrv listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal("server exited", zap.Error(err))
	}
}

func healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// buildHandler parses the POSTed YAML build job and streams back the
// generated PDF. The job itself travels in the request body; any fontPath
// or imagePaths it names are read from the server's filesystem.
func buildHandler(c echo.Context) error {
	job, err := config.Load(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	out, err := build(job)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="build.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", out)
}
