// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gwatts/dynkeys/dynkeys"
	cli "github.com/jawher/mow.cli"
	"github.com/joho/godotenv"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
	tib = 1 << 40
)

func fmtBytes(bytes int64) string {
	switch {
	case bytes < 0:
		return "unknown"
	case bytes < kib:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < mib:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kib)
	case bytes < gib:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mib)
	case bytes < tib:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gib)
	default:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tib)
	}
}

func fail(format string, a ...interface{}) {
	failCode(exitFailure, format, a...)
}

func failCode(code int, format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	cli.Exit(code)
}

// configError marks a failure to assemble the configuration, as opposed to
// a failure talking to AWS or writing output.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// exitCode maps an error returned during initialization to a process exit code.
func exitCode(err error) int {
	var missing *dynkeys.MissingSettingError
	var cerr *configError
	if errors.As(err, &missing) || errors.As(err, &cerr) {
		return exitUsage
	}
	return exitFailure
}

// loadEnvFile seeds the process environment from a dotenv file.
// Variables that are already set are left untouched.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &configError{fmt.Errorf("failed to load env file %q: %w", path, err)}
	}
	return nil
}
