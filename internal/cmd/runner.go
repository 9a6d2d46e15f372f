// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb"
	cli "github.com/jawher/mow.cli"
)

type action interface {
	init() error
	newProgressBar() (bar *pb.ProgressBar)
	updateProgress(bar *pb.ProgressBar)
	start(termWriter io.Writer, logger *log.Logger) (doneChan chan error, err error)
	abort()
	printFinalStats(w io.Writer)
}

type progressLogger interface {
	logProgress(logger *log.Logger)
}

// warner is implemented by actions that can complete successfully while
// still having something the user must be told about.
type warner interface {
	warnings() []string
}

// actionRunner handles running an action which may take a while to complete
// providing progress bars and signal handling.
func actionRunner(cmd *cli.Cmd, action action) func() {
	cmd.Spec = "[--silent] [--no-progress] [--log] " + cmd.Spec
	silent := cmd.Bool(cli.BoolOpt{
		Name:   "silent",
		Value:  false,
		Desc:   "Set to true to disable all non-error and non-log output",
		EnvVar: "SILENT",
	})
	noProgress := cmd.Bool(cli.BoolOpt{
		Name:   "no-progress",
		Value:  false,
		Desc:   "Set to true to disable the progress bar",
		EnvVar: "NO_PROGRESS",
	})
	logTarget := cmd.String(cli.StringOpt{
		Name:   "log",
		Value:  "",
		Desc:   "Set to a filename or --log=- for stdout; defaults to no log output",
		EnvVar: "LOG_TARGET",
	})

	return func() {
		var termWriter io.Writer = os.Stderr
		if *silent {
			termWriter = ioutil.Discard
		}

		logger, closeLog, err := openLogTarget(*logTarget)
		if err != nil {
			failCode(exitUsage, "could not open logfile for write: %s", err)
		}
		defer closeLog()

		var logTicker <-chan time.Time
		if *logTarget != "" {
			if _, ok := action.(progressLogger); ok {
				logTicker = time.Tick(logFrequency)
			}
		}

		if err := action.init(); err != nil {
			logger.Printf("Initialization failed error=%v", err)
			failCode(exitCode(err), "Initialization failed: %v", err)
		}

		done, err := action.start(termWriter, logger)
		if err != nil {
			fail("Startup failed: %v", err)
		}

		var bar *pb.ProgressBar
		var progressTicker <-chan time.Time
		if !*silent && !*noProgress {
			if bar = action.newProgressBar(); bar != nil {
				progressTicker = time.Tick(statsFrequency)
				bar.Output = os.Stderr
				bar.ShowSpeed = true
				bar.ManualUpdate = true
				bar.SetMaxWidth(78)
				bar.Start()
				bar.Update()
			}
		}

		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigchan)

		var aborted bool
		var runErr error
	LOOP:
		for {
			select {
			case <-progressTicker:
				action.updateProgress(bar)
				bar.Update()

			case <-logTicker:
				action.(progressLogger).logProgress(logger)

			case <-sigchan:
				// a second signal is ignored; the action is already winding down
				if aborted {
					continue
				}
				aborted = true
				progressTicker = nil
				if bar != nil {
					bar.Finish()
					bar = nil
				}
				fmt.Fprint(termWriter, "\nAborting..")
				action.abort()

			case runErr = <-done:
				if bar != nil {
					action.updateProgress(bar)
					bar.Finish()
				}
				break LOOP
			}
		}

		if aborted {
			fmt.Fprintln(termWriter, "Aborted.")
		}
		if msg := runOutcome(runErr, aborted); msg != "" {
			fail("%s", msg)
		}

		if w, ok := action.(warner); ok {
			for _, msg := range w.warnings() {
				fmt.Fprintln(os.Stderr, "Warning:", msg)
			}
		}

		if !*silent {
			action.printFinalStats(termWriter)
		}
	}
}

// openLogTarget returns the logger selected by --log: "-" for stdout, a
// filename to append to, or "" to discard.  The returned func closes any
// opened file.
func openLogTarget(target string) (*log.Logger, func(), error) {
	switch target {
	case "":
		return log.New(ioutil.Discard, "", log.LstdFlags), func() {}, nil
	case "-":
		return log.New(os.Stdout, "", log.LstdFlags), func() {}, nil
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
}

// runOutcome returns the failure message for a finished action, or "" if
// it succeeded.  An aborted action is a failure even if it returned nil.
func runOutcome(err error, aborted bool) string {
	switch {
	case aborted:
		return "Processing aborted"
	case err != nil:
		return fmt.Sprintf("Processing failed: %v", err)
	}
	return ""
}
