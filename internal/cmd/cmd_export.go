// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Bowery/prompt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/cheggaaa/pb"
	"github.com/gwatts/dynkeys/dynkeys"
	cli "github.com/jawher/mow.cli"
)

const exportLongDesc = `Scan a DynamoDB table and append the value of its primary key attribute
for every item to a CSV file, one value per line and without a header.

Required environment variables:
  DYNAMODB_TABLE_NAME         Table to scan
  DYNAMODB_PRIMARY_KEY_NAME   Attribute to export; non-string values are skipped
  AWS_PROFILE                 Profile in the shared credentials file to authenticate with

The output file is appended to, never truncated.`

// RegisterExportCommand adds the export command to app.
func RegisterExportCommand(app *cli.Cli) {
	app.Command("export", "Append the primary keys of a table to a CSV file", configureExport)
}

func configureExport(cmd *cli.Cmd) {
	cmd.Spec = "[-o] [-c] [-r] [--strict] [--region] [--max-retries] [--env-file] [--confirm]"
	cmd.LongDesc = exportLongDesc

	action := &exporter{
		outputFile: cmd.String(cli.StringOpt{
			Name:   "o output",
			Value:  defaultOutputFile,
			Desc:   "CSV file to append keys to; created along with its directory if missing",
			EnvVar: "OUTPUT_FILE",
		}),
		consistentRead: cmd.Bool(cli.BoolOpt{
			Name:   "c consistent-read",
			Value:  false,
			Desc:   "Enable consistent reads (at 2x capacity use)",
			EnvVar: "USE_CONSISTENT",
		}),
		readCapacity: cmd.Int(cli.IntOpt{
			Name:   "r read-capacity",
			Value:  0,
			Desc:   "Average read capacity to use for the scan (set to 0 for unlimited)",
			EnvVar: "READ_CAPACITY",
		}),
		strict: cmd.Bool(cli.BoolOpt{
			Name:   "strict",
			Value:  false,
			Desc:   "Fail without writing if the scan fails part way through, instead of exporting the items read so far",
			EnvVar: "STRICT_SCAN",
		}),
		region: cmd.String(cli.StringOpt{
			Name:   "region",
			Value:  "",
			Desc:   "AWS region; defaults to the region configured for the profile",
			EnvVar: "AWS_REGION_OVERRIDE",
		}),
		maxRetries: cmd.Int(cli.IntOpt{
			Name:   "max-retries",
			Value:  0,
			Desc:   "Maximum number of retry attempts to make with AWS services before failing (0 for the SDK default)",
			EnvVar: "AWS_MAX_RETRIES",
		}),
		envFile: cmd.String(cli.StringOpt{
			Name:   "env-file",
			Value:  "",
			Desc:   "Load environment variables from this dotenv file; variables already set take precedence",
			EnvVar: "ENV_FILE",
		}),
		confirm: cmd.Bool(cli.BoolOpt{
			Name:   "confirm",
			Value:  false,
			Desc:   "Prompt before appending to an output file that already has content",
			EnvVar: "CONFIRM_APPEND",
		}),
		lookup: dynkeys.OSEnv,
	}

	cmd.Before = func() {
		if *action.readCapacity < 0 {
			failCode(exitUsage, "Invalid value for --read-capacity: %d", *action.readCapacity)
		}
		if *action.maxRetries < 0 {
			failCode(exitUsage, "Invalid value for --max-retries: %d", *action.maxRetries)
		}
		if *action.outputFile == "" {
			failCode(exitUsage, "--output must not be empty")
		}
	}

	cmd.Action = actionRunner(cmd, action)
}

type exporter struct {
	e         *dynkeys.Exporter
	cfg       dynkeys.ScanConfig
	profile   dynkeys.ConnectionProfile
	dyn       *dynamodb.DynamoDB
	tableInfo *dynamodb.TableDescription
	cancel    context.CancelFunc
	startTime time.Time
	lookup    dynkeys.EnvLookup

	// options
	outputFile     *string
	consistentRead *bool
	readCapacity   *int
	strict         *bool
	region         *string
	maxRetries     *int
	envFile        *string
	confirm        *bool
}

// resolve assembles the scan configuration and profile.  Nothing is sent
// to AWS until both are complete.
func (x *exporter) resolve() error {
	if err := loadEnvFile(*x.envFile); err != nil {
		return err
	}

	cfg, err := dynkeys.ResolveScanConfig(x.lookup)
	if err != nil {
		return err
	}
	cfg.OutputFile = *x.outputFile

	profile, err := dynkeys.ResolveConnectionProfile(x.lookup)
	if err != nil {
		return err
	}

	x.cfg = cfg
	x.profile = profile
	return nil
}

func (x *exporter) init() error {
	if err := x.resolve(); err != nil {
		return err
	}

	dyn, err := dynkeys.BuildClient(x.profile, dynkeys.ClientOptions{
		Region:     *x.region,
		MaxRetries: *x.maxRetries,
	})
	if err != nil {
		return err
	}
	x.dyn = dyn

	if *x.confirm {
		return x.confirmAppend()
	}
	return nil
}

// confirmAppend asks before adding to an output file that already holds an
// earlier export.
func (x *exporter) confirmAppend() error {
	fi, err := os.Stat(x.cfg.OutputFile)
	if err != nil || fi.Size() == 0 {
		return nil
	}

	fmt.Printf("Output file %s already holds %s of keys; the new export will be appended\n\n",
		x.cfg.OutputFile, fmtBytes(fi.Size()))
	ok, err := prompt.Ask("Are you sure you wish to append to the existing file")
	if err != nil {
		return fmt.Errorf("Could not prompt for confirmation (drop --confirm to override): %v", err)
	}
	if !ok {
		return errors.New("User rejected append")
	}
	return nil
}

// describeTable fetches the table's approximate item count for the progress
// bar.  Failure is not fatal; the scan itself reports a missing table.
func (x *exporter) describeTable(logger *log.Logger) {
	resp, err := x.dyn.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(x.cfg.TableName),
	})
	if err != nil {
		logger.Printf("DescribeTable failed table=%s error=%v", x.cfg.TableName, err)
		return
	}
	x.tableInfo = resp.Table
}

func (x *exporter) itemCount() int64 {
	if x.tableInfo == nil {
		return -1
	}
	return aws.Int64Value(x.tableInfo.ItemCount)
}

func (x *exporter) start(termWriter io.Writer, logger *log.Logger) (done chan error, err error) {
	x.describeTable(logger)

	var tableBytes int64 = -1
	if x.tableInfo != nil {
		tableBytes = aws.Int64Value(x.tableInfo.TableSizeBytes)
	}

	status := fmt.Sprintf("Beginning scan: table=%q key=%q readCapacity=%d "+
		"itemCount=%d totalSize=%s target=%s strict=%t",
		x.cfg.TableName, x.cfg.PrimaryKeyName, *x.readCapacity,
		x.itemCount(), fmtBytes(tableBytes), x.cfg.OutputFile, *x.strict)

	fmt.Fprintln(termWriter, status)
	logger.Println(status)

	ctx, cancel := context.WithCancel(context.Background())
	x.cancel = cancel
	x.e = &dynkeys.Exporter{
		Dyn:            x.dyn,
		Config:         x.cfg,
		ConsistentRead: *x.consistentRead,
		ReadCapacity:   float64(*x.readCapacity),
		Strict:         *x.strict,
		Logger:         logger,
	}

	done = make(chan error, 1)
	x.startTime = time.Now()

	go func() {
		defer cancel()
		err := x.e.Run(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			logger.Printf("Export aborted table=%s", x.cfg.TableName)
		case err != nil:
			logger.Printf("Export failed table=%s error=%v", x.cfg.TableName, err)
		default:
			logger.Printf("Export completed OK table=%s file=%s", x.cfg.TableName, x.cfg.OutputFile)
		}
		logger.Println("Final export stats", x.formatStats())
		done <- err
	}()

	return done, nil
}

func (x *exporter) formatStats() string {
	stats := x.e.Stats()
	deltaSeconds := time.Since(x.startTime).Seconds()
	return fmt.Sprintf("table=%s phase=%s avg_items_sec=%.2f avg_capacity_sec=%.2f "+
		"total_items_read=%d pages_read=%d rows_written=%d items_skipped=%d",
		x.cfg.TableName,
		x.e.Phase(),
		float64(stats.ItemsRead)/deltaSeconds,
		stats.CapacityUsed/deltaSeconds,
		stats.ItemsRead,
		stats.PagesRead,
		stats.RowsWritten,
		stats.ItemsSkipped)
}

func (x *exporter) newProgressBar() *pb.ProgressBar {
	count := x.itemCount()
	if count < 0 {
		count = 0
	}
	return pb.New64(count)
}

func (x *exporter) updateProgress(bar *pb.ProgressBar) {
	bar.Set64(x.e.Stats().ItemsRead)
}

func (x *exporter) logProgress(logger *log.Logger) {
	logger.Printf("Export in progress - current stats %s", x.formatStats())
}

func (x *exporter) abort() {
	x.cancel()
}

func (x *exporter) warnings() []string {
	stats := x.e.Stats()
	if stats.ScanErr == nil {
		return nil
	}
	return []string{fmt.Sprintf("scan did not complete; %d keys read before the failure were exported: %v",
		stats.RowsWritten, stats.ScanErr)}
}

func (x *exporter) printFinalStats(w io.Writer) {
	stats := x.e.Stats()
	deltaSeconds := time.Since(x.startTime).Seconds()

	fmt.Fprintf(w, "Avg items/sec: %.2f\n", float64(stats.ItemsRead)/deltaSeconds)
	fmt.Fprintf(w, "Avg capacity/sec: %.2f\n", stats.CapacityUsed/deltaSeconds)
	fmt.Fprintln(w, "Total items read: ", stats.ItemsRead)
	fmt.Fprintln(w, "Total bytes read: ", fmtBytes(stats.BytesRead))
	fmt.Fprintln(w, "Keys written: ", stats.RowsWritten)
	fmt.Fprintln(w, "Items skipped: ", stats.ItemsSkipped)
	fmt.Fprintf(w, "Primary keys have been appended to %s\n", x.cfg.OutputFile)
}
