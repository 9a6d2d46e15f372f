// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// Phase is the stage an Exporter has reached.
type Phase int32

const (
	PhasePending Phase = iota
	PhaseScanning
	PhaseCollecting
	PhaseWriting
	PhaseCompleted
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhasePending:    "pending",
	PhaseScanning:   "scanning",
	PhaseCollecting: "collecting",
	PhaseWriting:    "writing",
	PhaseCompleted:  "completed",
	PhaseFailed:     "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// ExportStats is returned by Exporter.Stats and ScanAndExport.
type ExportStats struct {
	ScannerStats
	RowsWritten  int64
	ItemsSkipped int64 // Items with a missing or non-string key value.
	ScanErr      error // Set if the scan failed and the failure was not propagated.
}

// Exporter scans a table and appends the primary key of every item to a
// CSV file.
type Exporter struct {
	Dyn            DynScanner
	Config         ScanConfig
	ConsistentRead bool
	ReadCapacity   float64     // Average read capacity to use; 0 for unlimited.
	Strict         bool        // Return scan failures instead of writing a partial export.
	Logger         *log.Logger // Receives progress and failure messages; may be nil.

	phase   int32
	m       sync.Mutex
	scanner *Scanner
	writer  *CSVKeyWriter
	scanErr error
}

// ScanAndExport runs a lenient export of cfg using dyn, logging to stderr.
func ScanAndExport(ctx context.Context, dyn DynScanner, cfg ScanConfig) (ExportStats, error) {
	e := &Exporter{
		Dyn:    dyn,
		Config: cfg,
		Logger: log.New(os.Stderr, "", log.LstdFlags),
	}
	err := e.Run(ctx)
	return e.Stats(), err
}

// Run scans the whole table then appends the collected keys to
// Config.OutputFile.  The file is only opened once the scan has finished.
//
// A scan that fails part way through is logged; if Strict is false the
// items read so far are written and Run returns nil, otherwise Run returns
// the *ScanError and writes nothing.  Cancelling ctx always returns the
// context's error without writing.
func (e *Exporter) Run(ctx context.Context) (err error) {
	logger := e.logger()
	defer func() {
		if err != nil {
			e.setPhase(PhaseFailed)
		} else {
			e.setPhase(PhaseCompleted)
		}
	}()

	if e.Config.TableName == "" {
		return &MissingSettingError{Name: EnvTableName}
	}
	if e.Config.PrimaryKeyName == "" {
		return &MissingSettingError{Name: EnvPrimaryKeyName}
	}

	s := &Scanner{
		Dyn:            e.Dyn,
		TableName:      e.Config.TableName,
		KeyName:        e.Config.PrimaryKeyName,
		ConsistentRead: e.ConsistentRead,
		ReadCapacity:   e.ReadCapacity,
	}
	e.m.Lock()
	e.scanner = s
	e.m.Unlock()

	e.setPhase(PhaseScanning)
	logger.Printf("Scan started table=%s key=%s", e.Config.TableName, e.Config.PrimaryKeyName)
	items, scanErr := s.Collect(ctx)
	e.setPhase(PhaseCollecting)

	if scanErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Printf("Scan aborted table=%s items_collected=%d", e.Config.TableName, len(items))
			return ctxErr
		}
		logger.Printf("Scan failed table=%s items_collected=%d error=%v", e.Config.TableName, len(items), scanErr)
		if e.Strict {
			return scanErr
		}
		e.m.Lock()
		e.scanErr = scanErr
		e.m.Unlock()
	}

	e.setPhase(PhaseWriting)
	return e.write(items)
}

func (e *Exporter) write(items []map[string]*dynamodb.AttributeValue) error {
	path := e.Config.OutputFile
	f, err := OpenAppend(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	kw := NewCSVKeyWriter(f, e.Config.PrimaryKeyName)
	e.m.Lock()
	e.writer = kw
	e.m.Unlock()

	for _, item := range items {
		if err := kw.WriteItem(item); err != nil {
			f.Close()
			return &WriteError{Path: path, Err: err}
		}
	}
	if err := kw.Flush(); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	e.logger().Printf("Export written file=%s rows=%d skipped=%d", path, kw.Written(), kw.Skipped())
	return nil
}

// Phase returns the stage the export has reached.
// It is safe to call from concurrent goroutines.
func (e *Exporter) Phase() Phase {
	return Phase(atomic.LoadInt32(&e.phase))
}

// Stats returns current statistics about an ongoing or completed export.
// It is safe to call from concurrent goroutines.
func (e *Exporter) Stats() ExportStats {
	e.m.Lock()
	defer e.m.Unlock()

	var stats ExportStats
	if e.scanner != nil {
		stats.ScannerStats = e.scanner.Stats()
	}
	if e.writer != nil {
		stats.RowsWritten = e.writer.Written()
		stats.ItemsSkipped = e.writer.Skipped()
	}
	stats.ScanErr = e.scanErr
	return stats
}

func (e *Exporter) setPhase(p Phase) {
	atomic.StoreInt32(&e.phase, int32(p))
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(ioutil.Discard, "", 0)
	}
	return e.Logger
}
