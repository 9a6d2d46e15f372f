// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// ItemWriter receives items once a scan has been collected.
type ItemWriter interface {
	WriteItem(item map[string]*dynamodb.AttributeValue) error
}

// CSVKeyWriter implements the ItemWriter interface, writing the string
// value of a single attribute of each item as a one column CSV record.
// No header row is written.
type CSVKeyWriter struct {
	m       sync.Mutex
	w       io.Writer
	cw      *csv.Writer
	keyName string
	written int64
	skipped int64
}

// NewCSVKeyWriter returns a CSVKeyWriter writing the keyName attribute of
// each item to w.
func NewCSVKeyWriter(w io.Writer, keyName string) *CSVKeyWriter {
	return &CSVKeyWriter{
		w:       w,
		cw:      csv.NewWriter(w),
		keyName: keyName,
	}
}

// WriteItem writes the item's key value.  Items without the attribute, or
// where it isn't a string, are skipped without error.
func (kw *CSVKeyWriter) WriteItem(item map[string]*dynamodb.AttributeValue) error {
	av, ok := item[kw.keyName]
	if !ok || av == nil || av.S == nil {
		atomic.AddInt64(&kw.skipped, 1)
		return nil
	}

	kw.m.Lock()
	var err error
	if *av.S == "" {
		err = kw.writeEmpty()
	} else {
		err = kw.cw.Write([]string{*av.S})
	}
	kw.m.Unlock()
	if err != nil {
		return err
	}
	atomic.AddInt64(&kw.written, 1)
	return nil
}

// writeEmpty writes a quoted empty field.  encoding/csv emits a blank line
// for a record holding a single empty field, which readers skip.
func (kw *CSVKeyWriter) writeEmpty() error {
	kw.cw.Flush()
	if err := kw.cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(kw.w, "\"\"\n")
	return err
}

// Flush writes any buffered records to the underlying writer.
func (kw *CSVKeyWriter) Flush() error {
	kw.m.Lock()
	defer kw.m.Unlock()
	kw.cw.Flush()
	return kw.cw.Error()
}

// Written returns the number of records written so far.
func (kw *CSVKeyWriter) Written() int64 {
	return atomic.LoadInt64(&kw.written)
}

// Skipped returns the number of items that had no string key value.
func (kw *CSVKeyWriter) Skipped() int64 {
	return atomic.LoadInt64(&kw.skipped)
}

// OpenAppend opens path for appending, creating the file and any missing
// parent directories.
func OpenAppend(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("no output file set")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
}
