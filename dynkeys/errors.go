// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import "fmt"

// MissingSettingError is returned by the resolvers when a required
// environment variable is unset or empty.
type MissingSettingError struct {
	Name string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s is not set", e.Name)
}

// ConnectionError is returned by BuildClient when a session or credentials
// could not be established for a profile.
type ConnectionError struct {
	Profile string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to DynamoDB with profile %q failed: %v", e.Profile, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ScanError reports a page request that failed part way through a scan.
type ScanError struct {
	Table     string
	PagesRead int64
	Err       error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan of table %q failed after %d pages: %v", e.Table, e.PagesRead, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// WriteError reports a failure to open, write or flush the output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to %q failed: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
