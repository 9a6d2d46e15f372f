// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

/*
Package dynkeys exports the primary key values of a DynamoDB table to a CSV
file.

A single Scan, projected to the key attribute, is paginated to completion
and every string value found under that attribute is appended to the output
file as a one column CSV record.  The file is never truncated; running an
export twice against the same file appends the keys twice.

Items are written only after the scan has finished.  A scan that fails part
way through is logged and the items collected so far are still written,
unless the Exporter is running in strict mode.
*/
package dynkeys
