// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import "os"

// Environment variables read by the resolvers.
const (
	EnvTableName      = "DYNAMODB_TABLE_NAME"
	EnvPrimaryKeyName = "DYNAMODB_PRIMARY_KEY_NAME"
	EnvProfile        = "AWS_PROFILE"
)

// EnvLookup returns the value of an environment variable and whether it
// was set.  os.LookupEnv satisfies it.
type EnvLookup func(key string) (string, bool)

// OSEnv reads from the process environment.
var OSEnv EnvLookup = os.LookupEnv

// ScanConfig describes a single export.
type ScanConfig struct {
	TableName      string // Table to scan.
	PrimaryKeyName string // Attribute whose string values are exported.
	OutputFile     string // CSV file to append to; set by the caller.
}

// ConnectionProfile names the local AWS profile used to authenticate.
type ConnectionProfile struct {
	ProfileName string
}

// ResolveScanConfig builds a ScanConfig from DYNAMODB_TABLE_NAME and
// DYNAMODB_PRIMARY_KEY_NAME.  OutputFile is left empty.
//
// A *MissingSettingError is returned if either variable is unset or empty.
// The values are not otherwise validated; a bad table name is reported by
// DynamoDB when the scan starts.
func ResolveScanConfig(lookup EnvLookup) (ScanConfig, error) {
	table, err := requireEnv(lookup, EnvTableName)
	if err != nil {
		return ScanConfig{}, err
	}
	key, err := requireEnv(lookup, EnvPrimaryKeyName)
	if err != nil {
		return ScanConfig{}, err
	}
	return ScanConfig{
		TableName:      table,
		PrimaryKeyName: key,
	}, nil
}

// ResolveConnectionProfile reads AWS_PROFILE, with the same rules as
// ResolveScanConfig.
func ResolveConnectionProfile(lookup EnvLookup) (ConnectionProfile, error) {
	profile, err := requireEnv(lookup, EnvProfile)
	if err != nil {
		return ConnectionProfile{}, err
	}
	return ConnectionProfile{ProfileName: profile}, nil
}

func requireEnv(lookup EnvLookup, name string) (string, error) {
	if lookup == nil {
		lookup = OSEnv
	}
	v, ok := lookup(name)
	if !ok || v == "" {
		return "", &MissingSettingError{Name: name}
	}
	return v, nil
}
