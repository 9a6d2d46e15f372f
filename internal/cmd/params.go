package cmd

import "time"

const (
	statsFrequency    = 2 * time.Second
	logFrequency      = 30 * time.Second
	defaultOutputFile = "out/dynamodb_items.csv"

	exitFailure = 100 // connection, scan, write failures and aborts
	exitUsage   = 101 // missing or invalid configuration
)
