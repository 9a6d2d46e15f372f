// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

/*
Command dynkeys exports the primary keys of a DynamoDB table to a CSV file.

The table, the key attribute and the AWS profile to authenticate with are
read from the environment:
* DYNAMODB_TABLE_NAME
* DYNAMODB_PRIMARY_KEY_NAME
* AWS_PROFILE

The export command scans the whole table, reading only the key attribute,
and appends every string key value to the output file (by default
out/dynamodb_items.csv), one per line.  Existing content is kept, so
repeated exports to the same file accumulate duplicate keys.

If the scan fails part way through, the keys read so far are still written
and the command exits successfully with a warning, unless --strict is given.
*/
package main

import (
	"os"

	"github.com/gwatts/dynkeys/internal/cmd"
	cli "github.com/jawher/mow.cli"
)

var version = "dev"

func main() {
	app := cli.App("dynkeys", "Export the primary keys of a DynamoDB table to CSV")
	app.Version("v version", "dynkeys "+version)

	cmd.RegisterExportCommand(app)
	cmd.RegisterInfoCommand(app)

	app.Run(os.Args)
}
