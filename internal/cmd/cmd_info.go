// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package cmd

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/gwatts/dynkeys/dynkeys"
	cli "github.com/jawher/mow.cli"
)

// RegisterInfoCommand adds the info command to app.
func RegisterInfoCommand(app *cli.Cli) {
	app.Command("info", "Display the key schema and size of the table to export", func(cmd *cli.Cmd) {
		cmd.Spec = "[--region] [--env-file]"
		action := &tableInfo{
			region: cmd.String(cli.StringOpt{
				Name:   "region",
				Value:  "",
				Desc:   "AWS region; defaults to the region configured for the profile",
				EnvVar: "AWS_REGION_OVERRIDE",
			}),
			envFile: cmd.String(cli.StringOpt{
				Name:   "env-file",
				Value:  "",
				Desc:   "Load environment variables from this dotenv file; variables already set take precedence",
				EnvVar: "ENV_FILE",
			}),
		}
		cmd.Action = action.run
	})
}

var tableInfoTmpl = template.Must(template.New("info").Parse(`
Table Name...........: {{ .TableName }}
Table ARN............: {{ .TableARN }}
Status ..............: {{ .Status }}
Item Count ..........: {{ .ItemCount }}
Size ................: {{ .Size }}
Hash Key ............: {{ .HashKey }}
Range Key ...........: {{ .RangeKey }}
Export Key ..........: {{ .ExportKey }}
`))

type tableSummary struct {
	TableName string
	TableARN  string
	Status    string
	ItemCount int64
	Size      string
	HashKey   string
	RangeKey  string
	ExportKey string
}

func summarizeTable(desc *dynamodb.TableDescription, exportKey string) tableSummary {
	sum := tableSummary{
		TableName: aws.StringValue(desc.TableName),
		TableARN:  aws.StringValue(desc.TableArn),
		Status:    aws.StringValue(desc.TableStatus),
		ItemCount: aws.Int64Value(desc.ItemCount),
		Size:      fmtBytes(aws.Int64Value(desc.TableSizeBytes)),
		RangeKey:  "-",
		ExportKey: exportKey,
	}
	for _, k := range desc.KeySchema {
		switch aws.StringValue(k.KeyType) {
		case dynamodb.KeyTypeHash:
			sum.HashKey = aws.StringValue(k.AttributeName)
		case dynamodb.KeyTypeRange:
			sum.RangeKey = aws.StringValue(k.AttributeName)
		}
	}
	if sum.ExportKey == "" {
		sum.ExportKey = sum.HashKey + " (not set)"
	}
	return sum
}

type tableInfo struct {
	// options
	region  *string
	envFile *string
}

func (ti *tableInfo) run() {
	if err := loadEnvFile(*ti.envFile); err != nil {
		failCode(exitCode(err), "%v", err)
	}
	table, ok := dynkeys.OSEnv(dynkeys.EnvTableName)
	if !ok || table == "" {
		failCode(exitUsage, "%v", &dynkeys.MissingSettingError{Name: dynkeys.EnvTableName})
	}
	exportKey, _ := dynkeys.OSEnv(dynkeys.EnvPrimaryKeyName)

	profile, err := dynkeys.ResolveConnectionProfile(dynkeys.OSEnv)
	if err != nil {
		failCode(exitCode(err), "%v", err)
	}
	dyn, err := dynkeys.BuildClient(profile, dynkeys.ClientOptions{Region: *ti.region})
	if err != nil {
		fail("%v", err)
	}

	resp, err := dyn.DescribeTable(&dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		fail("Failed to describe table %s: %v", table, err)
	}
	if err := printTableInfo(os.Stdout, summarizeTable(resp.Table, exportKey)); err != nil {
		fail("%v", err)
	}
}

func printTableInfo(w io.Writer, sum tableSummary) error {
	if err := tableInfoTmpl.Execute(w, sum); err != nil {
		return fmt.Errorf("failed to print table info: %w", err)
	}
	return nil
}
