// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeTable(t *testing.T) {
	desc := &dynamodb.TableDescription{
		TableName:      aws.String("orders"),
		TableArn:       aws.String("arn:aws:dynamodb:eu-west-1:123456789012:table/orders"),
		TableStatus:    aws.String(dynamodb.TableStatusActive),
		ItemCount:      aws.Int64(42),
		TableSizeBytes: aws.Int64(2048),
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("customer"), KeyType: aws.String(dynamodb.KeyTypeHash)},
			{AttributeName: aws.String("created"), KeyType: aws.String(dynamodb.KeyTypeRange)},
		},
	}

	sum := summarizeTable(desc, "")
	assert.Equal(t, "customer", sum.HashKey)
	assert.Equal(t, "created", sum.RangeKey)
	assert.Equal(t, "customer (not set)", sum.ExportKey)
	assert.Equal(t, "2.0 KB", sum.Size)

	sum = summarizeTable(desc, "customer")
	assert.Equal(t, "customer", sum.ExportKey)

	buf := &bytes.Buffer{}
	require.NoError(t, printTableInfo(buf, sum))
	assert.Contains(t, buf.String(), "Hash Key ............: customer")
	assert.Contains(t, buf.String(), "Item Count ..........: 42")
}

func TestSummarizeTableHashOnly(t *testing.T) {
	sum := summarizeTable(&dynamodb.TableDescription{
		TableName: aws.String("users"),
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: aws.String(dynamodb.KeyTypeHash)},
		},
	}, "id")
	assert.Equal(t, "-", sum.RangeKey)
	assert.Equal(t, "0 bytes", sum.Size)
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("stdout closed")
}

func TestPrintTableInfoWriteError(t *testing.T) {
	err := printTableInfo(failWriter{}, tableSummary{TableName: "users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")
}
