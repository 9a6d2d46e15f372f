// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/stretchr/testify/assert"
)

var sizeTests = []struct {
	name     string
	item     map[string]*dynamodb.AttributeValue
	expected int
}{
	{"string", map[string]*dynamodb.AttributeValue{"id": {S: aws.String("abc")}}, 5},
	{"number", map[string]*dynamodb.AttributeValue{"n": {N: aws.String("123.5")}}, 6},
	{"bool", map[string]*dynamodb.AttributeValue{"ok": {BOOL: aws.Bool(true)}}, 3},
	{"string-set", map[string]*dynamodb.AttributeValue{"ss": {SS: []*string{aws.String("a"), aws.String("bc")}}}, 8},
	{"list", map[string]*dynamodb.AttributeValue{"l": {L: []*dynamodb.AttributeValue{
		{S: aws.String("ab")}, {NULL: aws.Bool(true)},
	}}}, 7},
	{"map", map[string]*dynamodb.AttributeValue{"m": {M: map[string]*dynamodb.AttributeValue{
		"k": {S: aws.String("v")},
	}}}, 6},
	{"empty", map[string]*dynamodb.AttributeValue{}, 0},
}

func TestCalcItemSize(t *testing.T) {
	for _, test := range sizeTests {
		assert.Equal(t, test.expected, calcItemSize(test.item), test.name)
	}
}
