// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import "github.com/aws/aws-sdk-go/service/dynamodb"

// approximate overhead for a list, map or set attribute
const containerOverhead = 3

// calcItemSize estimates the stored size of an item in bytes, following
// https://docs.aws.amazon.com/amazondynamodb/latest/developerguide/CapacityUnitCalculations.html
func calcItemSize(item map[string]*dynamodb.AttributeValue) (size int) {
	for name, av := range item {
		size += len(name) + calcAttrSize(av)
	}
	return size
}

func calcAttrSize(av *dynamodb.AttributeValue) int {
	if av == nil {
		return 0
	}
	switch {
	case av.S != nil:
		return len(*av.S)
	case av.N != nil:
		return len(*av.N)
	case av.B != nil:
		return len(av.B)
	case av.BOOL != nil, av.NULL != nil:
		return 1
	case av.SS != nil:
		return containerOverhead + sumStrings(av.SS)
	case av.NS != nil:
		return containerOverhead + sumStrings(av.NS)
	case av.BS != nil:
		size := containerOverhead
		for _, b := range av.BS {
			size += len(b)
		}
		return size
	case av.L != nil:
		size := containerOverhead
		for _, v := range av.L {
			size += calcAttrSize(v)
		}
		return size
	case av.M != nil:
		return containerOverhead + calcItemSize(av.M)
	}
	return 0
}

func sumStrings(vals []*string) (size int) {
	for _, v := range vals {
		if v != nil {
			size += len(*v)
		}
	}
	return size
}
