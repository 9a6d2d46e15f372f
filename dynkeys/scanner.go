// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/juju/ratelimit"
)

const (
	// DefaultPageSize is the maximum number of items requested per Scan page.
	DefaultPageSize = 1000

	keyPlaceholder = "#pk"
)

// DynScanner defines the portion of the dynamodb service that Scanner
// requires.  *dynamodb.DynamoDB implements it.
type DynScanner interface {
	ScanPagesWithContext(ctx aws.Context, input *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, opts ...request.Option) error
}

// ScannerStats is returned by Scanner.Stats.
type ScannerStats struct {
	ItemsRead    int64
	PagesRead    int64
	BytesRead    int64
	CapacityUsed float64
}

// Scanner reads every item of a table, projected to a single attribute,
// by following the scan's continuation keys until the table is exhausted.
type Scanner struct {
	Dyn            DynScanner
	TableName      string
	KeyName        string  // The only attribute requested from DynamoDB.
	ConsistentRead bool    // Setting to true will use double the read capacity.
	PageSize       int64   // Items per page; defaults to DefaultPageSize.
	ReadCapacity   float64 // Average read capacity to use; 0 for unlimited.

	rateLimit    *ratelimit.Bucket
	itemsRead    int64
	pagesRead    int64
	bytesRead    int64
	capacityUsed int64 // multiplied by 10
}

// Collect runs the scan to completion and returns all items in the order
// DynamoDB returned them.
//
// If a page request fails the remaining pages are abandoned; the items
// read so far are returned along with a *ScanError.
func (s *Scanner) Collect(ctx context.Context) (items []map[string]*dynamodb.AttributeValue, err error) {
	if s.ReadCapacity > 0 {
		rc := int64(math.Max(1, s.ReadCapacity))
		s.rateLimit = ratelimit.NewBucketWithQuantum(time.Second, rc, rc)
	}

	var waitErr error
	err = s.Dyn.ScanPagesWithContext(ctx, s.scanInput(), func(page *dynamodb.ScanOutput, lastPage bool) bool {
		var pageBytes int64
		for _, item := range page.Items {
			pageBytes += int64(calcItemSize(item))
		}
		items = append(items, page.Items...)

		atomic.AddInt64(&s.pagesRead, 1)
		atomic.AddInt64(&s.itemsRead, int64(len(page.Items)))
		atomic.AddInt64(&s.bytesRead, pageBytes)

		usedCapacity := float64(1)
		if page.ConsumedCapacity != nil && page.ConsumedCapacity.CapacityUnits != nil {
			usedCapacity = *page.ConsumedCapacity.CapacityUnits
			atomic.AddInt64(&s.capacityUsed, int64(usedCapacity*10))
		}

		if lastPage || s.rateLimit == nil {
			return true
		}
		waitErr = s.waitForRateLimit(ctx, int64(math.Ceil(usedCapacity)))
		return waitErr == nil
	})
	if err == nil {
		err = waitErr
	}
	if err != nil {
		return items, &ScanError{
			Table:     s.TableName,
			PagesRead: atomic.LoadInt64(&s.pagesRead),
			Err:       err,
		}
	}
	return items, nil
}

// Stats returns current aggregate statistics about an ongoing or completed scan.
// It is safe to call from concurrent goroutines.
func (s *Scanner) Stats() ScannerStats {
	return ScannerStats{
		ItemsRead:    atomic.LoadInt64(&s.itemsRead),
		PagesRead:    atomic.LoadInt64(&s.pagesRead),
		BytesRead:    atomic.LoadInt64(&s.bytesRead),
		CapacityUsed: float64(atomic.LoadInt64(&s.capacityUsed)) / 10,
	}
}

func (s *Scanner) scanInput() *dynamodb.ScanInput {
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &dynamodb.ScanInput{
		TableName:                aws.String(s.TableName),
		ConsistentRead:           aws.Bool(s.ConsistentRead),
		Limit:                    aws.Int64(pageSize),
		Select:                   aws.String(dynamodb.SelectSpecificAttributes),
		ProjectionExpression:     aws.String(keyPlaceholder),
		ExpressionAttributeNames: map[string]*string{keyPlaceholder: aws.String(s.KeyName)},
		ReturnConsumedCapacity:   aws.String(dynamodb.ReturnConsumedCapacityTotal),
	}
}

// Interruptible rate limit wait.
// Returns the context's error if it was cancelled while waiting.
func (s *Scanner) waitForRateLimit(ctx context.Context, usedCapacity int64) error {
	d := s.rateLimit.Take(usedCapacity)
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
