// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// ClientOptions adjusts the defaults loaded from the shared AWS config.
type ClientOptions struct {
	Region     string // Overrides the region configured for the profile.
	MaxRetries int    // Maximum retries for each request; 0 leaves the SDK default.
}

// BuildClient returns a DynamoDB client authenticated with the named
// profile from the shared credentials file.
//
// Region and other settings are loaded from the shared config for the same
// profile.  Credentials are resolved before returning so that an unknown
// profile is reported here rather than on the first request.  All failures
// are returned as a *ConnectionError.
func BuildClient(profile ConnectionProfile, opts ClientOptions) (*dynamodb.DynamoDB, error) {
	if profile.ProfileName == "" {
		return nil, &ConnectionError{Err: errors.New("no profile name supplied")}
	}

	cfg := aws.NewConfig().
		WithCredentials(credentials.NewSharedCredentials("", profile.ProfileName))
	if opts.Region != "" {
		cfg = cfg.WithRegion(opts.Region)
	}
	if opts.MaxRetries != 0 {
		cfg = cfg.WithMaxRetries(opts.MaxRetries)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		Profile:           profile.ProfileName,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, &ConnectionError{Profile: profile.ProfileName, Err: err}
	}

	if _, err := sess.Config.Credentials.Get(); err != nil {
		return nil, &ConnectionError{Profile: profile.ProfileName, Err: err}
	}

	return dynamodb.New(sess), nil
}
