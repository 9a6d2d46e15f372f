// Copyright 2016 Gareth Watts
// Licensed under an MIT license
// See the LICENSE file for details

package dynkeys

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCredentials = `[exporter]
aws_access_key_id = AKIAEXAMPLEEXPORTER
aws_secret_access_key = exporter-secret
`
	testConfig = `[profile exporter]
region = eu-west-1
`
)

// isolateAWS points the SDK at temporary shared config files and clears
// any credentials or region set in the environment.
func isolateAWS(t *testing.T) {
	dir := t.TempDir()
	credsFile := filepath.Join(dir, "credentials")
	configFile := filepath.Join(dir, "config")
	require.NoError(t, ioutil.WriteFile(credsFile, []byte(testCredentials), 0600))
	require.NoError(t, ioutil.WriteFile(configFile, []byte(testConfig), 0600))

	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", credsFile)
	t.Setenv("AWS_CONFIG_FILE", configFile)
	for _, name := range []string{
		"AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY",
		"AWS_SECRET_ACCESS_KEY", "AWS_SECRET_KEY",
		"AWS_SESSION_TOKEN", "AWS_REGION", "AWS_DEFAULT_REGION",
		"AWS_PROFILE", "AWS_DEFAULT_PROFILE",
	} {
		t.Setenv(name, "")
	}
}

func TestBuildClient(t *testing.T) {
	isolateAWS(t)

	dyn, err := BuildClient(ConnectionProfile{ProfileName: "exporter"}, ClientOptions{})
	require.NoError(t, err)
	require.NotNil(t, dyn)
	assert.Equal(t, "eu-west-1", aws.StringValue(dyn.Config.Region))

	creds, err := dyn.Config.Credentials.Get()
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLEEXPORTER", creds.AccessKeyID)
}

func TestBuildClientOptions(t *testing.T) {
	isolateAWS(t)

	dyn, err := BuildClient(ConnectionProfile{ProfileName: "exporter"}, ClientOptions{
		Region:     "us-east-2",
		MaxRetries: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "us-east-2", aws.StringValue(dyn.Config.Region))
	assert.Equal(t, 3, aws.IntValue(dyn.Config.MaxRetries))
}

func TestBuildClientUnknownProfile(t *testing.T) {
	isolateAWS(t)

	_, err := BuildClient(ConnectionProfile{ProfileName: "nobody"}, ClientOptions{})
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "expected ConnectionError, got %T", err)
	assert.Equal(t, "nobody", connErr.Profile)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestBuildClientNoProfile(t *testing.T) {
	_, err := BuildClient(ConnectionProfile{}, ClientOptions{})
	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
}
