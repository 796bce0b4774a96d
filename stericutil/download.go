/*
Copyright © 2024 the steric authors.
This file is part of steric.

steric is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

steric is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with steric.  If not, see <http://www.gnu.org/licenses/>.
*/

package stericutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file to a temporary directory and
// returns the path to the downloaded file.
func maybeDownload(ctx context.Context, location string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(location); !os.IsNotExist(err) {
		return location, nil
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		log.WithField("url", location).Info("downloading input file")
		return downloadHTTP(location, log)
	}

	if IsBlob(location) {
		log.WithField("url", location).Info("downloading input file from blob storage")
		return downloadBlob(ctx, location)
	}

	return location, nil
}

// removeDownload deletes the temporary directory that maybeDownload
// created for location, if it created one.
func removeDownload(location, local string) error {
	if local == location {
		return nil
	}
	return os.RemoveAll(filepath.Dir(local))
}

// downloadDir creates a temporary directory for downloads.
func downloadDir() (string, error) {
	dir, err := os.MkdirTemp("", "steric")
	if err != nil {
		return "", fmt.Errorf("steric: failed creating temporary download directory: %v", err)
	}
	return dir, nil
}

// downloadRetries is the number of times a failed download is retried.
const downloadRetries = 3

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file. Connection failures and server
// errors are retried.
func downloadHTTP(fileURL string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("steric: parsing download url: %v", err)
	}
	dir, err := downloadDir()
	if err != nil {
		return "", err
	}
	var resp *http.Response
	err = backoff.RetryNotify(
		func() error {
			var err error
			resp, err = http.Get(fileURL)
			if err != nil {
				return fmt.Errorf("steric: downloading %s: %v", fileURL, err)
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				resp.Body.Close()
				return fmt.Errorf("steric: downloading %s: %s", fileURL, resp.Status)
			}
			return nil
		},
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries),
		func(err error, d time.Duration) {
			log.Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("steric: downloading %s: %s", fileURL, resp.Status)
	}
	return saveDownload(resp.Body, filepath.Join(dir, path.Base(u.Path)))
}

func saveDownload(r io.Reader, fname string) (string, error) {
	w, err := os.Create(fname)
	if err != nil {
		return "", fmt.Errorf("steric: failed creating file for download: %v", err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("steric: saving download to %s: %v", fname, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fname, nil
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// Even if name contains subdirectories, only the base directory name will be
// used when opening the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	url, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("stericutil.OpenBucket: %v", err)
	}
	switch url.Scheme {
	case "file":
		return fileblob.NewBucket(url.Hostname())
	case "gs":
		return gsBucket(ctx, url.Hostname())
	case "s3":
		return s3Bucket(ctx, url.Hostname())
	default:
		return nil, fmt.Errorf("stericutil.OpenBucket: invalid provider %s", url.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// blobKey splits a blob storage location into its bucket and key.
func blobKey(location string) (bucketName, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("steric: parsing blob location '%s': %v", location, err)
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, location string) (string, error) {
	bucketName, key, err := blobKey(location)
	if err != nil {
		return "", err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return "", err
	}
	dir, err := downloadDir()
	if err != nil {
		return "", err
	}
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return "", fmt.Errorf("steric: reading blob '%s': %v", location, err)
	}
	defer r.Close()
	return saveDownload(r, filepath.Join(dir, path.Base(key)))
}
