/*
Copyright © 2019 the ChemBench authors.
This file is part of ChemBench.

ChemBench is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ChemBench is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ChemBench.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cloud reads ChemBench input files from the local file system
// or from blob storage.
package cloud

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // Register the "file" provider.
	_ "gocloud.dev/blob/gcsblob"  // Register the "gs" provider.
	_ "gocloud.dev/blob/s3blob"   // Register the "s3" provider.
	"gocloud.dev/gcerrors"
)

// MaxRetries is the number of times a failed blob read is retried.
const MaxRetries = 3

// Log receives messages about retried reads.
var Log logrus.FieldLogger = logrus.StandardLogger()

// splitURL splits a blob URL in the format 'provider://bucket/key' into
// the URL of its bucket and the key within the bucket. For the "file"
// provider the bucket is the directory holding the file.
func splitURL(u *url.URL) (bucketURL, key string) {
	p := strings.TrimLeft(u.Path, "/")
	if u.Scheme == "file" {
		dir, file := path.Split(u.Path)
		b := url.URL{Scheme: "file", Path: dir, RawQuery: u.RawQuery}
		return b.String(), file
	}
	b := url.URL{Scheme: u.Scheme, Host: u.Host, RawQuery: u.RawQuery}
	return b.String(), p
}

// OpenBucket opens the blob storage bucket holding the file at
// location, where location must be in the format 'provider://bucket/key'.
// It returns the bucket and the key of the file within it.
// The currently accepted storage providers are "file" for the local
// filesystem (e.g., for testing), "gs" for Google Cloud Storage, and
// "s3" for AWS S3. Credentials are taken from the environment.
func OpenBucket(ctx context.Context, location string) (*blob.Bucket, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file", "gs", "s3":
	default:
		return nil, "", fmt.Errorf("cloud.OpenBucket: invalid provider %q", u.Scheme)
	}
	bucketURL, key := splitURL(u)
	if key == "" {
		return nil, "", fmt.Errorf("cloud.OpenBucket: %s does not name a file", location)
	}
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, "", fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	return b, key, nil
}

// IsBlobURL returns whether location names a file in blob storage
// rather than on the local file system.
func IsBlobURL(location string) bool {
	return strings.Contains(location, "://")
}

// ReadAll returns the contents of the file at location, which may be
// a local path or a blob storage URL (see OpenBucket). Failed blob
// reads are retried with exponential backoff, except when the file
// does not exist.
func ReadAll(ctx context.Context, location string) ([]byte, error) {
	if !IsBlobURL(location) {
		b, err := ioutil.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("cloud: %v", err)
		}
		return b, nil
	}
	bucket, key, err := OpenBucket(ctx, location)
	if err != nil {
		return nil, err
	}
	defer bucket.Close()

	var data []byte
	var permanent error
	err = backoff.RetryNotify(
		func() error {
			var err error
			data, err = bucket.ReadAll(ctx, key)
			if gcerrors.Code(err) == gcerrors.NotFound || ctx.Err() != nil {
				permanent = err
				return nil
			}
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), MaxRetries), ctx),
		func(err error, d time.Duration) {
			Log.WithField("location", location).Warnf("%v: retrying in %v", err, d)
		},
	)
	if permanent != nil {
		err = permanent
	}
	if err != nil {
		return nil, fmt.Errorf("cloud: reading %s: %v", location, err)
	}
	return data, nil
}
