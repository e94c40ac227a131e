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

package cloud

import (
	"context"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func TestReadAll(t *testing.T) {
	dir, err := ioutil.TempDir("", "chembench_cloud")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	const want = "name = \"test\"\n"
	fname := filepath.Join(dir, "test.toml")
	if err := ioutil.WriteFile(fname, []byte(want), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		b, err := ReadAll(ctx, fname)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != want {
			t.Errorf("%q != %q", b, want)
		}
	})
	t.Run("file", func(t *testing.T) {
		b, err := ReadAll(ctx, "file://"+filepath.ToSlash(fname))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != want {
			t.Errorf("%q != %q", b, want)
		}
	})
	t.Run("not_found", func(t *testing.T) {
		if _, err := ReadAll(ctx, "file://"+filepath.ToSlash(filepath.Join(dir, "missing.toml"))); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("bad_provider", func(t *testing.T) {
		if _, err := ReadAll(ctx, "ftp://host/file.toml"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestSplitURL(t *testing.T) {
	for _, test := range []struct {
		location, bucket, key string
	}{
		{"file:///tmp/a/b.toml", "file:///tmp/a/", "b.toml"},
		{"gs://bucket/dir/b.toml", "gs://bucket", "dir/b.toml"},
		{"s3://bucket/b.toml?region=us-east-2", "s3://bucket?region=us-east-2", "b.toml"},
	} {
		t.Run(test.location, func(t *testing.T) {
			u, err := url.Parse(test.location)
			if err != nil {
				t.Fatal(err)
			}
			bucket, key := splitURL(u)
			if bucket != test.bucket {
				t.Errorf("bucket: %s != %s", bucket, test.bucket)
			}
			if key != test.key {
				t.Errorf("key: %s != %s", key, test.key)
			}
		})
	}
}
