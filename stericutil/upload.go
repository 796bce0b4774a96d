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
	"os"
	"path"
	"path/filepath"

	"github.com/google/go-cloud/blob"
)

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// uploadOutput copies the local files to their blob storage locations.
// The local files must be closed before it is called.
func (u *uploader) uploadOutput(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		if err := upload(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

func upload(ctx context.Context, local, location string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("steric: opening file '%s' for upload: %s", local, err)
	}
	defer r.Close()
	bucketName, key, err := blobKey(location)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("steric: opening bucket to upload file '%s': %s", location, err)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("steric: opening writer to upload file '%s': %s", location, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("steric: uploading file '%s' to '%s': %s", local, location, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("steric: finishing upload of '%s': %s", location, err)
	}
	return nil
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// uploadOutput method is run.
func (u *uploader) maybeUpload(location string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(location) {
		return location
	}
	if u.dir == "" {
		u.dir, u.err = os.MkdirTemp("", "steric")
		if u.err != nil {
			return ""
		}
	}
	local := filepath.Join(u.dir, path.Base(location))
	u.files = append(u.files, [2]string{local, location})
	return local
}

// cleanup removes the temporary directory holding files for upload.
func (u *uploader) cleanup() error {
	if u.dir == "" {
		return nil
	}
	err := os.RemoveAll(u.dir)
	u.dir = ""
	u.files = nil
	return err
}
