// Copyright 2026 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// IsLocal returns true if path refers to the local filesystem (no URL
// scheme such as "s3://").
func IsLocal(path string) bool {
	scheme, _, err := file.ParsePath(path)
	return err == nil && scheme == ""
}

// MkdirAll creates dir if it is a local path.  Object stores have no
// directories, so it is a no-op for them.
func MkdirAll(dir string) error {
	if !IsLocal(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.E(err, "mkdir", dir)
	}
	return nil
}

// ListFiles returns the paths of the regular files directly under dir, in
// lexicographic order.  Subdirectories are skipped.
func ListFiles(ctx context.Context, dir string) ([]string, error) {
	return list(ctx, dir, false)
}

// ListDirs returns the paths of the subdirectories directly under dir, in
// lexicographic order.
func ListDirs(ctx context.Context, dir string) ([]string, error) {
	return list(ctx, dir, true)
}

func list(ctx context.Context, dir string, dirs bool) ([]string, error) {
	if IsLocal(dir) {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, errors.E(errors.NotExist, err, "list", dir)
		}
		if !info.IsDir() {
			return nil, errors.E(errors.Invalid, "list", dir+": not a directory")
		}
	}
	var paths []string
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() != dirs {
			continue
		}
		paths = append(paths, strings.TrimSuffix(lister.Path(), "/"))
	}
	if err := lister.Err(); err != nil {
		return nil, errors.E(err, "list", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// CopyFile copies src to dst, overwriting dst.  For local files the
// permission bits and modification time of src are carried over, like
// "cp -p".
func CopyFile(ctx context.Context, src, dst string) error {
	if err := copyContents(ctx, src, dst); err != nil {
		return err
	}
	if !IsLocal(src) || !IsLocal(dst) {
		return nil
	}
	info, err := os.Stat(src)
	if err != nil {
		return errors.E(err, "stat", src)
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.E(err, "chmod", dst)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.E(err, "chtimes", dst)
	}
	return nil
}

func copyContents(ctx context.Context, src, dst string) (err error) {
	in, err := file.Open(ctx, src)
	if err != nil {
		return errors.E(err, "open", src)
	}
	defer file.CloseAndReport(ctx, in, &err)
	out, err := file.Create(ctx, dst)
	if err != nil {
		return errors.E(err, "create", dst)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if _, err = io.Copy(out.Writer(ctx), in.Reader(ctx)); err != nil {
		return errors.E(err, "copy", src, dst)
	}
	return nil
}
