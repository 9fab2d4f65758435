// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package linedataset

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalConn stores everything in a directory on the local machine,
// with each bucket being a subdirectory of it. This is the normal
// way to build a dataset, and is also useful for testing.
type LocalConn struct {
	// these should be set before running Init(), or left to defaults
	Dir    string
	Logger *log.Logger
}

// Init creates the storage directory if necessary
func (a *LocalConn) Init() error {
	if a.Dir == "" {
		a.Dir = "."
	}
	err := os.MkdirAll(a.Dir, 0755)
	if err != nil {
		return fmt.Errorf("Error creating storage directory: %v", err)
	}

	if a.Logger == nil {
		a.Logger = log.New(os.Stdout, "", 0)
	}

	return nil
}

// ListObjects lists the keys in a bucket which start with prefix,
// in lexical order
func (a *LocalConn) ListObjects(bucket string, prefix string) ([]string, error) {
	var names []string
	root := filepath.Join(a.Dir, bucket)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		n := filepath.ToSlash(rel)
		if strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return names, nil
	}
	sort.Strings(names)
	return names, err
}

// Download just copies the file from Dir/bucket/key to path
func (a *LocalConn) Download(bucket string, key string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fin, err := os.Open(filepath.Join(a.Dir, bucket, key))
	if err != nil {
		return err
	}
	defer fin.Close()
	_, err = io.Copy(f, fin)
	return err
}

// Upload just copies the file from path to Dir/bucket/key
func (a *LocalConn) Upload(bucket string, key string, path string) error {
	dest := filepath.Join(a.Dir, bucket, filepath.FromSlash(key))
	err := os.MkdirAll(filepath.Dir(dest), 0755)
	if err != nil {
		return fmt.Errorf("Error creating directory for %s: %v", key, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	fin, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fin.Close()
	_, err = io.Copy(f, fin)
	return err
}

func (a *LocalConn) GetLogger() *log.Logger {
	return a.Logger
}

// Log records an item in the with the Logger. Arguments are handled
// as with fmt.Println.
func (a *LocalConn) Log(v ...interface{}) {
	a.Logger.Println(v...)
}
