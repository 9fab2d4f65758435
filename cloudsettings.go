// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package linedataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// This file contains various cloud account specific stuff; change this if
// you want to use the cloud functionality on your own site, or override it
// in the cloudsettings file.

const (
	defaultAwsRegion = "eu-west-2"
	storageDataset   = "rescribelinedataset"
)

// CloudSettings are the details needed to store a dataset in the cloud
type CloudSettings struct {
	Region string
	Bucket string
}

// DefaultCloudSettings returns the settings compiled in to the program
func DefaultCloudSettings() CloudSettings {
	return CloudSettings{Region: defaultAwsRegion, Bucket: storageDataset}
}

// CloudSettingsPath returns the location of the cloudsettings file
func CloudSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "linedataset", "cloudsettings")
}

// LoadCloudSettings reads settings from a file of KEY=value lines,
// using the defaults for anything not set. The keys understood are
// AWS_REGION and DATASET_BUCKET. A missing file is not an error.
func LoadCloudSettings(path string) (CloudSettings, error) {
	s := DefaultCloudSettings()
	if path == "" {
		return s, nil
	}

	vals, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("Error reading cloud settings from %s: %v", path, err)
	}

	if v := vals["AWS_REGION"]; v != "" {
		s.Region = v
	}
	if v := vals["DATASET_BUCKET"]; v != "" {
		s.Bucket = v
	}
	return s, nil
}
