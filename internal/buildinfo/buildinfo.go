// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package buildinfo

import "fmt"

// Set via ldflags:
//
//	-X github.com/autobrr/burst/internal/buildinfo.Version=v1.0.0
var (
	Version = "dev"
	Commit  = ""
	Date    = ""

	UserAgent = ""
)

func init() {
	UserAgent = fmt.Sprintf("burst/%s (+https://github.com/autobrr/burst)", Version)
}
