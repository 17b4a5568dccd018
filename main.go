// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/landing/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
