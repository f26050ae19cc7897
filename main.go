// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package main

import "github.com/stratlog/stratlog/cmd"

func main() {
	cmd.Execute()
}
