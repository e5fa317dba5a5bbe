// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/sframe/parmaker/cmd/parmaker"

func main() {
	cmd.Execute()
}
