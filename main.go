/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package main

import (
	"fmt"
	"os"

	"github.com/ortuman/gjab/app"
)

func main() {
	if err := app.New(os.Stdout, os.Args).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "gjab: %v\n", err)
		os.Exit(1)
	}
}
