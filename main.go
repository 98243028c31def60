// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package main

import (
	"log"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/cmd/linkframe"
)

func main() {
	if err := linkframe.Execute(); err != nil {
		log.Fatal(err)
	}
}
