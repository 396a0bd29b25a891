/*
Copyright © 2026 the PoreNet authors.
This file is part of PoreNet.

PoreNet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreNet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreNet.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command porenet is a command-line interface for the PoreNet two-phase
// pore-network flow simulator.
package main

import (
	"os"

	"github.com/porescale/porenet/porenetutil"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := porenetutil.Root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
