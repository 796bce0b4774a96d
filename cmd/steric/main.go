/*
Copyright © 2024 the steric authors.
This file is part of steric.

steric is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

steric is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with steric.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command steric is a command-line interface for calculating steric
// sea level change.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/steric/stericutil"
)

func main() {
	if err := stericutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
