/*
Copyright © 2020 the oilplume authors.
This file is part of oilplume.

oilplume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

oilplume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with oilplume.  If not, see <http://www.gnu.org/licenses/>.*/


// Command oilplume is a command-line interface for the oilplume oil droplet model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/oilplume/oilputil"
)

func main() {
	if err := oilputil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
