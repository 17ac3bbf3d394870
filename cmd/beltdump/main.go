// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command beltdump prints the column layout of one or more binary
// table files: labels, types, row count, and (for categorical
// columns) dictionary size.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/format"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: beltdump FILE...")
		os.Exit(1)
	}

	o := bufio.NewWriter(os.Stdout)
	defer o.Flush()

	for _, arg := range args {
		if err := dump(o, arg); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", arg, err)
			os.Exit(1)
		}
	}
}

func dump(o *bufio.Writer, path string) error {
	tbl, err := format.Load(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(o, "%s: %d columns, %d rows\n", path, tbl.Width(), tbl.Height())
	for i, label := range tbl.Labels() {
		col := tbl.Column(i)
		typ := col.Type()
		fmt.Fprintf(o, "  %-24s %-10s", label, typ.ID)
		if cat, ok := col.(*column.Categorical); ok {
			fmt.Fprintf(o, " width=%d dict=%d", cat.IndexWidth(), cat.Dictionary().Size())
			if _, boolean := cat.PositiveIndex(); boolean {
				fmt.Fprint(o, " boolean")
			}
		}
		fmt.Fprintln(o)
	}
	return nil
}
