// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// CladeTree is a tool to annotate phylogenetic trees
// of protein sequences with named clades.
package main

import (
	"github.com/js-arias/cladetree/cmd/cladetree/annotate"
	"github.com/js-arias/cladetree/cmd/cladetree/clades"
	"github.com/js-arias/cladetree/cmd/cladetree/importcmd"
	"github.com/js-arias/cladetree/cmd/cladetree/list"
	"github.com/js-arias/cladetree/cmd/cladetree/logo"
	"github.com/js-arias/cladetree/cmd/cladetree/mappos"
	"github.com/js-arias/cladetree/cmd/cladetree/newick"
	"github.com/js-arias/cladetree/cmd/cladetree/reroot"
	"github.com/js-arias/cladetree/cmd/cladetree/sim"
	"github.com/js-arias/cladetree/cmd/cladetree/sortaln"
	"github.com/js-arias/cladetree/cmd/cladetree/tax"
	"github.com/js-arias/cladetree/cmd/cladetree/terms"
	"github.com/js-arias/command"
)

var app = &command.Command{
	Usage: "cladetree <command> [<argument>...]",
	Short: "a tool to annotate phylogenetic trees with named clades",
}

func init() {
	app.Add(annotate.Command)
	app.Add(clades.Command)
	app.Add(importcmd.Command)
	app.Add(list.Command)
	app.Add(logo.Command)
	app.Add(mappos.Command)
	app.Add(newick.Command)
	app.Add(reroot.Command)
	app.Add(sim.Command)
	app.Add(sortaln.Command)
	app.Add(tax.Command)
	app.Add(terms.Command)
}

func main() {
	app.Main()
}
