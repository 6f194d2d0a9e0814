// Command holybpfc is the compiler's CLI front end: compile/run/repl
// subcommands registered through google/subcommands, the way
// informatter-nilan's cmd_run.go/cmd_repl_compiled.go/cmd_emit_bytecode.go
// register "run"/"cRepl"/"emit" against the same library, except this
// main.go actually wires subcommands.Register + subcommands.Execute,
// where the teacher's binary never called either.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{target: "linux"}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
