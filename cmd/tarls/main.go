// Command tarls lists the entries of a tar archive read from stdin or a
// named file, one line per entry: a type marker ("d" for directories, "-"
// otherwise), the size, and the path.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/relaxedtar/tarsafe/tar"
)

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "tarls:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	in := os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	r := tar.NewReader(in)
	for {
		e, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		kind := "-"
		if e.IsDir() {
			kind = "d"
		}
		fmt.Printf("%s %10d %s\n", kind, e.Size, e.Name)
	}
}
