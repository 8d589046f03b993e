// Command tarxone extracts a single named entry from a tar archive to
// stdout, matching by exact logical path.
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
	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: tarxone <entry-path> [archive]")
		os.Exit(2)
	}
	if err := run(args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tarxone:", err)
		os.Exit(1)
	}
}

func run(want string, rest []string) error {
	in := os.Stdin
	if len(rest) > 0 {
		f, err := os.Open(rest[0])
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
			return fmt.Errorf("entry %q not found", want)
		}
		if err != nil {
			return err
		}
		if e.Name != want {
			continue
		}
		_, err = io.Copy(os.Stdout, e)
		return err
	}
}
