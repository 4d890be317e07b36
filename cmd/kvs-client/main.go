// Command kvs-client is the command-line client for the key-value
// store: get, set, and rm subcommands against a running kvs-server.
// The --addr flag is recognised only before the positional arguments;
// a flag given after KEY or VALUE is treated as an extra argument.
package main

import (
	"flag"
	"fmt"
	"os"

	"kvs.dev/client"
	"kvs.dev/errors"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:4000", "IP:PORT of the server")

	switch sub {
	case "get":
		fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			usage()
			os.Exit(1)
		}
		runGet(*addr, fs.Arg(0))
	case "set":
		fs.Parse(os.Args[2:])
		if fs.NArg() != 2 {
			usage()
			os.Exit(1)
		}
		runSet(*addr, fs.Arg(0), fs.Arg(1))
	case "rm":
		fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			usage()
			os.Exit(1)
		}
		runRemove(*addr, fs.Arg(0))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client get [--addr IP:PORT] KEY")
	fmt.Fprintln(os.Stderr, "       kvs-client set [--addr IP:PORT] KEY VALUE")
	fmt.Fprintln(os.Stderr, "       kvs-client rm [--addr IP:PORT] KEY")
}

func runGet(addr, key string) {
	c, err := client.Connect(addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	value, ok, err := c.Get(key)
	if err != nil {
		fail(err)
	}
	if !ok {
		fmt.Println("Key not found")
		os.Exit(0)
	}
	fmt.Println(value)
}

func runSet(addr, key, value string) {
	c, err := client.Connect(addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	if err := c.Set(key, value); err != nil {
		fail(err)
	}
}

func runRemove(addr, key string) {
	c, err := client.Connect(addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	if err := c.Remove(key); err != nil {
		if errors.Is(errors.KeyNotFound, err) {
			fmt.Println("Key not found")
			os.Exit(1)
		}
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
