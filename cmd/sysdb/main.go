// Command sysdb is a minimal interactive/batch client for sysdbd,
// mirroring the reference client's single-shot query mode: connect,
// send one query, print the reply, exit.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sysdb/sysdbd/pkg/client"
)

func main() {
	addr := flag.String("host", "127.0.0.1:7711", "sysdbd address (host:port)")
	user := flag.String("user", currentUser(), "username presented at STARTUP")
	query := flag.String("query", "", "single query to run, then exit; omit for an interactive prompt")
	timeout := flag.Duration("timeout", 5*time.Second, "connection timeout")
	flag.Parse()

	c, err := client.Dial(*addr, *user, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sysdb: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if *query != "" {
		runQuery(c, *query)
		return
	}

	repl(c)
}

func runQuery(c *client.Client, query string) {
	reply, err := c.Query(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sysdb: %v\n", err)
		os.Exit(1)
	}
	printReply(reply)
}

func repl(c *client.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("sysdb> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("sysdb> ")
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		reply, err := c.Query(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sysdb: %v\n", err)
			return
		}
		printReply(reply)
		fmt.Print("sysdb> ")
	}
}

func printReply(reply *client.Reply) {
	for _, line := range reply.Logs {
		fmt.Fprintf(os.Stderr, "LOG: %s\n", line)
	}
	fmt.Println(reply.String())
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "sysdb"
}
