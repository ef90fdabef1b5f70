package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"dynhtml/pkg/html"
	"dynhtml/pkg/js"
	"dynhtml/pkg/resource"
	stdnet "dynhtml/std/net"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "per-script execution limit (0 for none)")
	noscript := flag.Bool("noscript", false, "disable script execution")
	asHTML := flag.Bool("html", false, "print serialized HTML instead of the document outline")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dynhtml [flags] <url-or-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	target := flag.Arg(0)

	markup, err := readTarget(target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dynhtml:", err)
		os.Exit(1)
	}

	parser := html.NewParserSource(html.InputSource{Content: markup, SystemID: target})
	if !*noscript {
		engine := js.New(
			js.WithLoader(resource.NewFetcher(target)),
			js.WithTimeout(*timeout),
		)
		parser.EnableScripting(engine)
	}

	doc, err := parser.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dynhtml: parse:", err)
		os.Exit(1)
	}

	if *asHTML {
		fmt.Println(doc.Root.Serialize())
		return
	}
	printOutline(doc.Root, 0)
	fmt.Printf("\n%d stylesheet(s), %d script(s)\n", len(doc.Stylesheets), len(doc.Scripts))
}

func readTarget(target string) (string, error) {
	if stdnet.IsNetworkURL(target) {
		body, _, err := stdnet.Fetch(target)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}
	body, err := os.ReadFile(target)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func printOutline(n *html.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Text)
		if text != "" {
			fmt.Printf("%s%q\n", indent, excerpt(text, 60))
		}
		return
	case html.ElementNode:
		if n.TagName != "document" {
			fmt.Printf("%s<%s>\n", indent, n.TagName)
			depth++
		}
	}
	for _, child := range n.Children {
		printOutline(child, depth)
	}
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
