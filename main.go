/*
Copyright © 2026 bigbatmanorg
*/
package main

import "github.com/bigbatmanorg/pasreporter/cmd"

func main() {
	cmd.Execute()
}
