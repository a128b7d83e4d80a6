// Command midenc is the CLI entry point; all real logic lives in pkg/cmd.
package main

import "github.com/0xPolygonMiden/compiler-sub007/pkg/cmd"

func main() {
	cmd.Execute()
}
