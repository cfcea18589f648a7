// Command zkattendctl is a CLI front end over package zkattend: fetch one
// device's users and attendance log, scan the local network for devices, or
// list users stored on one device. Its command tree mirrors the
// dantte-lp-gobfd example's cmd/gobfdctl layout, rebuilt on cobra.
package main

import "github.com/zkattend/zkattend/cmd/zkattendctl/commands"

func main() {
	commands.Execute()
}
