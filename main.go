package main

import "github.com/adiwijaya/course-management/cmd"

func main() {
	cmd.Execute()
}
