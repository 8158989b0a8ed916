package main

import "github.com/LieberInstitute/slurmjobs/cmd"

func main() {
	cmd.Execute()
}
