package main

import (
	"os"

	"github.com/shivanshkc/ubench/internal/cli"
	"github.com/shivanshkc/ubench/internal/suite"
	"github.com/shivanshkc/ubench/pkg/sysinfo"
)

func main() {
	if err := cli.Execute(sysinfo.Detect(), suite.Register); err != nil {
		os.Exit(1)
	}
}
