// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/datahub/cmd/datahub/cmd"
)

func main() {
	cmd.Execute()
}
