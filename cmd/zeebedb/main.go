package main

import (
	"github.com/TitanUser/zeebedb/cmd/zeebedb/cmd"
	"github.com/TitanUser/zeebedb/pkg/di"
)

func main() {
	container := di.NewContainer()
	cmd.SetContainer(container)
	cmd.Execute()
}
