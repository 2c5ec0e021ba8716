// Command infosynth enriches spreadsheet rows with web search results
// summarised by a language model.
package main

import (
	"os"

	"github.com/custodia-labs/infosynth/internal/adapters/driven/ai"
	"github.com/custodia-labs/infosynth/internal/adapters/driving/cli"
)

func main() {
	a := &app{}
	cli.SetWiring(cli.Wiring{
		Settings: a.settings,
		Runtime:  a.runtime,
		Checker:  ai.NewConfigValidator(),
	})

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
