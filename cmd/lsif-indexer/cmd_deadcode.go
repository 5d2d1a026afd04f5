package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mizchi/lsif-indexer/internal/indexer"
)

func deadCodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "dead-code",
		Usage: "list symbols unreachable from any entry point",
		Flags: []cli.Flag{
			outputFormatFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			dead := indexer.DeadCode(eng.graph, cfg.FeatureFlags.DeadCodeEntryPoints)
			if len(dead) == 0 {
				return cli.Exit("", 1)
			}

			var locs []location
			for _, id := range dead {
				if sym, ok := lookupSymbol(eng.cache, eng.graph, id); ok {
					locs = append(locs, location{Symbol: sym})
				}
			}
			out, err := formatLocations(c.String("format"), locs)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}
