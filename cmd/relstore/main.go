package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/pyropy/relstore/lib/logger"
)

var log, _ = logger.New("relstore")

func main() {
	app := &cli.App{
		Name:  "relstore",
		Usage: "store files as release assets of a repository",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Repository as owner/name or URL (RELSTORE_REPO)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Access token with write access to the repository (RELSTORE_TOKEN)",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Release API root (RELSTORE_API_URL)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Directory of the local file catalog (RELSTORE_STORE_PATH)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Chunk size in bytes (RELSTORE_CHUNK_SIZE)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every request",
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				logger.SetLevel(zapcore.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			uploadCmd,
			downloadCmd,
			listCmd,
			showCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalw("relstore", "error", err)
	}
}
