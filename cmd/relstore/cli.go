package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	fp "path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/pyropy/relstore/core/client"
	"github.com/pyropy/relstore/core/model"
)

var errRepoRequired = errors.New("repository is required, set --repo or RELSTORE_REPO")

// loadConfig reads the environment and applies the global flags on top.
func loadConfig(ctx *cli.Context) (*client.Config, error) {
	cfg, err := client.GetConfig()
	if err != nil {
		return nil, err
	}

	if ctx.IsSet("repo") {
		cfg.Repo = ctx.String("repo")
	}
	if ctx.IsSet("token") {
		cfg.Token = ctx.String("token")
	}
	if ctx.IsSet("api-url") {
		cfg.APIURL = ctx.String("api-url")
	}
	if ctx.IsSet("store") {
		cfg.StorePath = ctx.String("store")
	}
	if ctx.IsSet("chunk-size") {
		cfg.ChunkSize = ctx.Int("chunk-size")
	}

	return cfg, nil
}

// openClient returns a client backed by the catalog. Callers close the catalog.
func openClient(ctx *cli.Context) (*client.Client, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	store, err := client.NewFileMetadataStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}

	return client.NewClient(*cfg, client.WithFileMetadataStore(store)), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var uploadCmd = &cli.Command{
	Name:  "upload",
	Usage: "Upload a file and print its locator",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Required: true,
			Usage:    "Path of the file to upload",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Name stored with the file, defaults to the base name of --file",
		},
	},
	Action: func(ctx *cli.Context) error {
		c, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		if c.Cfg.Repo == "" {
			return errRepoRequired
		}

		filePath := ctx.String("file")
		name := ctx.String("name")
		if name == "" {
			name = fp.Base(filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}

		loc, err := c.UploadFile(ctx.Context, name, content, c.Cfg.Repo, c.Cfg.Token)
		if err != nil {
			return err
		}

		log.Infow("upload", "status", "file uploaded", "name", name, "size", len(content), "chunks", loc.Chunks)
		return printJSON(loc)
	},
}

var downloadCmd = &cli.Command{
	Name:  "download",
	Usage: "Download a file by catalog name or by locator",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "Name of a file in the local catalog",
		},
		&cli.StringFlag{
			Name:  "locator",
			Usage: "Locator JSON printed by upload",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output path, defaults to the stored file name",
		},
	},
	Action: func(ctx *cli.Context) error {
		c, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		var (
			data []byte
			name string
		)

		switch {
		case ctx.IsSet("locator"):
			loc, err := model.ParseFileLocator(ctx.String("locator"))
			if err != nil {
				return err
			}

			data, name, err = c.DownloadFile(ctx.Context, loc, c.Cfg.Token)
			if err != nil {
				return err
			}
		case ctx.IsSet("name"):
			data, name, err = c.DownloadByName(ctx.Context, ctx.String("name"), c.Cfg.Token)
			if err != nil {
				return err
			}
		default:
			return errors.New("one of --name or --locator is required")
		}

		out := ctx.String("out")
		if out == "" {
			out = fp.Base(name)
		}
		if out == "" || out == "." || out == string(fp.Separator) {
			return fmt.Errorf("file has no stored name, set --out")
		}

		err = os.WriteFile(out, data, 0644)
		if err != nil {
			return err
		}

		log.Infow("download", "status", "file written", "name", name, "out", out, "size", len(data))
		return nil
	},
}

var listCmd = &cli.Command{
	Name:  "list",
	Usage: "List all files in the local catalog",
	Action: func(ctx *cli.Context) error {
		c, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		files, err := c.All(ctx.Context)
		if err != nil {
			return err
		}

		for _, file := range files {
			fmt.Printf("%s\t%d\t%s\t%s\n", file.Name, file.Size, file.Repo, file.Locator)
		}

		return nil
	},
}

var showCmd = &cli.Command{
	Name:  "show",
	Usage: "Print the catalog entry of a file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Required: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		c, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		file, err := c.Get(ctx.Context, ctx.String("name"))
		if err != nil {
			return err
		}

		return printJSON(file)
	},
}
