package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/kyuubi/internal"
	pkgconfig "github.com/starford/kyuubi/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version),
	)
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := cmd.String("output"); path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		defer f.Close()
		out = f
	}
	return internal.Export(ctx, out, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func preview(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := internal.PreviewOptions{Width: int(cmd.Int("width")), Style: cmd.String("style")}
	return internal.Preview(ctx, os.Stdout, p, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func transform(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	in := os.Stdin
	if path := cmd.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("transform: %w", err)
		}
		defer f.Close()
		in = f
	}
	return internal.TransformText(in, os.Stdout, cmd.Bool("html"), cfg)
}

func main() {
	cmd := &cli.Command{
		Name:    "kyuubi",
		Usage:   "Markdown note editor with Obsidian-style links, tags and embeds and a live preview",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the editor server (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the document to MCP clients over stdio",
				Action: mcp,
			},
			{
				Name:   "export",
				Usage:  "Write the raw document",
				Action: export,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
				},
			},
			{
				Name:   "preview",
				Usage:  "Render the document in the terminal",
				Action: preview,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Aliases: []string{"w"}, Value: 80, Usage: "Word wrap width"},
					&cli.StringFlag{Name: "style", Usage: "Glamour style (dark, light, notty, ascii)"},
				},
			},
			{
				Name:      "transform",
				Usage:     "Rewrite wiki-links, tags and embeds in a file or stdin",
				ArgsUsage: "[file]",
				Action:    transform,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "html", Usage: "Render to HTML"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
