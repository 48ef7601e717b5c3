// Command snapshot exports, imports and lists progress backups without the server.
//
// Usage:
//
//	snapshot export [-o file]   write the progress payload to file or stdout
//	snapshot import <file>      replace all progress with the payload in file
//	snapshot backups            list the backup history, oldest first
//
// Import takes a backup first, like every other mutation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/BenWassa/vox/internal/app"
	"github.com/BenWassa/vox/internal/config"
	vlog "github.com/BenWassa/vox/internal/logger"
	"github.com/BenWassa/vox/internal/snapshot"
	"github.com/BenWassa/vox/pkg/models"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: snapshot export [-o file] | import <file> | backups")
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := vlog.New(cfg.Log)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, flag.Args(), os.Stdout, logger); err != nil {
		logger.Error("snapshot failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer, logger *zap.Logger) error {
	stores, err := app.Open(cfg, nil, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	codec := snapshot.NewCodec(stores.Progress, stores.Guard, stores.Clock)

	switch args[0] {
	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		out := fs.String("o", "", "output file (default: stdout)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		data, err := codec.Export(ctx)
		if err != nil {
			return err
		}
		if *out == "" {
			_, err = stdout.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *out, err)
		}
		logger.Info("progress exported", zap.String("file", *out), zap.Int("bytes", len(data)))
		return nil

	case "import":
		if len(args) != 2 {
			return errors.New("import needs exactly one file")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}
		if err := codec.Import(ctx, data); err != nil {
			return err
		}
		logger.Info("progress imported", zap.String("file", args[1]))
		return nil

	case "backups":
		backups, err := stores.Guard.List()
		if err != nil {
			return err
		}
		return printBackups(stdout, backups)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printBackups(w io.Writer, backups []models.BackupInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOPERATION\tCREATED\tSIZE\tPATH")
	for _, b := range backups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", b.ID, b.Operation, b.CreatedAt.Format(time.RFC3339), b.Size, b.Path)
	}
	return tw.Flush()
}
