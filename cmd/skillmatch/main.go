// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/skillmatch"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. serviceOpts are passed to every Service the
// commands create.
func newApp(stdout, stderr io.Writer, serviceOpts ...skillmatch.ServiceOption) *cli.App {
	r := &runner{stdout: stdout, stderr: stderr, serviceOpts: serviceOpts}

	return &cli.App{
		Name:      "skillmatch",
		Usage:     "Match volunteers to tasks and events by skill",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"SKILLMATCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, yaml)",
				Value:   formatJSON,
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL (overrides config)",
				EnvVars: []string{"SKILLMATCH_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name (overrides config)",
				EnvVars: []string{"SKILLMATCH_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API token for the embedding service",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.BoolFlag{
				Name:  "semantic",
				Usage: "Use semantic scoring (overrides config)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c, stderr); err != nil {
				return err
			}
			return checkFormat(c.String("format"))
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract vocabulary skills from free text",
				ArgsUsage: "TEXT",
				Action:    r.extract,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of skills (0 uses the configured value)",
					},
				},
			},
			{
				Name:   "rank-tasks",
				Usage:  "Rank tasks or events for one volunteer",
				Action: r.rankTasks,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "volunteer",
						Usage:    "JSON file with one volunteer profile",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "tasks",
						Usage:    "JSON file with a list of tasks or events",
						Required: true,
					},
					limitFlag(),
				},
			},
			{
				Name:   "rank-volunteers",
				Usage:  "Rank volunteers for one task",
				Action: r.rankVolunteers,
				Flags:  []cli.Flag{taskFlag(), volunteersFlag(), limitFlag()},
			},
			{
				Name:   "recommend",
				Usage:  "Shortlist volunteers for a task that needs N people",
				Action: r.recommend,
				Flags: []cli.Flag{
					taskFlag(),
					volunteersFlag(),
					&cli.IntFlag{
						Name:  "required",
						Usage: "Number of volunteers the task needs",
						Value: 1,
					},
				},
			},
			{
				Name:   "gaps",
				Usage:  "Report an event's skill coverage by volunteers",
				Action: r.gaps,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "event",
						Aliases:  []string{"e"},
						Usage:    "JSON file with one event and its tasks",
						Required: true,
					},
					volunteersFlag(),
				},
			},
			{
				Name:   "warm",
				Usage:  "Pre-compute embeddings for tasks and volunteers",
				Action: r.warm,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tasks",
						Usage: "JSON file with a list of tasks or events",
					},
					&cli.StringFlag{
						Name:    "volunteers",
						Aliases: []string{"v"},
						Usage:   "JSON file with a list of volunteer profiles",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of texts to embed in each batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N texts",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
				},
			},
		},
	}
}

func volunteersFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "volunteers",
		Aliases:  []string{"v"},
		Usage:    "JSON file with a list of volunteer profiles",
		Required: true,
	}
}

func taskFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "task",
		Aliases:  []string{"t"},
		Usage:    "JSON file with one task",
		Required: true,
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "Show at most N results (0 shows all)",
	}
}

func setupLogger(c *cli.Context, w io.Writer) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
