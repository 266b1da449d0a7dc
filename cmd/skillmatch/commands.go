package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/skillmatch"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/warmup"
	"github.com/urfave/cli/v2"
)

type runner struct {
	stdout      io.Writer
	stderr      io.Writer
	serviceOpts []skillmatch.ServiceOption
}

// service loads the configuration, applies flag overrides and opens a Service.
func (r *runner) service(ctx context.Context, c *cli.Context) (*skillmatch.Service, error) {
	config, err := skillmatch.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("embedding-host") {
		config.AI.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		config.AI.Model = c.String("embedding-model")
	}
	if c.IsSet("token") {
		config.AI.Token = c.String("token")
	}
	if c.IsSet("semantic") {
		config.UseSemantic = c.Bool("semantic")
	}

	svc, err := skillmatch.NewService(ctx, config, r.serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	return svc, nil
}

func readJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func (r *runner) extract(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text to extract from is required")
	}

	ctx := c.Context
	svc, err := r.service(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	skills := svc.Extractor().Extract(ctx, text, c.Int("top-k"))
	return render(r.stdout, c.String("format"), extractView{Text: text, Skills: nonNil(skills)})
}

func (r *runner) rankTasks(c *cli.Context) error {
	profile, err := readJSON[core.SkillProfile](c.String("volunteer"))
	if err != nil {
		return err
	}
	tasks, err := readJSON[[]core.Candidate](c.String("tasks"))
	if err != nil {
		return err
	}

	ctx := c.Context
	svc, err := r.service(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ranking, err := svc.RankTasks(ctx, profile, tasks)
	if err != nil {
		return err
	}
	return render(r.stdout, c.String("format"), newRankingView(ranking.Top(c.Int("limit"))))
}

func (r *runner) rankVolunteers(c *cli.Context) error {
	task, profiles, err := readTaskAndVolunteers(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	svc, err := r.service(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ranking, err := svc.RankVolunteers(ctx, task, profiles)
	if err != nil {
		return err
	}
	return render(r.stdout, c.String("format"), newRankingView(ranking.Top(c.Int("limit"))))
}

func (r *runner) recommend(c *cli.Context) error {
	task, profiles, err := readTaskAndVolunteers(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	svc, err := r.service(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ranking, err := svc.Recommend(ctx, task, profiles, c.Int("required"))
	if err != nil {
		return err
	}
	return render(r.stdout, c.String("format"), newRankingView(ranking))
}

func readTaskAndVolunteers(c *cli.Context) (core.Candidate, []core.SkillProfile, error) {
	task, err := readJSON[core.Candidate](c.String("task"))
	if err != nil {
		return core.Candidate{}, nil, err
	}
	profiles, err := readJSON[[]core.SkillProfile](c.String("volunteers"))
	if err != nil {
		return core.Candidate{}, nil, err
	}
	return task, profiles, nil
}

func (r *runner) gaps(c *cli.Context) error {
	event, err := readJSON[core.Candidate](c.String("event"))
	if err != nil {
		return err
	}
	profiles, err := readJSON[[]core.SkillProfile](c.String("volunteers"))
	if err != nil {
		return err
	}

	ctx := c.Context
	svc, err := r.service(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.AnalyzeEvent(ctx, event, profiles)
	if err != nil {
		return err
	}
	return render(r.stdout, c.String("format"), report)
}

func (r *runner) warm(c *cli.Context) error {
	var (
		tasks    []core.Candidate
		profiles []core.SkillProfile
		err      error
	)
	if path := c.String("tasks"); path != "" {
		if tasks, err = readJSON[[]core.Candidate](path); err != nil {
			return err
		}
	}
	if path := c.String("volunteers"); path != "" {
		if profiles, err = readJSON[[]core.SkillProfile](path); err != nil {
			return err
		}
	}

	warmConfig := warmup.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	ctx := c.Context
	svc, err := r.service(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	w, err := svc.NewWarmer(warmConfig, warmup.WithProgress(r.stderr))
	if err != nil {
		return err
	}
	result, err := svc.Warm(ctx, w, tasks, profiles)
	if err != nil {
		return fmt.Errorf("warm failed: %w", err)
	}
	return render(r.stdout, c.String("format"), newWarmView(result))
}
