package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/warmup"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be one of json, yaml", format)
	}
}

type extractView struct {
	Text   string   `json:"text"`
	Skills []string `json:"skills"`
}

type resultView struct {
	ID             string   `json:"id"`
	Score          float64  `json:"score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Semantic       bool     `json:"semantic"`
}

type rankingView struct {
	Personalized bool         `json:"personalized"`
	Results      []resultView `json:"results"`
}

// newRankingView converts raw scores to percentages.
func newRankingView(r core.Ranking) rankingView {
	view := rankingView{
		Personalized: r.Personalized,
		Results:      make([]resultView, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		view.Results = append(view.Results, resultView{
			ID:             res.CandidateID,
			Score:          res.Percent(),
			MatchingSkills: nonNil(res.MatchingSkills.Items()),
			MissingSkills:  nonNil(res.MissingSkills.Items()),
			Semantic:       res.UsedSemantic,
		})
	}
	return view
}

type warmView struct {
	Terms         int    `json:"terms"`
	Texts         int    `json:"texts"`
	Embedded      int    `json:"embedded"`
	FailedBatches int    `json:"failed_batches"`
	Elapsed       string `json:"elapsed"`
}

func newWarmView(r warmup.Result) warmView {
	return warmView{
		Terms:         r.Terms,
		Texts:         r.Texts,
		Embedded:      r.Embedded,
		FailedBatches: r.FailedBatches,
		Elapsed:       r.Elapsed.String(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// render writes v as indented JSON, or as YAML with the same keys.
func render(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format != formatYAML {
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	// JSON is valid YAML; re-encoding the node tree keeps key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
