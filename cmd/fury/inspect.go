package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/eigerco/fury/internal/engine"
	"github.com/eigerco/fury/internal/raffle"
)

const inspectPageSize = 100

type snapshot struct {
	Counter raffle.RoundID       `json:"counter"`
	Custody engine.CustodyResult `json:"custody"`
	Rounds  []raffle.Round       `json:"rounds"`
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the counter, custody and every round as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			engineCfg, err := a.cfg.Engine()
			if err != nil {
				return err
			}
			snap, err := inspect(engine.New(s, engineCfg, nil))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
}

func inspect(eng *engine.Engine) (snapshot, error) {
	query := func(req engine.Request) (any, error) {
		resp, err := eng.Execute(engine.Env{}, engine.Message{Request: req})
		return resp.Data, err
	}

	snap := snapshot{Rounds: []raffle.Round{}}
	data, err := query(engine.GetCounter{})
	if err != nil {
		return snapshot{}, err
	}
	snap.Counter = data.(engine.CounterResult).Counter

	if data, err = query(engine.GetTotalCustodied{}); err != nil {
		return snapshot{}, err
	}
	snap.Custody = data.(engine.CustodyResult)

	var after *raffle.RoundID
	for {
		if data, err = query(engine.ListRounds{StartAfter: after, Limit: inspectPageSize}); err != nil {
			return snapshot{}, err
		}
		page := data.(engine.RoundsResult).Rounds
		snap.Rounds = append(snap.Rounds, page...)
		if len(page) < inspectPageSize {
			return snap, nil
		}
		last := page[len(page)-1].ID
		after = &last
	}
}
