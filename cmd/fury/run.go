package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eigerco/fury/internal/engine"
	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/settlement"
	"github.com/eigerco/fury/pkg/log"
	"github.com/eigerco/fury/pkg/metrics"
)

const maxEnvelopeSize = 4 << 20

func newRunCmd(a *app) *cobra.Command {
	var transfersOut string
	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Execute newline delimited JSON envelopes and print one result per line",
		Long: `Each input line is an envelope such as

  {"env":{"height":1,"time":100,"entropy":"AQID"},"sender":"alice","funds":[{"denom":"ufury","amount":10}],"msg":{"join_round":{"round_id":0}}}

Results are written to stdout in input order. Transfers emitted by an
operation are delivered through the settlement relay and reported back as
the configured operator.

Operations: ` + strings.Join(engine.Operations(), ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			transfers := cmd.ErrOrStderr()
			if transfersOut != "" && transfersOut != "-" {
				f, err := os.Create(transfersOut)
				if err != nil {
					return err
				}
				defer f.Close()
				transfers = f
			}
			return a.run(cmd.Context(), in, cmd.OutOrStdout(), transfers)
		},
	}
	cmd.Flags().StringVar(&transfersOut, "transfers-out", "-", "file receiving settled transfer instructions, - for stderr")
	return cmd
}

func (a *app) run(ctx context.Context, in io.Reader, out io.Writer, transfers io.Writer) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Root.Error().Err(err).Msg("error closing store")
		}
	}()

	engineCfg, err := a.cfg.Engine()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	eng := engine.New(s, engineCfg, metrics.NewEngineCollector(reg))

	var relay *settlement.Relay
	if a.cfg.Operator != "" {
		relay = settlement.NewRelay(settlement.NewLogSettler(transfers), reporter(eng, raffle.Address(a.cfg.Operator)))
	} else {
		log.Settlement.Warn().Msg("no operator configured, transfers are only included in the results")
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.MetricsAddr != "" {
		server := metrics.NewServer(log.Root, a.cfg.MetricsAddr, reg)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		return process(ctx, eng, relay, in, out)
	})
	return g.Wait()
}

// reporter writes settlement outcomes back into the engine, executed in the
// context of the block that emitted them.
func reporter(eng *engine.Engine, operator raffle.Address) settlement.ReporterFunc {
	return func(instr raffle.TransferInstruction, settled bool) error {
		_, err := eng.Execute(engine.Env{}, engine.Message{
			Sender: operator,
			Request: engine.ReportSettlement{
				RoundID: instr.RoundID,
				Index:   instr.Index,
				Settled: settled,
			},
		})
		return err
	}
}

func process(ctx context.Context, eng *engine.Engine, relay *settlement.Relay, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxEnvelopeSize)
	enc := json.NewEncoder(out)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var resp engine.Response
		envelope, err := engine.DecodeEnvelope(data)
		if err == nil {
			resp, err = eng.Execute(envelope.Env, envelope.Message)
		}
		if err != nil {
			log.Root.Debug().Err(err).Int("line", line).Msg("envelope rejected")
		}
		if err := enc.Encode(engine.NewResult(resp, err)); err != nil {
			return fmt.Errorf("write result: %w", err)
		}

		if err == nil && relay != nil && len(resp.Transfers) > 0 {
			if err := relay.Deliver(ctx, resp.Transfers); err != nil {
				log.Settlement.Warn().Err(err).Int("line", line).Msg("settlement incomplete")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
