package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bistro/internal/ai"
	"bistro/internal/pkg/mongodb"
	"bistro/internal/repository"
	"bistro/internal/service"
)

var (
	simulateCount    int
	simulateDietMode string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a batch of simulated conversations",
	Long: `Run N simulated waiter/customer conversations against the configured
LLM provider and persist the transcripts. Equivalent to POST /simulations/run/.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	flags := simulateCmd.Flags()
	flags.IntVar(&simulateCount, "count", 100, "number of conversations to simulate (1-100)")
	flags.StringVar(&simulateDietMode, "diet-mode", "self", "diet source strategy (self/rules/llm)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}()

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	aiClient, err := ai.NewClient(cmd.Context(), &cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	store := repository.NewConversationRepo(mongoClient)
	sim := service.NewSimulationService(aiClient, store)

	count := clampCount(simulateCount)
	mode := service.ParseDietMode(simulateDietMode)

	result := sim.RunBatch(cmd.Context(), count, mode)

	fmt.Printf("simulated %d conversations: %d ok, %d failed\n",
		result.Requested, result.Succeeded, result.Failed)
	for _, f := range result.Failures {
		fmt.Printf("FAIL %d/%d: %s\n", f.Iteration, result.Requested, f.Error)
	}
	return nil
}

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > service.MaxRunCount {
		return service.MaxRunCount
	}
	return n
}
