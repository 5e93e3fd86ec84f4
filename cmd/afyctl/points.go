package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aetherfy/vectors-go/pkg/vectors"
)

func init() {
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().Float32("score-threshold", 0, "minimum score (0 disables)")
	searchCmd.Flags().Bool("with-vectors", false, "include vectors in results")
}

var searchCmd = &cobra.Command{
	Use:   "search <collection> <vector>",
	Short: "Search a collection for similar vectors",
	Long: `Search a collection for vectors similar to the query vector.

The query vector is a comma-separated float list:

  afyctl search documents 0.1,0.2,0.3 --limit 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vector, err := parseVector(args[1])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		threshold, _ := cmd.Flags().GetFloat32("score-threshold")
		withVectors, _ := cmd.Flags().GetBool("with-vectors")

		params := &vectors.SearchParams{
			Limit:       limit,
			WithPayload: true,
			WithVectors: withVectors,
		}
		if threshold > 0 {
			params.ScoreThreshold = &threshold
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		results, err := client.Search(cmd.Context(), args[0], vector, params)
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

var countCmd = &cobra.Command{
	Use:   "count <collection>",
	Short: "Count points in a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		count, err := client.Count(cmd.Context(), args[0], nil, true)
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

var upsertCmd = &cobra.Command{
	Use:   "upsert <collection> <points.json>",
	Short: "Upsert points from a JSON file",
	Long: `Upsert points from a JSON file holding an array of points:

  [{"id": "a", "vector": [0.1, 0.2], "payload": {"tag": "demo"}}]

Points without an id are assigned a generated UUID.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var points []vectors.Point
		if err := json.Unmarshal(data, &points); err != nil {
			return fmt.Errorf("invalid points file %s: %w", args[1], err)
		}
		for i := range points {
			if points[i].ID == nil {
				points[i].ID = uuid.NewString()
			}
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Upsert(cmd.Context(), args[0], points); err != nil {
			return err
		}
		fmt.Printf("upserted %d points into %q\n", len(points), args[0])
		return nil
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage against plan limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		stats, err := client.GetUsageStats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	vector := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		vector = append(vector, float32(f))
	}
	return vector, nil
}
