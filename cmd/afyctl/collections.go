package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aetherfy/vectors-go/pkg/vectors"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage collections",
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsInfoCmd)

	collectionsCreateCmd.Flags().String("distance", "Cosine", "distance metric (Cosine, Euclidean, Dot, Manhattan)")
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections in the active workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		collections, err := client.ListCollections(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(collections)
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name> <vector-size>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid vector size %q: %w", args[1], err)
		}
		distance, _ := cmd.Flags().GetString("distance")

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.CreateCollection(cmd.Context(), args[0], vectors.VectorConfig{
			Size:     size,
			Distance: vectors.DistanceMetric(distance),
		}); err != nil {
			return err
		}
		fmt.Printf("created collection %q\n", args[0])
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and all its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.DeleteCollection(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted collection %q\n", args[0])
		return nil
	},
}

var collectionsInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show collection details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		desc, err := client.GetCollection(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(desc)
	},
}
