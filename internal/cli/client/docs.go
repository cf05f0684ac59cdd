package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// DocsCmd returns the docs command group
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Inspect ingested documents",
	}

	cmd.AddCommand(docsListCmd(), docsGetCmd())
	return cmd
}

func docsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE:  runDocsList,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of documents to list")
	cmd.Flags().String("cursor", "", "Pagination cursor from a previous page")
	return cmd
}

func docsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <source>",
		Short: "Show ingestion stats for one document",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsGet,
	}
}

type documentItem struct {
	Source     string `json:"source"`
	Title      string `json:"title"`
	CharCount  int    `json:"char_count"`
	ChunkCount int    `json:"chunk_count"`
	ImageCount int    `json:"image_count"`
	TableCount int    `json:"table_count"`
	IngestedAt string `json:"ingested_at"`
}

func runDocsList(cmd *cobra.Command, args []string) error {
	apiClient, err := NewAPIClientWithCmd(cmd.Root())
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")

	path := fmt.Sprintf("/documents?limit=%d", limit)
	if cursor != "" {
		path += "&cursor=" + url.QueryEscape(cursor)
	}

	var resp struct {
		Data struct {
			Items   []documentItem `json:"items"`
			Cursor  string         `json:"cursor"`
			HasMore bool           `json:"has_more"`
		} `json:"data"`
	}
	if err := apiClient.GetJSON(path, &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, doc := range resp.Data.Items {
		fmt.Fprintf(out, "%-30s chunks=%-4d images=%-3d tables=%-3d %s\n",
			doc.Source, doc.ChunkCount, doc.ImageCount, doc.TableCount, doc.Title)
	}
	if resp.Data.HasMore {
		fmt.Fprintf(out, "\nnext cursor: %s\n", resp.Data.Cursor)
	}
	return nil
}

func runDocsGet(cmd *cobra.Command, args []string) error {
	apiClient, err := NewAPIClientWithCmd(cmd.Root())
	if err != nil {
		return err
	}

	var resp struct {
		Data documentItem `json:"data"`
	}
	if err := apiClient.GetJSON("/documents/"+url.PathEscape(args[0]), &resp); err != nil {
		return err
	}

	doc := resp.Data
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:      %s\n", doc.Source)
	fmt.Fprintf(out, "Title:       %s\n", doc.Title)
	fmt.Fprintf(out, "Characters:  %d\n", doc.CharCount)
	fmt.Fprintf(out, "Chunks:      %d\n", doc.ChunkCount)
	fmt.Fprintf(out, "Images:      %d\n", doc.ImageCount)
	fmt.Fprintf(out, "Tables:      %d\n", doc.TableCount)
	fmt.Fprintf(out, "Ingested at: %s\n", doc.IngestedAt)
	return nil
}
