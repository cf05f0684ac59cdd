package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbital-research/bioastra/internal/stream"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the document corpus",
		Long:  "Ask a question and stream a role-structured briefing built from the ingested documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().StringP("role", "r", "scientist", "Answer perspective: scientist, investor, or mission-architect")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	apiClient, err := NewAPIClientWithCmd(cmd.Root())
	if err != nil {
		return err
	}

	role, _ := cmd.Flags().GetString("role")
	query := strings.Join(args, " ")

	resp, err := apiClient.PostJSON("/ask", map[string]string{
		"query": query,
		"role":  role,
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return renderStream(resp.Body, cmd.OutOrStdout())
}

// renderStream consumes the server-sent event stream and prints the answer
// as it arrives. Thinking steps go to stderr so piped output stays clean.
func renderStream(body io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var failed bool
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev struct {
			Type    stream.EventType `json:"type"`
			Content json.RawMessage  `json:"content"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case stream.EventThinking:
			var msg string
			_ = json.Unmarshal(ev.Content, &msg)
			fmt.Fprintf(os.Stderr, "... %s\n", msg)

		case stream.EventTitle:
			var title string
			_ = json.Unmarshal(ev.Content, &title)
			fmt.Fprintf(out, "# %s\n\n", title)

		case stream.EventParagraph:
			var section stream.SectionPayload
			if err := json.Unmarshal(ev.Content, &section); err != nil {
				continue
			}
			fmt.Fprintf(out, "## %s\n\n%s\n\n", section.Title, section.Body)
			if len(section.Images) > 0 {
				fmt.Fprintf(out, "Images: %s\n", strings.Join(section.Images, ", "))
			}
			if len(section.Tables) > 0 {
				fmt.Fprintf(out, "Tables: %s\n", strings.Join(section.Tables, ", "))
			}
			if len(section.Images) > 0 || len(section.Tables) > 0 {
				fmt.Fprintln(out)
			}

		case stream.EventMetadata:
			var meta stream.MetadataPayload
			if err := json.Unmarshal(ev.Content, &meta); err != nil {
				continue
			}
			fmt.Fprintf(os.Stderr, "role=%s sections=%d images=%d tables=%d sources=%d\n",
				meta.Role, meta.SectionCount, meta.ImagesUsed, meta.TablesUsed, meta.SourceCount)

		case stream.EventError:
			var payload stream.ErrorPayload
			_ = json.Unmarshal(ev.Content, &payload)
			fmt.Fprintf(os.Stderr, "error [%s]: %s\n", payload.Code, payload.Message)
			failed = true

		case stream.EventDone:
			if failed {
				return fmt.Errorf("ask failed")
			}
			return scanner.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream ended without done event")
}
