package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "chat-intake/internal/common/errors"
	"chat-intake/internal/common/validation"

	"github.com/spf13/cobra"
)

var turnCmd = &cobra.Command{
	Use:   "turn [request.json]",
	Short: "Process one chat request read from a file or stdin",
	Long: `Reads a chat request body ({"messages": [...], "leadCaptured": false})
from the given file, or stdin when no file or "-" is given, runs it through
the same pipeline as the HTTP endpoint and prints the response.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readRequest(cmd, args)
		if err != nil {
			return err
		}

		req, invalid := validation.NewChatRequestValidator().DecodeChatRequest(body)
		if invalid != nil {
			return stderrors.NewRequestValidationError(strings.Join(invalid.GetErrorMessages(), "; "))
		}

		p, err := buildPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.Close()

		result, err := p.processor.Process(cmd.Context(), *req)
		if err != nil {
			return err
		}

		for _, w := range result.Dispatch.Failed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %s not stored: %v\n", w.Record, w.ID, w.Err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Response)
	},
}

func readRequest(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return data, nil
}
