package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/logger"
)

const notFoundMessage = "Skill tree not found"

// errNotFound is returned after the not found document was printed, so the
// command exits non-zero without printing anything else.
var errNotFound = errors.New(strings.ToLower(notFoundMessage))

type errorResponse struct {
	Error string `json:"error"`
}

// setup creates the logger, loads the config and wires the service.
func setup(cmd *cobra.Command) (*application, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}

	log.Debug("starting", zap.String("command", cmd.Name()), zap.String("version", version))

	return newApplication(cmd.Context(), config, log)
}

func printJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}

func printNotFound(w io.Writer) error {
	if err := printJSON(w, errorResponse{Error: notFoundMessage}); err != nil {
		return err
	}
	return errNotFound
}
