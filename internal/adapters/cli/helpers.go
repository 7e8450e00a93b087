package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/andrescamacho/factorysim-go/internal/infrastructure/config"
)

// resolveSimulationName picks the simulation to operate on.
// Priority: --simulation flag > user config default > simulation.name
func resolveSimulationName(cfg *config.Config) (string, error) {
	if simulationName != "" {
		return simulationName, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err == nil {
		if userCfg, err := userConfigHandler.Load(); err == nil && userCfg.DefaultSimulation != "" {
			return userCfg.DefaultSimulation, nil
		}
	}

	if cfg.Simulation.Name == "" {
		return "", fmt.Errorf("no simulation selected: use --simulation or 'factorysim config use <name>'")
	}
	return cfg.Simulation.Name, nil
}

// parseIDs converts positional arguments into order ids
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg string) (int, error) {
	ids, err := parseIDs([]string{arg})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func parseQuantity(arg string) (int, error) {
	qty, err := strconv.Atoi(arg)
	if err != nil || qty <= 0 {
		return 0, fmt.Errorf("invalid quantity %q: must be a positive integer", arg)
	}
	return qty, nil
}

// prettyPrint formats JSON for display
func prettyPrint(v interface{}) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes)
}

// printJSONIfRequested prints v when --json is set and reports whether it did
func printJSONIfRequested(v interface{}) bool {
	if !jsonOutput {
		return false
	}
	fmt.Println(prettyPrint(v))
	return true
}

func newTable(w io.Writer) *tabwriter.Writer {
	if w == nil {
		w = os.Stdout
	}
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
