package imageprocessing

import (
	"fmt"
	"log/slog"
	"time"
)

// CommandInvoker executes a sequence of commands on image data
type CommandInvoker struct {
	commands []Command
}

// NewCommandInvoker creates a new command invoker
func NewCommandInvoker(commands ...Command) *CommandInvoker {
	return &CommandInvoker{
		commands: commands,
	}
}

// Execute applies all commands in sequence to the image data
func (i *CommandInvoker) Execute(imageData []byte) ([]byte, error) {
	start := time.Now()

	if len(i.commands) == 0 {
		slog.Debug("no commands to execute, returning original image")
		return imageData, nil
	}

	currentData := imageData

	for idx, command := range i.commands {
		processedData, err := command.Execute(currentData)
		if err != nil {
			slog.Error("command execution failed",
				"index", idx,
				"command_name", command.Name(),
				"error", err,
				"input_size_bytes", len(currentData))
			return nil, fmt.Errorf("command %s (index %d) failed: %w", command.Name(), idx, err)
		}

		slog.Debug("command completed",
			"index", idx,
			"command_name", command.Name(),
			"input_size_bytes", len(currentData),
			"output_size_bytes", len(processedData))

		currentData = processedData
	}

	slog.Debug("image processing pipeline completed",
		"total_duration_ms", time.Since(start).Milliseconds(),
		"command_count", len(i.commands),
		"final_size_bytes", len(currentData))

	return currentData, nil
}
