package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/format"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/observability"
	"github.com/kbukum/podscribe/pipeline"
)

var (
	outputFormat string
	outputPath   string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <input-file>",
	Short: "Transcribe one recording and print the transcript",
	Long: `Transcribe runs the full pipeline on a local audio or video file in the
foreground and writes the rendered transcript to stdout or --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	transcribeCmd.Flags().StringVarP(&outputFormat, "format", "f", string(format.Default), "output format: json, txt, srt")
	transcribeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (default: stdout)")
	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	f, err := format.Parse(outputFormat)
	if err != nil {
		return err
	}
	source, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	cfg, log, err := setup("stderr")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		return err
	}
	orchestrator, err := buildOrchestrator(cfg, nil, metrics, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}
	return transcribe(ctx, orchestrator, source, f, out, log)
}

// transcribe runs one job in the foreground and writes the rendering to out.
func transcribe(ctx context.Context, orchestrator *pipeline.Orchestrator, source string, f format.Format, out io.Writer, log *logger.Logger) error {
	jobID := uuid.NewString()
	res, err := orchestrator.Run(ctx, jobID, source)
	if err != nil {
		fields := logger.ErrorFields("transcribe", err)
		if appErr, ok := errors.AsAppError(err); ok {
			fields["code"] = appErr.Code
		}
		log.WithJob(jobID).Error("transcription failed", fields)
		return err
	}

	rendered, err := format.Render(f, res.Transcript)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, rendered); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	log.WithJob(jobID).Info("transcription written", logger.Fields(
		"units", len(res.Transcript),
		"chunks", res.Chunks,
		"duration_sec", res.DurationSec,
	))
	return nil
}
