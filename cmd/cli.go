// SPDX-License-Identifier: MIT
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flightframe/internal/align"
	"flightframe/internal/config"
	"flightframe/internal/frame"
	applog "flightframe/internal/log"
	"flightframe/internal/mask"
	"flightframe/internal/transport"
	"flightframe/internal/transport/udp"
	"flightframe/internal/tui"
	"flightframe/pkg/build"
)

var (
	cfgPath string
	verbose bool
)

// Execute parses command line arguments and runs the selected tool.
func Execute() error {
	buildInfo := build.GetBuildFlags()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Byte-aligned flight-data frame tools",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"Path to a YAML configuration file. Defaults to ./config.yaml when present.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.AddCommand(newIdentifyCmd())
	rootCmd.AddCommand(newSliceCmd())

	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.Execute()
}

// loadConfig loads configuration and applies the logging level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if verbose || cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	} else if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	return cfg, nil
}

// alignerOptions maps loaded configuration onto detector options.
func alignerOptions(cfg *config.Config) align.Options {
	opts := align.DefaultOptions()
	if len(cfg.Align.WPS) > 0 {
		opts.WPS = cfg.Align.WPS
	}
	if cfg.Align.LittleEndian != nil {
		opts.LittleEndian = *cfg.Align.LittleEndian
	}
	return opts
}

func newIdentifyCmd() *cobra.Command {
	var (
		words       int
		all         bool
		interactive bool
		monitor     bool
		udpTarget   string
	)

	cmd := &cobra.Command{
		Use:   "identify FILE",
		Short: "Detect frame size and sync pattern in a raw recorder file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if words <= 0 {
				words = cfg.Align.WordsToRead
			}
			return runIdentify(args[0], cfg, words, all, interactive, monitor, udpTarget)
		},
	}

	cmd.Flags().IntVarP(&words, "words", "w", config.DefaultIdentifyWords,
		"Number of 16-bit words to read and scan")
	cmd.Flags().BoolVarP(&all, "all", "a", false,
		"List every detected frame instead of only the first")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Browse results in an interactive terminal UI (implies --all)")
	cmd.Flags().BoolVarP(&monitor, "monitor", "m", false,
		"Serve results to WebSocket clients until interrupted")
	cmd.Flags().StringVar(&udpTarget, "udp-target", "",
		"Publish results as UDP packets to host:port")

	return cmd
}

func runIdentify(path string, cfg *config.Config, words int, all, interactive, monitor bool, udpTarget string) error {
	window, err := readWindow(path, words, cfg.Align.ChunkSize)
	if err != nil {
		return err
	}

	publishers, err := buildTransports(cfg, monitor, udpTarget)
	if err != nil {
		return err
	}
	defer publishers.Close()

	aligner, err := align.New(alignerOptions(cfg))
	if err != nil {
		return err
	}

	if interactive {
		all = true
	}

	it := aligner.Identify(align.NewBytesSource(window))
	var results []align.Result
	for {
		res, ok := it.Next()
		if !ok {
			break
		}
		results = append(results, res)
		if err := publishers.Send(res); err != nil {
			applog.Warnf("identify: publish failed: %v", err)
		}
		if !all {
			break
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("No synchronised frame found in the first %d words of %s\n", words, path)
		return nil
	}

	for _, res := range results {
		fmt.Printf("%s: %s\n", path, res)
	}
	if all {
		printCoverage(results, len(window))
	}

	if interactive {
		return tui.StartResultsUI(path, results)
	}

	if monitor || cfg.Transport.MonitorEnabled {
		fmt.Println("Serving results to WebSocket clients. Press Ctrl-C to exit.")
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
	}

	return nil
}

// readWindow reads up to words 16-bit words from the start of path.
func readWindow(path string, words, chunkSize int) ([]byte, error) {
	src, err := align.OpenFileSource(path, chunkSize)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	window := make([]byte, 0, words*frame.WordSize)
	for len(window) < cap(window) {
		chunk, err := src.NextChunk()
		if errors.Is(err, io.EOF) {
			break // short files scan whatever is there
		}
		if err != nil {
			return nil, err
		}
		if len(window)+len(chunk) > cap(window) {
			chunk = chunk[:cap(window)-len(window)]
		}
		window = append(window, chunk...)
	}
	return window, nil
}

// buildTransports assembles the configured result publishers.
func buildTransports(cfg *config.Config, monitor bool, udpTarget string) (transport.Fanout, error) {
	var fan transport.Fanout

	if cfg.Debug || verbose {
		fan = append(fan, transport.NewLoggingTransport())
	}
	if monitor || cfg.Transport.MonitorEnabled {
		fan = append(fan, transport.NewMonitor(cfg.Transport.MonitorPort))
	}
	if udpTarget == "" && cfg.Transport.UDPEnabled {
		udpTarget = cfg.Transport.UDPTargetAddress
	}
	if udpTarget != "" {
		sender, err := udp.NewSender(udpTarget)
		if err != nil {
			fan.Close()
			return nil, err
		}
		pub, err := udp.NewPublisher(sender)
		if err != nil {
			fan.Close()
			return nil, err
		}
		fan = append(fan, pub)
	}
	return fan, nil
}

// printCoverage summarises how much of the scanned window is covered by
// synchronised frames, using the masked-array helpers: each second of the
// window is a sample, masked when no frame covers it.
func printCoverage(results []align.Result, windowBytes int) {
	wps := results[0].WPS
	bytesPerSecond := wps * frame.WordSize
	seconds := windowBytes / bytesPerSecond
	if seconds == 0 {
		return
	}

	data := make([]float64, seconds)
	masked := make([]bool, seconds)
	for i := range masked {
		data[i] = float64(i)
		masked[i] = true
	}
	for _, res := range results {
		if res.WPS != wps {
			continue // frame size changed mid-stream; coverage uses the first
		}
		start := int(res.Offset) / bytesPerSecond
		for s := start; s < start+frame.SubframesPerFrame && s < seconds; s++ {
			masked[s] = false
		}
	}

	arr, err := mask.New(data, masked)
	if err != nil {
		return
	}
	fmt.Printf("Coverage: %.1f%% of %d seconds synchronised\n", arr.Coverage()*100, seconds)
	if gap := arr.LongestMaskedRun(); gap.Len() > 0 {
		fmt.Printf("Longest gap: %d seconds starting at second %d\n", gap.Len(), gap.Start)
	}
}

func newSliceCmd() *cobra.Command {
	var (
		sliceStart  int64
		sliceStop   int64
		wordsToRead int
		bufferSize  int
	)

	cmd := &cobra.Command{
		Use:   "slice SOURCE DEST",
		Short: "Extract a time slice of a raw recorder file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if wordsToRead <= 0 {
				wordsToRead = cfg.Slice.WordsToRead
			}
			if bufferSize <= 0 {
				bufferSize = cfg.Slice.BufferSize
			}
			return align.SliceFile(args[0], args[1], align.SliceOptions{
				Start:       sliceStart,
				Stop:        sliceStop,
				WordsToRead: wordsToRead,
				BufferSize:  bufferSize,
				Aligner:     alignerOptions(cfg),
			})
		},
	}

	cmd.Flags().Int64Var(&sliceStart, "slice-start", 0,
		"Slice start in seconds from the beginning of the file")
	cmd.Flags().Int64Var(&sliceStop, "slice-stop", 0,
		"Slice stop in seconds, exclusive")
	cmd.Flags().IntVarP(&wordsToRead, "words-to-read", "w", config.DefaultSliceWords,
		"Number of 16-bit words to inspect when detecting the frame size")
	cmd.Flags().IntVarP(&bufferSize, "buffer-size", "b", config.DefaultSliceBuffer,
		"Copy buffer size in bytes")

	return cmd
}
