package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/synergo-project/synergo/internal/config"
	"github.com/synergo-project/synergo/internal/cursor"
	"github.com/synergo-project/synergo/internal/device"
	"github.com/synergo-project/synergo/internal/dispatch"
	"github.com/synergo-project/synergo/internal/keycodes"
	"github.com/synergo-project/synergo/internal/logger"
	"github.com/synergo-project/synergo/internal/protocol"
	"github.com/synergo-project/synergo/internal/session"
)

// Exit codes: 0 normal stop, 2 configuration error, 3
// transport failure, 4 uinput permission failure, 5 unsupported protocol.
const (
	exitOK                  = 0
	exitConfigError         = 2
	exitUinputPermission    = 4
	exitUnsupportedProtocol = 5
)

var serverAddr string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a Synergy/Barrier server and inject its input locally",
	RunE:  runSynergo,
}

func init() {
	runCmd.Flags().StringVarP(&serverAddr, "server", "s", "", "server address (overrides config)")
	if err := viper.BindPFlag("server", runCmd.Flags().Lookup("server")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to bind server flag: %v\n", err)
	}
}

func runSynergo(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}
	cfg := config.Get()
	if serverAddr != "" {
		cfg.Server = serverAddr
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}

	log := logger.New(cfg.LogLevel)
	if cfg.LogFile != "" {
		fileLog, f, err := logger.SetupFileLogging(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitConfigError)
		}
		defer func() { _ = f.Close() }()
		log = fileLog
	}

	width, height := cfg.ScreenWidth, cfg.ScreenHeight
	if width == 0 || height == 0 {
		width, height = probeScreenSize(log)
	}

	dev, err := device.New(device.ScreenSize{Width: width, Height: height})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating virtual input device: %v\n", err)
		os.Exit(exitUinputPermission)
	}
	defer func() { _ = dev.Close() }()

	tables := keycodes.New()
	cursorCtx := cursor.New()

	dispatchCfg := dispatch.Config{
		AbsoluteMouse: cfg.AbsMouseMove,
		MoveThreshold: cfg.MouseMoveThresholdDuration(),
		PosSyncFreq:   cfg.MousePosSyncFreq,
		ScreenWidth:   width,
		ScreenHeight:  height,
	}
	d := dispatch.New(dispatchCfg, dev, tables, cursorCtx, log)

	screen := protocol.ScreenInfo{Width: width, Height: height}

	sessCfg := session.Config{
		Server:                     cfg.Server,
		Port:                       cfg.Port,
		ClientName:                 cfg.ClientName,
		TLS:                        cfg.TLS,
		MTLS:                       cfg.MTLS,
		TLSTrust:                   cfg.TLSTrust,
		PEMPath:                    cfg.PEMPath,
		TLSMinVersion:              cfg.TLSMinVersionConstant(),
		ConnectTimeout:             cfg.ConnectTimeoutDuration(),
		HeartbeatInterval:          cfg.HeartbeatIntervalDuration(),
		HeartbeatTimeoutMultiplier: cfg.HeartbeatTimeoutMultiplier,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runWithReconnect(ctx, sessCfg, screen, d, log)
	return nil
}

// runWithReconnect drives repeated session.Run calls with a bounded
// exponential backoff. The underlying Session never reconnects on its
// own; that policy lives here, and every exit from this function is
// through os.Exit with the documented code.
func runWithReconnect(ctx context.Context, cfg session.Config, screen protocol.ScreenInfo, d *dispatch.Dispatcher, log *charmlog.Logger) {
	const (
		baseDelay = time.Second
		maxDelay  = 30 * time.Second
	)

	attempt := 0
	for {
		if ctx.Err() != nil {
			os.Exit(exitOK)
		}

		sess := session.New(cfg, screen, d, log)
		log.Info("connecting", "server", cfg.Server, "port", cfg.Port)
		err := sess.Run(ctx)

		if err == nil {
			os.Exit(exitOK)
		}
		if errors.Is(err, session.ErrUnsupportedProtocol) {
			log.Error("unsupported protocol version", "err", err)
			os.Exit(exitUnsupportedProtocol)
		}

		attempt++
		delay := time.Duration(math.Min(float64(maxDelay), float64(baseDelay)*math.Pow(2, float64(attempt-1))))
		log.Warn("session ended, reconnecting", "err", err, "attempt", attempt, "delay", delay)

		select {
		case <-ctx.Done():
			os.Exit(exitOK)
		case <-time.After(delay):
		}
	}
}

func probeScreenSize(log *charmlog.Logger) (uint16, uint16) {
	const fallbackW, fallbackH = 1920, 1080

	out, err := exec.Command("hyprctl", "monitors", "-j").Output()
	if err != nil {
		log.Warn("screen size probe failed, using fallback", "err", err, "width", fallbackW, "height", fallbackH)
		return fallbackW, fallbackH
	}

	var monitors []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal(out, &monitors); err != nil || len(monitors) == 0 {
		log.Warn("screen size probe returned unparseable output, using fallback", "width", fallbackW, "height", fallbackH)
		return fallbackW, fallbackH
	}
	return uint16(monitors[0].Width), uint16(monitors[0].Height)
}
