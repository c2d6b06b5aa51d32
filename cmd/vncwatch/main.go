// Command vncwatch connects to (or replays) a VNC server, decodes its
// framebuffer updates at a fixed frame rate, and writes the result to
// a capture file, an MP4 movie, or both — optionally broadcasting
// decode telemetry to spectators over WebSocket as it runs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rjsadow/vncwatch/internal/capturestore"
	"github.com/rjsadow/vncwatch/internal/catalog"
	"github.com/rjsadow/vncwatch/internal/config"
	"github.com/rjsadow/vncwatch/internal/consumer"
	"github.com/rjsadow/vncwatch/internal/frametick"
	"github.com/rjsadow/vncwatch/internal/monitor"
	"github.com/rjsadow/vncwatch/internal/movie"
	"github.com/rjsadow/vncwatch/internal/recorder"
	"github.com/rjsadow/vncwatch/internal/rfb"
	"github.com/rjsadow/vncwatch/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "capture":
		err = runCapture(os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("vncwatch failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vncwatch <capture|replay|list|show> [flags]")
}

// encodingByName maps the VNCWATCH_ENCODINGS config names to their
// wire encoding tags. SetEncodings priority follows the order of the
// configured names (see resolveEncodings); unknown names are dropped.
var encodingByName = map[string]int32{
	"hextile": rfb.EncodingHextile,
	"corre":   rfb.EncodingCoRRE,
	"rre":     rfb.EncodingRRE,
	"raw":     rfb.EncodingRaw,
}

func resolveEncodings(names []string) []int32 {
	out := make([]int32, 0, len(names))
	for _, n := range names {
		if tag, ok := encodingByName[strings.ToLower(strings.TrimSpace(n))]; ok {
			out = append(out, tag)
		}
	}
	return out
}

func passwordSource(spec string) rfb.PasswordSource {
	switch {
	case strings.HasPrefix(spec, "env:"):
		return rfb.StaticPassword(os.Getenv(strings.TrimPrefix(spec, "env:")))
	case strings.HasPrefix(spec, "file:"):
		return rfb.FilePassword{Path: strings.TrimPrefix(spec, "file:")}
	default:
		return rfb.StaticPassword(nil)
	}
}

func openCaptureStore(cfg *config.Config, ext string) (capturestore.CaptureStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		return capturestore.NewS3Store(cfg.S3Bucket, cfg.S3Region, "", cfg.S3Prefix, ext, "", "")
	default:
		return capturestore.NewLocalStore(cfg.CaptureDir, ext), nil
	}
}

// buildConsumer assembles the consumer a capture or replay run writes
// decoded frames to: the movie encoder when enabled and the spectator
// broadcaster when a monitor address is set, fanned out through a
// consumer.Multi when both are present. With neither, it returns a
// consumer.Log that only records the calls.
func buildConsumer(cfg *config.Config, id string) (consumer.Consumer, *monitor.Broadcaster, error) {
	var fanout consumer.Multi

	if cfg.MovieEnabled {
		if err := os.MkdirAll(cfg.MovieDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create movie dir: %w", err)
		}
		moviePath := filepath.Join(cfg.MovieDir, id+".mp4")
		fanout = append(fanout, movie.NewWriter(moviePath, cfg.FrameRate))
	}

	var mon *monitor.Broadcaster
	if cfg.MonitorAddr != "" {
		mon = monitor.New()
		fanout = append(fanout, mon)
	}

	if len(fanout) == 0 {
		return consumer.NewLog(rfb.Rectangle{}), nil, nil
	}
	if len(fanout) == 1 {
		return fanout[0], mon, nil
	}
	return fanout, mon, nil
}

func runCapture(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	host := fs.String("host", "", "VNC server host")
	port := fs.Int("port", config.DefaultPort, "VNC server port")
	frameRate := fs.Int("framerate", 0, "frames per second")
	fs.Parse(args)

	cfg, err := config.LoadWithFlags(*host, *port, "", *frameRate)
	if err != nil {
		return err
	}
	if cfg.Host == "" {
		return fmt.Errorf("capture requires -host")
	}

	id := uuid.New().String()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	t, err := transport.DialTCP(addr, cfg.ConnectWait)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer t.Close()

	opts := rfb.HandshakeOptions{
		Password:           passwordSource(cfg.PasswordSource),
		PreferredEncodings: resolveEncodings(cfg.PreferredEncodings),
		IncludeCursor:      cfg.IncludeCursor,
	}
	sess, err := rfb.Handshake(t, opts)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	slog.Info("handshake complete", "capture_id", id, "host", addr, "screen_w", sess.ScreenW, "screen_h", sess.ScreenH)

	store, err := openCaptureStore(cfg, "vnclog")
	if err != nil {
		return fmt.Errorf("open capture store: %w", err)
	}
	catalogDB, err := catalog.Open(cfg.CatalogDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer catalogDB.Close()

	if err := catalogDB.CreateCapture(catalog.Capture{
		ID: id, Host: addr, ScreenW: sess.ScreenW, ScreenH: sess.ScreenH,
	}); err != nil {
		return fmt.Errorf("record capture start: %w", err)
	}

	capFile, err := os.CreateTemp("", "vncwatch-capture-*.vnclog")
	if err != nil {
		return fmt.Errorf("create capture scratch file: %w", err)
	}
	scratchPath := capFile.Name()
	defer os.Remove(scratchPath)

	if err := recorder.WriteCaptureHeader(capFile, sess); err != nil {
		capFile.Close()
		return fmt.Errorf("write capture header: %w", err)
	}
	tee := recorder.NewTee(t, capFile)

	cons, mon, err := buildConsumer(cfg, id)
	if err != nil {
		capFile.Close()
		return err
	}
	if mon != nil {
		go serveMonitor(cfg.MonitorAddr, mon)
	}

	cons.SetConverter(sess.Converter)
	clip := cons.InitScreen(sess.ScreenW, sess.ScreenH, sess.Name)
	if cfg.ClipW > 0 {
		clip = rfb.Rectangle{X: cfg.ClipX, Y: cfg.ClipY, W: cfg.ClipW, H: cfg.ClipH}
	}

	ticker := frametick.New(cons, float64(cfg.FrameRate))
	dec := rfb.NewDecoder(tee, sess.BytesPerPixel, sess.Converter)
	loop := rfb.NewLoop(tee, dec, clip, rfb.LiveRequester{T: tee, Mark: tee.MarkUpdateBoundary})

	runErr := loop.Run(ticker.Handle)
	closeErr := cons.Close()
	capFile.Close()

	if runErr != nil {
		return fmt.Errorf("session loop: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("consumer close: %w", closeErr)
	}

	capFile, err = os.Open(scratchPath)
	if err != nil {
		return fmt.Errorf("reopen capture scratch file: %w", err)
	}
	storagePath, err := store.Save(id, capFile)
	capFile.Close()
	if err != nil {
		return fmt.Errorf("save capture: %w", err)
	}

	moviePath := ""
	if cfg.MovieEnabled {
		moviePath = filepath.Join(cfg.MovieDir, id+".mp4")
	}
	if err := catalogDB.UpdateCaptureCompletion(id, time.Now(), ticker.FrameCount(), storagePath, moviePath); err != nil {
		return fmt.Errorf("record capture completion: %w", err)
	}

	slog.Info("capture finished", "capture_id", id, "storage_path", storagePath)
	return nil
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	file := fs.String("file", "", "path to a .vnclog capture file")
	frameRate := fs.Int("framerate", 0, "frames per second")
	fs.Parse(args)

	cfg, err := config.LoadWithFlags("", 0, *file, *frameRate)
	if err != nil {
		return err
	}
	if cfg.ReplayFile == "" {
		return fmt.Errorf("replay requires -file")
	}

	t, err := transport.OpenFile(cfg.ReplayFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.ReplayFile, err)
	}
	defer t.Close()

	sess, err := recorder.OpenReplay(t)
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}
	slog.Info("replay opened", "file", cfg.ReplayFile, "screen_w", sess.ScreenW, "screen_h", sess.ScreenH)

	id := strings.TrimSuffix(filepath.Base(cfg.ReplayFile), filepath.Ext(cfg.ReplayFile))
	cons, mon, err := buildConsumer(cfg, id)
	if err != nil {
		return err
	}
	if mon != nil {
		go serveMonitor(cfg.MonitorAddr, mon)
	}

	cons.SetConverter(sess.Converter)
	clip := cons.InitScreen(sess.ScreenW, sess.ScreenH, sess.Name)
	if cfg.ClipW > 0 {
		clip = rfb.Rectangle{X: cfg.ClipX, Y: cfg.ClipY, W: cfg.ClipW, H: cfg.ClipH}
	}

	ticker := frametick.New(cons, float64(cfg.FrameRate))
	dec := rfb.NewDecoder(t, sess.BytesPerPixel, sess.Converter)
	loop := rfb.NewLoop(t, dec, clip, &recorder.Replay{T: t})

	if err := loop.Run(ticker.Handle); err != nil {
		return fmt.Errorf("session loop: %w", err)
	}
	if err := cons.Close(); err != nil {
		return fmt.Errorf("consumer close: %w", err)
	}

	slog.Info("replay finished", "file", cfg.ReplayFile, "frames", ticker.FrameCount())
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("catalog", config.DefaultCatalogDB, "path to the capture catalog database")
	fs.Parse(args)

	db, err := catalog.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	caps, err := db.ListCaptures()
	if err != nil {
		return err
	}
	for _, c := range caps {
		fmt.Printf("%s\t%s\t%dx%d\t%d frames\t%s\n", c.ID, c.Host, c.ScreenW, c.ScreenH, c.FrameCount, c.StoragePath)
	}
	return nil
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dbPath := fs.String("catalog", config.DefaultCatalogDB, "path to the capture catalog database")
	id := fs.String("id", "", "capture ID")
	fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("show requires -id")
	}

	db, err := catalog.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.GetCapture(*id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("no capture with id %s", *id)
	}
	fmt.Printf("id:            %s\n", c.ID)
	fmt.Printf("host:          %s\n", c.Host)
	fmt.Printf("started_at:    %s\n", c.StartedAt)
	fmt.Printf("completed_at:  %s\n", c.CompletedAt)
	fmt.Printf("screen:        %dx%d\n", c.ScreenW, c.ScreenH)
	fmt.Printf("frame_count:   %d\n", c.FrameCount)
	fmt.Printf("storage_path:  %s\n", c.StoragePath)
	fmt.Printf("movie_path:    %s\n", c.MoviePath)
	return nil
}
