package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"webvlc/src/command"
	"webvlc/src/handler/web"
	"webvlc/src/intake"
	"webvlc/src/playback"
	"webvlc/src/player"
	"webvlc/src/player/mpd"
	"webvlc/src/playlistfile"
	"webvlc/src/resource"
	"webvlc/src/subtitle"
	"webvlc/src/util"
)

var (
	build       = "%BUILD%"
	version     = "%VERSION%"
	versionDate = "%VERSION_DATE%"
)

func main() {
	defaultLogLevel := "warn"
	if build == "debug" {
		defaultLogLevel = "debug"
	}

	var logLevel, configFile string
	rootCmd := &cobra.Command{
		Use:           "webvlc",
		Short:         "A media player controlled over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ll, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("could not parse log level: %v", err)
			}
			log.SetLevel(ll)
			log.SetReportCaller(true)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", defaultLogLevel, "Sets the log level. [debug, info, warn, error]")

	serveCmd := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Run the player and its HTTP interface, optionally opening files from the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configFile, args)
		},
	}
	serveCmd.Flags().StringVar(&configFile, "conf", confFile, "Path to the configuration file")

	subtitleCmd := &cobra.Command{
		Use:   "subtitle <file>",
		Short: "Convert a subtitle file to WebVTT and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSubtitle(afero.NewOsFs(), args[0])
		},
	}

	var asM3U bool
	playlistCmd := &cobra.Command{
		Use:   "playlist <file>",
		Short: "Print the entries of an M3U or PLS playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPlaylist(afero.NewOsFs(), args[0], asM3U)
		},
	}
	playlistCmd.Flags().BoolVar(&asM3U, "m3u", false, "Print the playlist as M3U")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Version: %v (%v)\n", version, versionDate)
			fmt.Printf("Build: %v\n", build)
		},
	}

	rootCmd.AddCommand(serveCmd, subtitleCmd, playlistCmd, versionCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func serve(ctx context.Context, configFile string, paths []string) error {
	log.Infof("Version: %v (%v)", version, build)
	config, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("could not load config: %v", err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		return fmt.Errorf("could not load config: %v", errs)
	}
	urlRoot, err := util.DetermineFullURLRoot(config.URLRoot, config.Address)
	if err != nil {
		return err
	}

	surface, closeSurface, err := connectSurface(config)
	if err != nil {
		return err
	}
	defer closeSurface()

	store := player.NewStore()
	initStore(store, config)

	resources := resource.NewServer(urlRoot)
	in := intake.New(store, resources)
	engine := playback.NewEngine(store, surface, resources)
	engine.SkipOnError = config.Player.SkipOnError

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- engine.Run(ctx)
	}()

	if len(paths) > 0 {
		res, err := in.OpenPaths(ctx, libraryFs(config), paths)
		if err != nil {
			return fmt.Errorf("could not open %v: %v", paths, err)
		}
		log.Infof("Opened %d files from the library", res.Media)
	}

	service := web.New(web.Services{
		Store:      store,
		Controller: command.NewController(store, surface, resources),
		Intake:     in,
		Resources:  resources,
		Uploads:    uploadsFs(config),
	})
	if build == "debug" {
		service.Get("/debug/pprof/*", pprof.Index)
	}

	log.Infof("Now accepting HTTP connections on %v", config.Address)
	server := &http.Server{
		Addr:        config.Address,
		Handler:     service,
		ReadTimeout: 10 * time.Second,
		// No write timeout, media and event streams last as long as they are
		// being played or watched.
		MaxHeaderBytes: 1 << 20,
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("error running webserver: %v", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Could not shut down webserver: %v", err)
	}
	return <-engineDone
}

func connectSurface(config *config) (player.Surface, func(), error) {
	switch config.Surface {
	case "mpd":
		surf, err := mpd.Connect(config.MPD.Network, config.MPD.Address, config.MPD.Password, config.Player.TimeInterval)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using %v as surface", surf)
		return surf, func() { surf.Close() }, nil
	default:
		log.Infof("Using the null surface, nothing will be rendered")
		return player.NewNullSurface(), func() {}, nil
	}
}

func initStore(store *player.Store, config *config) {
	if config.Player.Volume != nil {
		store.SetVolume(*config.Player.Volume)
	}
	store.SetRepeatMode(config.Player.Repeat)
	store.SetShuffle(config.Player.Shuffle)
}

func libraryFs(config *config) afero.Fs {
	if config.LibraryDir == "" {
		return afero.NewOsFs()
	}
	return afero.NewBasePathFs(afero.NewOsFs(), expandHome(config.LibraryDir))
}

func uploadsFs(config *config) afero.Fs {
	dir := config.storagePath("uploads")
	if dir == "" {
		return afero.NewMemMapFs()
	}
	// Leftovers from a previous run are not referenced by anything.
	if err := os.RemoveAll(dir); err != nil {
		log.Warnf("Could not clean up uploads: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warnf("Could not create upload dir, keeping uploads in memory: %v", err)
		return afero.NewMemMapFs()
	}
	return afero.NewBasePathFs(afero.NewOsFs(), dir)
}

func printSubtitle(fs afero.Fs, filename string) error {
	fd, err := fs.Open(filename)
	if err != nil {
		return err
	}
	defer fd.Close()
	vtt, err := subtitle.ToVTT(filename, fd)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(vtt)
	return err
}

// printPlaylist lists the entries of a playlist along with the sizes of the
// files they refer to, resolved relative to the playlist.
func printPlaylist(fs afero.Fs, filename string, asM3U bool) error {
	fd, err := fs.Open(filename)
	if err != nil {
		return err
	}
	defer fd.Close()
	entries, err := playlistfile.Parse(filename, fd)
	if err != nil {
		return err
	}
	if asM3U {
		return playlistfile.WriteM3U(os.Stdout, entries)
	}

	dir := filepath.Dir(filename)
	for i, entry := range entries {
		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		size := "missing"
		if info, err := fs.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		title := entry.Title
		if title == "" {
			title = entry.Base()
		}
		fmt.Printf("%3d  %-9s  %s\n", i+1, size, title)
	}
	return nil
}
